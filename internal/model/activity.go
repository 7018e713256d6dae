package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActivityEntry records one acknowledged reminder: a glass of water drunk
// or a stand-up break taken.
type ActivityEntry struct {
	ID   string
	Kind Kind
	At   time.Time
}

func (e ActivityEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("model: activity id is required")
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, e.Kind)
	}
	if e.At.IsZero() {
		return errors.New("model: activity timestamp is required")
	}
	return nil
}

// DayTotals aggregates one calendar day of activity for the stats view.
type DayTotals struct {
	Date    string // "2026-02-09"
	Water   int
	Standup int
}

func (d DayTotals) Count(k Kind) int {
	if k == KindStandup {
		return d.Standup
	}
	return d.Water
}
