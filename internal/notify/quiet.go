package notify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidQuietHours = errors.New("notify: invalid quiet hours rule")

// QuietHours is a daily window, "HH-HH", during which desktop notifications
// are suppressed. The window may wrap midnight ("22-07"). Hours compare
// against the wall clock of the instant passed to Contains, so callers pass
// the user's local time, not UTC.
type QuietHours struct {
	startHour int
	endHour   int
	enabled   bool
}

func ParseQuietHours(raw string) (QuietHours, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return QuietHours{}, nil
	}
	parts := strings.SplitN(trimmed, "-", 2)
	if len(parts) != 2 {
		return QuietHours{}, fmt.Errorf("%w: %q", ErrInvalidQuietHours, raw)
	}
	start, err := parseHour(parts[0])
	if err != nil {
		return QuietHours{}, fmt.Errorf("%w: %q", ErrInvalidQuietHours, raw)
	}
	end, err := parseHour(parts[1])
	if err != nil {
		return QuietHours{}, fmt.Errorf("%w: %q", ErrInvalidQuietHours, raw)
	}
	if start == end {
		return QuietHours{}, fmt.Errorf("%w: empty window %q", ErrInvalidQuietHours, raw)
	}
	return QuietHours{startHour: start, endHour: end, enabled: true}, nil
}

func parseHour(raw string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour out of range: %d", h)
	}
	return h, nil
}

func (q QuietHours) Enabled() bool {
	return q.enabled
}

func (q QuietHours) Contains(now time.Time) bool {
	if !q.enabled {
		return false
	}
	h := now.Hour()
	if q.startHour < q.endHour {
		return h >= q.startHour && h < q.endHour
	}
	// wraps midnight
	return h >= q.startHour || h < q.endHour
}

func (q QuietHours) String() string {
	if !q.enabled {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", q.startHour, q.endHour)
}
