package model

import (
	"errors"
	"testing"
	"time"
)

func TestKindIsValid(t *testing.T) {
	if !KindWater.IsValid() || !KindStandup.IsValid() {
		t.Fatal("expected builtin kinds valid")
	}
	if Kind("coffee").IsValid() {
		t.Fatal("expected unknown kind invalid")
	}
}

func TestActivityEntryValidate(t *testing.T) {
	valid := ActivityEntry{ID: "a1", Kind: KindWater, At: time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	missing := valid
	missing.ID = "  "
	if err := missing.Validate(); err == nil {
		t.Fatal("expected error for blank id")
	}

	badKind := valid
	badKind.Kind = "coffee"
	if err := badKind.Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	noTime := valid
	noTime.At = time.Time{}
	if err := noTime.Validate(); err == nil {
		t.Fatal("expected error for zero timestamp")
	}
}

func TestDayTotalsCount(t *testing.T) {
	d := DayTotals{Date: "2026-02-09", Water: 6, Standup: 4}
	if d.Count(KindWater) != 6 || d.Count(KindStandup) != 4 {
		t.Fatalf("unexpected counts: %+v", d)
	}
}
