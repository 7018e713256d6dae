package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	SaveSettings(ctx context.Context, in Settings) error
	LoadSettings(ctx context.Context) (Settings, error)

	SaveTimer(ctx context.Context, in TimerSnapshot) error
	LoadTimer(ctx context.Context, kind string) (TimerSnapshot, error)
	ListTimers(ctx context.Context) ([]TimerSnapshot, error)

	RecordActivity(ctx context.Context, in ActivityEntry) error
	CountActivityOn(ctx context.Context, kind string, day time.Time) (int, error)
	ListDayTotals(ctx context.Context, since time.Time) ([]DayTotal, error)
}
