package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SaveSettings upserts the single settings row.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, in Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, water_interval_min, standup_interval_min, snooze_min, auto_restart_grace_min, desktop_notify, quiet_hours, water_goal, standup_goal, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			water_interval_min = excluded.water_interval_min,
			standup_interval_min = excluded.standup_interval_min,
			snooze_min = excluded.snooze_min,
			auto_restart_grace_min = excluded.auto_restart_grace_min,
			desktop_notify = excluded.desktop_notify,
			quiet_hours = excluded.quiet_hours,
			water_goal = excluded.water_goal,
			standup_goal = excluded.standup_goal,
			updated_at = excluded.updated_at`,
		in.WaterIntervalMin, in.StandupIntervalMin, in.SnoozeMin, in.AutoRestartGraceMin,
		boolInt(in.DesktopNotify), in.QuietHours, in.WaterGoal, in.StandupGoal, mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) LoadSettings(ctx context.Context) (Settings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT water_interval_min, standup_interval_min, snooze_min, auto_restart_grace_min, desktop_notify, quiet_hours, water_goal, standup_goal, updated_at
		FROM settings WHERE id = 1`)

	var out Settings
	var desktop int
	var updated string
	err := row.Scan(&out.WaterIntervalMin, &out.StandupIntervalMin, &out.SnoozeMin, &out.AutoRestartGraceMin,
		&desktop, &out.QuietHours, &out.WaterGoal, &out.StandupGoal, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	out.DesktopNotify = desktop == 1
	out.UpdatedAt, err = parseRequiredTime(updated)
	if err != nil {
		return Settings{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) SaveTimer(ctx context.Context, in TimerSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timers (kind, state, interval_sec, next_fire_at, remaining_sec, fired_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			state = excluded.state,
			interval_sec = excluded.interval_sec,
			next_fire_at = excluded.next_fire_at,
			remaining_sec = excluded.remaining_sec,
			fired_at = excluded.fired_at,
			updated_at = excluded.updated_at`,
		in.Kind, in.State, int64(in.Interval/time.Second), nullTime(in.NextFireAt),
		int64(in.Remaining/time.Second), nullTime(in.FiredAt), mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) LoadTimer(ctx context.Context, kind string) (TimerSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT kind, state, interval_sec, next_fire_at, remaining_sec, fired_at, updated_at
		FROM timers WHERE kind = ?`, kind)
	snap, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TimerSnapshot{}, ErrNotFound
		}
		return TimerSnapshot{}, err
	}
	return snap, nil
}

func (r *SQLiteRepository) ListTimers(ctx context.Context) ([]TimerSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, state, interval_sec, next_fire_at, remaining_sec, fired_at, updated_at
		FROM timers ORDER BY kind ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TimerSnapshot, 0)
	for rows.Next() {
		snap, scanErr := scanTimer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) RecordActivity(ctx context.Context, in ActivityEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, kind, occurred_at)
		VALUES (?, ?, ?)`,
		in.ID, in.Kind, mustTime(in.OccurredAt),
	)
	return err
}

// CountActivityOn counts entries for a kind on the calendar day containing
// the given instant (UTC).
func (r *SQLiteRepository) CountActivityOn(ctx context.Context, kind string, day time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM activity_log
		WHERE kind = ? AND date(occurred_at) = date(?)`,
		kind, mustTime(day),
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SQLiteRepository) ListDayTotals(ctx context.Context, since time.Time) ([]DayTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date(occurred_at) AS day,
			SUM(CASE WHEN kind = 'water' THEN 1 ELSE 0 END),
			SUM(CASE WHEN kind = 'standup' THEN 1 ELSE 0 END)
		FROM activity_log
		WHERE occurred_at >= ?
		GROUP BY day
		ORDER BY day DESC`,
		mustTime(since),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DayTotal, 0)
	for rows.Next() {
		var item DayTotal
		if scanErr := rows.Scan(&item.Date, &item.Water, &item.Standup); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTimer(s scanner) (TimerSnapshot, error) {
	var out TimerSnapshot
	var intervalSec, remainingSec int64
	var nextFire, fired sql.NullString
	var updated string
	if err := s.Scan(&out.Kind, &out.State, &intervalSec, &nextFire, &remainingSec, &fired, &updated); err != nil {
		return TimerSnapshot{}, err
	}
	nextFireAt, err := parseNullableTime(nextFire)
	if err != nil {
		return TimerSnapshot{}, err
	}
	firedAt, err := parseNullableTime(fired)
	if err != nil {
		return TimerSnapshot{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return TimerSnapshot{}, err
	}
	out.Interval = time.Duration(intervalSec) * time.Second
	out.Remaining = time.Duration(remainingSec) * time.Second
	out.NextFireAt = nextFireAt
	out.FiredAt = firedAt
	out.UpdatedAt = updatedAt
	return out, nil
}
