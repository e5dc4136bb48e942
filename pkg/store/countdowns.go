package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/QinMou000/SuiJi/pkg/live"
)

const (
	upsertCountdownStatement = `
	INSERT INTO countdowns (id, title, date, type, note, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		date = excluded.date,
		type = excluded.type,
		note = excluded.note,
		created_at = excluded.created_at
	`

	getCountdownStatement = `
	SELECT id, title, date, type, note, created_at
	FROM countdowns
	WHERE id = ?
	`

	listCountdownsStatement = `
	SELECT id, title, date, type, note, created_at
	FROM countdowns
	ORDER BY date ASC
	`

	listCountdownsByTypeStatement = `
	SELECT id, title, date, type, note, created_at
	FROM countdowns
	WHERE type = ?
	ORDER BY date ASC
	`

	deleteCountdownStatement = `
	DELETE FROM countdowns
	WHERE id = ?
	`
)

// NormalizeToLocalMidnight truncates a millisecond epoch to local midnight.
func NormalizeToLocalMidnight(tsMillis int64) int64 {
	t := time.UnixMilli(tsMillis).Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local).UnixMilli()
}

// DaysFromToday returns the whole days between now's local midnight and the
// countdown's anchor date: positive for a future date (days remaining),
// negative for a past one (days elapsed). The arithmetic sign is the only
// authority — the anniversary/countdown label is a display hint and may
// disagree with it.
func (c Countdown) DaysFromToday(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := time.UnixMilli(c.Date).In(now.Location())
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, now.Location())
	return int(targetDay.Sub(today).Hours() / 24)
}

// SaveCountdown validates and upserts a countdown, normalizing the anchor
// date to local midnight.
func (s *Store) SaveCountdown(ctx context.Context, c Countdown) (Countdown, error) {
	if c.Title == "" {
		return Countdown{}, &ValidationError{Field: "title", Reason: "required"}
	}
	if c.Type != CountdownAnniversary && c.Type != CountdownCountdown {
		return Countdown{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown countdown type %q", c.Type)}
	}
	if c.Date == 0 {
		return Countdown{}, &ValidationError{Field: "date", Reason: "required"}
	}
	c.Date = NormalizeToLocalMidnight(c.Date)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == 0 {
		existing, err := s.GetCountdown(ctx, c.ID)
		switch {
		case err == nil:
			c.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrCountdownNotFound):
			c.CreatedAt = time.Now().UnixMilli()
		default:
			return Countdown{}, err
		}
	}

	_, err := s.db.ExecContext(ctx, upsertCountdownStatement,
		c.ID, c.Title, c.Date, string(c.Type), c.Note, c.CreatedAt)
	if err != nil {
		return Countdown{}, fmt.Errorf("failed to upsert countdown: %w", err)
	}
	s.bus.Publish(live.Countdowns)
	return c, nil
}

// GetCountdown retrieves one countdown.
func (s *Store) GetCountdown(ctx context.Context, id string) (Countdown, error) {
	return scanCountdown(s.db.QueryRowContext(ctx, getCountdownStatement, id))
}

// ListCountdowns returns all countdowns ordered by anchor date.
func (s *Store) ListCountdowns(ctx context.Context) ([]Countdown, error) {
	return s.queryCountdowns(ctx, listCountdownsStatement)
}

// ListCountdownsByType returns the countdowns carrying one label.
func (s *Store) ListCountdownsByType(ctx context.Context, t CountdownType) ([]Countdown, error) {
	return s.queryCountdowns(ctx, listCountdownsByTypeStatement, string(t))
}

// DeleteCountdown removes one countdown.
func (s *Store) DeleteCountdown(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteCountdownStatement, id)
	if err != nil {
		return fmt.Errorf("failed to delete countdown: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCountdownNotFound
	}
	s.bus.Publish(live.Countdowns)
	return nil
}

func (s *Store) queryCountdowns(ctx context.Context, query string, args ...any) ([]Countdown, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query countdowns: %w", err)
	}
	defer rows.Close()

	var items []Countdown
	for rows.Next() {
		c, err := scanCountdown(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating countdown rows: %w", err)
	}
	return items, nil
}

func scanCountdown(row rowScanner) (Countdown, error) {
	var c Countdown
	var cdType string
	err := row.Scan(&c.ID, &c.Title, &c.Date, &cdType, &c.Note, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Countdown{}, ErrCountdownNotFound
		}
		return Countdown{}, fmt.Errorf("failed to scan countdown row: %w", err)
	}
	c.Type = CountdownType(cdType)
	return c, nil
}
