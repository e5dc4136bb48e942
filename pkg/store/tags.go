package store

import (
	"context"
	"fmt"

	"github.com/QinMou000/SuiJi/pkg/live"
)

const (
	// ensureTagStatement inserts a dictionary row only when the name is new.
	// Duplicate attempts fail closed inside SQLite instead of racing a
	// pre-check against a concurrent insert.
	ensureTagStatement = `
	INSERT INTO tags (name)
	VALUES (?)
	ON CONFLICT(name) DO NOTHING
	`

	listTagsStatement = `
	SELECT id, name FROM tags
	ORDER BY name ASC
	`

	deleteTagStatement = `
	DELETE FROM tags
	WHERE name = ?
	`
)

// EnsureTag inserts name into the tag dictionary if it is not there yet.
// Safe under concurrent callers: the unique-name constraint decides the
// winner and everyone else becomes a no-op.
func (s *Store) EnsureTag(ctx context.Context, name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "tag name cannot be empty"}
	}
	res, err := s.db.ExecContext(ctx, ensureTagStatement, name)
	if err != nil {
		return fmt.Errorf("failed to ensure tag %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.bus.Publish(live.Tags)
	}
	return nil
}

// ListTags returns the tag dictionary sorted by name.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, listTagsStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

// DeleteTag removes a dictionary entry. Notes already carrying the tag
// string are untouched: they reference tags by value, not by key.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, deleteTagStatement, name)
	if err != nil {
		return fmt.Errorf("failed to delete tag %q: %w", name, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTagNotFound
	}
	s.bus.Publish(live.Tags)
	return nil
}
