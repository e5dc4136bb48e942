package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/QinMou000/SuiJi/pkg/live"
)

const (
	upsertTagStatement = `
	INSERT INTO tags (id, name)
	VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
)

// ImportMerge upserts backup data by primary key inside one transaction.
// Rows already present are overwritten, rows absent from the archive are
// kept — a merge, never a destructive replace. Timestamps and ids arrive
// from the archive verbatim.
func (s *Store) ImportMerge(ctx context.Context, notes []Note, media []Media, tags []Tag, countdowns []Countdown) error {
	cols := []live.Collection{live.Notes, live.Media, live.Tags, live.Countdowns}
	return s.WithTransaction(ctx, cols, func(tx *sql.Tx) error {
		for _, note := range notes {
			_, err := tx.ExecContext(ctx, upsertNoteStatement,
				note.ID, nullIfEmpty(note.Title), note.Content, string(note.Format), note.CreatedAt, note.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to merge note %s: %w", note.ID, err)
			}
			if _, err := tx.ExecContext(ctx, deleteNoteTagsStatement, note.ID); err != nil {
				return fmt.Errorf("failed to clear tags for note %s: %w", note.ID, err)
			}
			for i, tag := range note.Tags {
				if _, err := tx.ExecContext(ctx, ensureTagStatement, tag); err != nil {
					return fmt.Errorf("failed to ensure tag %q: %w", tag, err)
				}
				if _, err := tx.ExecContext(ctx, insertNoteTagStatement, note.ID, tag, i); err != nil {
					return fmt.Errorf("failed to link tag %q to note %s: %w", tag, note.ID, err)
				}
			}
		}

		for _, m := range media {
			// Replace semantics by primary key: drop any previous row first
			// so the insert below can keep its single statement shape.
			if _, err := tx.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, m.ID); err != nil {
				return fmt.Errorf("failed to replace media %s: %w", m.ID, err)
			}
			if err := insertMedia(ctx, tx, m); err != nil {
				return err
			}
		}

		for _, t := range tags {
			if t.ID == 0 {
				if _, err := tx.ExecContext(ctx, ensureTagStatement, t.Name); err != nil {
					return fmt.Errorf("failed to merge tag %q: %w", t.Name, err)
				}
				continue
			}
			if _, err := tx.ExecContext(ctx, upsertTagStatement, t.ID, t.Name); err != nil {
				return fmt.Errorf("failed to merge tag %q: %w", t.Name, err)
			}
		}

		for _, c := range countdowns {
			_, err := tx.ExecContext(ctx, upsertCountdownStatement,
				c.ID, c.Title, c.Date, string(c.Type), c.Note, c.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to merge countdown %s: %w", c.ID, err)
			}
		}
		return nil
	})
}
