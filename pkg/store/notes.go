package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/QinMou000/SuiJi/pkg/blocks"
	"github.com/QinMou000/SuiJi/pkg/live"
)

const (
	upsertNoteStatement = `
	INSERT INTO notes (id, title, content, content_format, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		content_format = excluded.content_format,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`

	getNoteStatement = `
	SELECT id, title, content, content_format, created_at, updated_at
	FROM notes
	WHERE id = ?
	`

	listNotesStatement = `
	SELECT id, title, content, content_format, created_at, updated_at
	FROM notes
	ORDER BY updated_at DESC
	`

	listNotesByTagStatement = `
	SELECT n.id, n.title, n.content, n.content_format, n.created_at, n.updated_at
	FROM notes n
	JOIN note_tags nt ON n.id = nt.note_id
	WHERE nt.tag = ?
	ORDER BY n.updated_at DESC
	`

	deleteNoteStatement = `
	DELETE FROM notes
	WHERE id = ?
	`

	deleteNoteTagsStatement = `
	DELETE FROM note_tags
	WHERE note_id = ?
	`

	insertNoteTagStatement = `
	INSERT INTO note_tags (note_id, tag, position)
	VALUES (?, ?, ?)
	`

	listNoteTagsStatement = `
	SELECT tag FROM note_tags
	WHERE note_id = ?
	ORDER BY position ASC
	`
)

// NoteTimeField names an indexed timestamp field usable in range queries.
type NoteTimeField string

const (
	NoteCreatedAt NoteTimeField = "created_at"
	NoteUpdatedAt NoteTimeField = "updated_at"
)

// SaveNote upserts a note together with the full replacement set of its
// media rows, atomically: either both the note row and its media reach their
// new state, or neither does. The note's previous media set is deleted and
// the given one reinserted (replace semantics); incoming media keep their
// ids, so references stay stable across edits. An empty note id means
// create. Timestamps are managed here: CreatedAt is preserved for existing
// notes, UpdatedAt is refreshed on every save.
func (s *Store) SaveNote(ctx context.Context, note Note, media []Media) (Note, error) {
	if note.Format == "" {
		note.Format = blocks.FormatPlain
	}
	if strings.TrimSpace(note.Content) == "" && len(media) == 0 {
		return Note{}, &ValidationError{Field: "content", Reason: "a note needs content or at least one media item"}
	}
	if note.Format == blocks.FormatBlocks {
		if _, err := blocks.Parse(note.Content); err != nil {
			return Note{}, &ValidationError{Field: "content", Reason: fmt.Sprintf("invalid block sequence: %v", err)}
		}
	}

	if note.ID == "" {
		note.ID = uuid.NewString()
	}

	now := time.Now().UnixMilli()
	existing, err := s.GetNote(ctx, note.ID)
	switch {
	case err == nil:
		note.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNoteNotFound):
		if note.CreatedAt == 0 {
			note.CreatedAt = now
		}
	default:
		return Note{}, err
	}
	note.UpdatedAt = now
	if note.UpdatedAt < note.CreatedAt {
		note.UpdatedAt = note.CreatedAt
	}

	cols := []live.Collection{live.Notes, live.Media}
	if len(note.Tags) > 0 {
		cols = append(cols, live.Tags)
	}

	err = s.WithTransaction(ctx, cols, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, upsertNoteStatement,
			note.ID, nullIfEmpty(note.Title), note.Content, string(note.Format), note.CreatedAt, note.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert note: %w", err)
		}

		if _, err := tx.ExecContext(ctx, deleteNoteTagsStatement, note.ID); err != nil {
			return fmt.Errorf("failed to clear note tags: %w", err)
		}
		for i, tag := range note.Tags {
			if _, err := tx.ExecContext(ctx, ensureTagStatement, tag); err != nil {
				return fmt.Errorf("failed to ensure tag %q: %w", tag, err)
			}
			if _, err := tx.ExecContext(ctx, insertNoteTagStatement, note.ID, tag, i); err != nil {
				return fmt.Errorf("failed to link tag %q: %w", tag, err)
			}
		}

		if _, err := tx.ExecContext(ctx, deleteMediaByNoteStatement, note.ID); err != nil {
			return fmt.Errorf("failed to clear previous media set: %w", err)
		}
		for i := range media {
			m := &media[i]
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.NoteID = note.ID
			if m.CreatedAt == 0 {
				m.CreatedAt = now
			}
			if err := insertMedia(ctx, tx, *m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Note{}, err
	}

	return note, nil
}

// GetNote retrieves a note with its tags in display order.
func (s *Store) GetNote(ctx context.Context, id string) (Note, error) {
	note, err := scanNote(s.db.QueryRowContext(ctx, getNoteStatement, id))
	if err != nil {
		return Note{}, err
	}
	note.Tags, err = s.noteTags(ctx, id)
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// ListNotes returns all notes ordered by most recently updated.
func (s *Store) ListNotes(ctx context.Context) ([]Note, error) {
	return s.queryNotes(ctx, listNotesStatement)
}

// ListNotesByTag returns the notes carrying the given tag, most recently
// updated first.
func (s *Store) ListNotesByTag(ctx context.Context, tag string) ([]Note, error) {
	return s.queryNotes(ctx, listNotesByTagStatement, tag)
}

// ListNotesBetween runs an indexed range query over one of the note
// timestamp fields. Bounds are millisecond epochs; each bound's inclusivity
// is controlled by the matching flag.
func (s *Store) ListNotesBetween(ctx context.Context, field NoteTimeField, lower, upper int64, inclusiveLower, inclusiveUpper bool) ([]Note, error) {
	switch field {
	case NoteCreatedAt, NoteUpdatedAt:
	default:
		return nil, &ValidationError{Field: "field", Reason: fmt.Sprintf("unsupported range field %q", field)}
	}

	lowerOp := ">"
	if inclusiveLower {
		lowerOp = ">="
	}
	upperOp := "<"
	if inclusiveUpper {
		upperOp = "<="
	}

	query := fmt.Sprintf(`
	SELECT id, title, content, content_format, created_at, updated_at
	FROM notes
	WHERE %[1]s %[2]s ? AND %[1]s %[3]s ?
	ORDER BY %[1]s ASC`, string(field), lowerOp, upperOp)

	return s.queryNotes(ctx, query, lower, upper)
}

// DeleteNote removes a note and, atomically, every media row it owns. A read
// racing the delete observes either the full prior state or the full
// post-delete state.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.WithTransaction(ctx, []live.Collection{live.Notes, live.Media}, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteMediaByNoteStatement, id); err != nil {
			return fmt.Errorf("failed to delete note media: %w", err)
		}
		res, err := tx.ExecContext(ctx, deleteNoteStatement, id)
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrNoteNotFound
		}
		return nil
	})
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}

	// One tag lookup per note is fine at personal-journal volumes.
	for i := range notes {
		notes[i].Tags, err = s.noteTags(ctx, notes[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return notes, nil
}

func (s *Store) noteTags(ctx context.Context, noteID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listNoteTagsStatement, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query note tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan note tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note tag rows: %w", err)
	}
	return tags, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var note Note
	var title sql.NullString
	var format string
	err := row.Scan(&note.ID, &title, &note.Content, &format, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, fmt.Errorf("failed to scan note row: %w", err)
	}
	note.Title = title.String
	note.Format = blocks.Format(format)
	return note, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
