package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/QinMou000/SuiJi/pkg/blocks"
)

const (
	insertMediaStatement = `
	INSERT INTO media (id, note_id, media_type, payload, link_metadata, duration_seconds, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	getMediaStatement = `
	SELECT id, note_id, media_type, payload, link_metadata, duration_seconds, created_at
	FROM media
	WHERE id = ?
	`

	listMediaByNoteStatement = `
	SELECT id, note_id, media_type, payload, link_metadata, duration_seconds, created_at
	FROM media
	WHERE note_id = ?
	ORDER BY created_at ASC
	`

	listAllMediaStatement = `
	SELECT id, note_id, media_type, payload, link_metadata, duration_seconds, created_at
	FROM media
	ORDER BY created_at ASC
	`

	listMediaByTypeStatement = `
	SELECT id, note_id, media_type, payload, link_metadata, duration_seconds, created_at
	FROM media
	WHERE media_type = ?
	ORDER BY created_at DESC
	`

	deleteMediaByNoteStatement = `
	DELETE FROM media
	WHERE note_id = ?
	`
)

// Capture is the payload supplied by the media capture collaborator. The
// store wraps it into a media row; it never drives the camera or microphone
// itself.
type Capture struct {
	Type            MediaType
	Payload         string
	DurationSeconds int
}

// LinkPreviewer is the link-preview collaborator: given a URL it returns
// preview metadata or an error. Implementations live outside the store.
type LinkPreviewer interface {
	Preview(ctx context.Context, url string) (*blocks.LinkMetadata, error)
}

// NewMediaFromCapture wraps a capture payload into a media row for noteID.
func NewMediaFromCapture(noteID string, c Capture) Media {
	return Media{
		ID:              uuid.NewString(),
		NoteID:          noteID,
		Type:            c.Type,
		Payload:         c.Payload,
		DurationSeconds: c.DurationSeconds,
		CreatedAt:       time.Now().UnixMilli(),
	}
}

// NewLinkMedia builds a link media row for noteID, consulting the previewer
// when one is given. Preview failure is non-fatal: the row degrades to its
// raw URL.
func NewLinkMedia(ctx context.Context, previewer LinkPreviewer, noteID, url string) Media {
	m := Media{
		ID:        uuid.NewString(),
		NoteID:    noteID,
		Type:      MediaLink,
		Payload:   url,
		CreatedAt: time.Now().UnixMilli(),
	}
	if previewer != nil {
		if meta, err := previewer.Preview(ctx, url); err == nil && meta != nil {
			m.LinkMetadata = meta
		}
	}
	return m
}

// GetMedia retrieves a single media row.
func (s *Store) GetMedia(ctx context.Context, id string) (Media, error) {
	return scanMedia(s.db.QueryRowContext(ctx, getMediaStatement, id))
}

// ListMediaForNote returns the media rows owned by a note, oldest first.
func (s *Store) ListMediaForNote(ctx context.Context, noteID string) ([]Media, error) {
	return s.queryMedia(ctx, listMediaByNoteStatement, noteID)
}

// ListAllMedia returns every media row, oldest first.
func (s *Store) ListAllMedia(ctx context.Context) ([]Media, error) {
	return s.queryMedia(ctx, listAllMediaStatement)
}

// ListMediaByType returns all media rows of one type, newest first.
func (s *Store) ListMediaByType(ctx context.Context, mediaType MediaType) ([]Media, error) {
	return s.queryMedia(ctx, listMediaByTypeStatement, string(mediaType))
}

func (s *Store) queryMedia(ctx context.Context, query string, args ...any) ([]Media, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	var items []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media rows: %w", err)
	}
	return items, nil
}

func insertMedia(ctx context.Context, tx *sql.Tx, m Media) error {
	metadata, err := marshalLinkMetadata(m.LinkMetadata)
	if err != nil {
		return err
	}
	var duration any
	if m.DurationSeconds > 0 {
		duration = m.DurationSeconds
	}
	_, err = tx.ExecContext(ctx, insertMediaStatement,
		m.ID, m.NoteID, string(m.Type), m.Payload, metadata, duration, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert media %s: %w", m.ID, err)
	}
	return nil
}

func marshalLinkMetadata(meta *blocks.LinkMetadata) (any, error) {
	if meta == nil {
		return nil, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode link metadata: %w", err)
	}
	return string(data), nil
}

func scanMedia(row rowScanner) (Media, error) {
	var m Media
	var mediaType string
	var metadata sql.NullString
	var duration sql.NullInt64
	err := row.Scan(&m.ID, &m.NoteID, &mediaType, &m.Payload, &metadata, &duration, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Media{}, ErrMediaNotFound
		}
		return Media{}, fmt.Errorf("failed to scan media row: %w", err)
	}
	m.Type = MediaType(mediaType)
	if duration.Valid {
		m.DurationSeconds = int(duration.Int64)
	}
	if metadata.Valid && metadata.String != "" {
		var meta blocks.LinkMetadata
		if err := json.Unmarshal([]byte(metadata.String), &meta); err != nil {
			return Media{}, fmt.Errorf("failed to decode link metadata for media %s: %w", m.ID, err)
		}
		m.LinkMetadata = &meta
	}
	return m, nil
}
