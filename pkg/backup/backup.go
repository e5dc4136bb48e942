// Package backup round-trips store contents through a versioned JSON archive
// and through per-note markdown files with YAML front matter.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/QinMou000/SuiJi/pkg/store"
)

// ArchiveVersion is the current archive format. Version 1 archives (notes and
// media only, before tags and countdowns existed) still import cleanly since
// the later sections are optional.
const ArchiveVersion = 2

var (
	ErrUnsupportedArchive = errors.New("unsupported archive version")
	ErrMalformedArchive   = errors.New("malformed archive")
)

// Archive is one full snapshot of the journal. Field names are part of the
// wire format and must stay stable across releases.
type Archive struct {
	Version    int               `json:"version"`
	Timestamp  int64             `json:"timestamp"`
	Records    []store.Note      `json:"records"`
	Media      []store.Media     `json:"media"`
	Tags       []store.Tag       `json:"tags,omitempty"`
	Countdowns []store.Countdown `json:"countdowns,omitempty"`
}

// Export snapshots the full store into an archive. The timestamp is the
// caller-observed export moment in milliseconds.
func Export(ctx context.Context, s *store.Store, timestamp int64) (Archive, error) {
	notes, err := s.ListNotes(ctx)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to export notes: %w", err)
	}
	media, err := s.ListAllMedia(ctx)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to export media: %w", err)
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to export tags: %w", err)
	}
	countdowns, err := s.ListCountdowns(ctx)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to export countdowns: %w", err)
	}

	return Archive{
		Version:    ArchiveVersion,
		Timestamp:  timestamp,
		Records:    notes,
		Media:      media,
		Tags:       tags,
		Countdowns: countdowns,
	}, nil
}

// Write serializes an archive as indented JSON.
func Write(w io.Writer, a Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// Read parses and validates an archive. Unknown future versions are rejected
// rather than half-imported.
func Read(r io.Reader) (Archive, error) {
	var a Archive
	dec := json.NewDecoder(r)
	if err := dec.Decode(&a); err != nil {
		return Archive{}, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	if a.Version < 1 || a.Version > ArchiveVersion {
		return Archive{}, fmt.Errorf("%w: %d", ErrUnsupportedArchive, a.Version)
	}
	for i, note := range a.Records {
		if note.ID == "" {
			return Archive{}, fmt.Errorf("%w: record %d has no id", ErrMalformedArchive, i)
		}
	}
	for i, m := range a.Media {
		if m.ID == "" || m.NoteID == "" {
			return Archive{}, fmt.Errorf("%w: media %d missing id or noteId", ErrMalformedArchive, i)
		}
	}
	return a, nil
}

// Import merges an archive into the store: rows are upserted by primary key,
// existing rows absent from the archive survive. Never a destructive restore.
func Import(ctx context.Context, s *store.Store, a Archive) error {
	return s.ImportMerge(ctx, a.Records, a.Media, a.Tags, a.Countdowns)
}
