package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/QinMou000/SuiJi/pkg/blocks"
)

// newTestStore opens a fresh store backed by a temp-dir database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suiji_test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustSaveNote is a helper for tests that only care about the saved note.
func mustSaveNote(t *testing.T, s *Store, note Note, media []Media) Note {
	t.Helper()
	saved, err := s.SaveNote(context.Background(), note, media)
	if err != nil {
		t.Fatalf("SaveNote failed: %v", err)
	}
	return saved
}

func mustBlockContent(t *testing.T, bs []blocks.Block) string {
	t.Helper()
	content, err := blocks.Serialize(bs)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	return content
}
