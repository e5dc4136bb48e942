package store

import (
	"context"
	"testing"

	"github.com/QinMou000/SuiJi/pkg/blocks"
)

func TestSearchNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plain := mustSaveNote(t, s, Note{Title: "买菜清单", Content: "土豆 番茄 鸡蛋"}, nil)
	tagged := mustSaveNote(t, s, Note{Content: "standup notes", Tags: []string{"work"}}, nil)

	blockContent := mustBlockContent(t, []blocks.Block{
		{ID: "b1", Kind: blocks.KindText, Text: "morning run felt great"},
		{ID: "b2", Kind: blocks.KindLink, URL: "https://example.com",
			Metadata: &blocks.LinkMetadata{Title: "Training Plan", Description: "12-week schedule"}},
	})
	rich := mustSaveNote(t, s, Note{Content: blockContent, Format: blocks.FormatBlocks}, nil)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"plain body", "番茄", []string{plain.ID}},
		{"title", "清单", []string{plain.ID}},
		{"tag", "work", []string{tagged.ID}},
		{"text block", "morning run", []string{rich.ID}},
		{"link metadata title", "training", []string{rich.ID}},
		{"link metadata description", "schedule", []string{rich.ID}},
		{"case insensitive", "STANDUP", []string{tagged.ID}},
		{"no match", "nothing here", nil},
	}
	for _, tc := range tests {
		got, err := s.SearchNotes(ctx, tc.query)
		if err != nil {
			t.Fatalf("%s: SearchNotes failed: %v", tc.name, err)
		}
		if len(got) != len(tc.wantIDs) {
			t.Errorf("%s: got %d notes, want %d", tc.name, len(got), len(tc.wantIDs))
			continue
		}
		for i, id := range tc.wantIDs {
			if got[i].ID != id {
				t.Errorf("%s: position %d got %s, want %s", tc.name, i, got[i].ID, id)
			}
		}
	}
}

func TestSearchNotesEmptyQueryReturnsAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveNote(t, s, Note{Content: "one"}, nil)
	mustSaveNote(t, s, Note{Content: "two"}, nil)

	for _, q := range []string{"", "   "} {
		got, err := s.SearchNotes(ctx, q)
		if err != nil {
			t.Fatalf("SearchNotes(%q) failed: %v", q, err)
		}
		if len(got) != 2 {
			t.Errorf("SearchNotes(%q) should return all notes, got %d", q, len(got))
		}
	}
}

func TestSearchNotesRawJSONNotMatched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	content := mustBlockContent(t, []blocks.Block{{ID: "b1", Kind: blocks.KindText, Text: "hello"}})
	mustSaveNote(t, s, Note{Content: content, Format: blocks.FormatBlocks}, nil)

	// Structural JSON keys must not leak into the searchable projection.
	got, err := s.SearchNotes(ctx, "mediaRef")
	if err != nil {
		t.Fatalf("SearchNotes failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Structural key matched %d notes, want 0", len(got))
	}
}
