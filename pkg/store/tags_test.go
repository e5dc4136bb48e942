package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestEnsureTagDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.EnsureTag(ctx, "foo"); err != nil {
			t.Fatalf("EnsureTag call %d failed: %v", i, err)
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "foo" {
		t.Errorf("Expected exactly one 'foo' row, got %+v", tags)
	}
}

func TestEnsureTagConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.EnsureTag(ctx, "foo")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Concurrent EnsureTag failed: %v", err)
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("Unique-name invariant violated: %d rows for 'foo'", len(tags))
	}
}

func TestEnsureTagRejectsEmptyName(t *testing.T) {
	s := newTestStore(t)
	if err := s.EnsureTag(context.Background(), ""); !IsValidation(err) {
		t.Errorf("Expected ValidationError for empty tag name, got: %v", err)
	}
}

func TestDeleteTagLeavesNotesUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := mustSaveNote(t, s, Note{Content: "tagged", Tags: []string{"fleeting"}}, nil)

	if err := s.DeleteTag(ctx, "fleeting"); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	got, err := s.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "fleeting" {
		t.Errorf("Note should keep its tag string after dictionary delete, got %v", got.Tags)
	}

	if err := s.DeleteTag(ctx, "fleeting"); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("Second delete should return ErrTagNotFound, got: %v", err)
	}
}

func TestTagsSortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.EnsureTag(ctx, name); err != nil {
			t.Fatalf("EnsureTag failed: %v", err)
		}
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, tag := range tags {
		if tag.Name != want[i] {
			t.Errorf("Expected tag %q at position %d, got %q", want[i], i, tag.Name)
		}
	}
}
