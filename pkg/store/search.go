package store

import (
	"context"
	"strings"

	"github.com/QinMou000/SuiJi/pkg/blocks"
)

// SearchNotes runs a substring scan over the searchable projection of every
// note: title plus text-block contents (or the raw body for plain notes)
// plus link preview titles/descriptions, and the note's tags. Content has no
// dedicated index, so this is a predicate scan by design.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]Note, error) {
	notes, err := s.ListNotes(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return notes, nil
	}

	var matched []Note
	for _, note := range notes {
		if noteMatches(note, query) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

func noteMatches(note Note, lowerQuery string) bool {
	searchable := blocks.SearchableText(note.Title, note.Content, note.Format)
	if strings.Contains(strings.ToLower(searchable), lowerQuery) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	return false
}
