package blocks

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	original := []Block{
		{ID: "b1", Kind: KindText, Text: "今天的随记\nsecond paragraph"},
		{ID: "b2", Kind: KindPhoto, MediaRef: "m-photo-1"},
		{ID: "b3", Kind: KindVoice, MediaRef: "m-voice-1", DurationSeconds: 42},
		{ID: "b4", Kind: KindLink, URL: "https://example.com/post", Metadata: &LinkMetadata{
			Title:       "Example Post",
			Description: "A linked article",
			ImageURL:    "https://example.com/cover.png",
		}},
	}

	encoded, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse failed on serialized blocks: %v", err)
	}

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse(`[{"kind":"hologram","text":"hi"}]`)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got: %v", err)
	}
}

func TestParseRejectsEmptySequence(t *testing.T) {
	_, err := Parse(`[]`)
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Expected ErrEmptySequence, got: %v", err)
	}
}

func TestParseRejectsMissingRequiredFields(t *testing.T) {
	cases := []string{
		`[{"kind":"photo"}]`,
		`[{"kind":"voice","durationSeconds":3}]`,
		`[{"kind":"link"}]`,
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%s) should have failed but did not", c)
		}
	}
}

func TestDecodeFallbackLaw(t *testing.T) {
	cases := []struct {
		name    string
		content string
		format  Format
	}{
		{"plain format", "just some markdown **text**", FormatPlain},
		{"malformed json declared as blocks", `[{"kind":"text",`, FormatBlocks},
		{"non-array json declared as blocks", `{"kind":"text"}`, FormatBlocks},
		{"unknown kind declared as blocks", `[{"kind":"hologram"}]`, FormatBlocks},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Decode(c.content, c.format)
			if len(got) != 1 {
				t.Fatalf("Expected exactly one fallback block, got %d", len(got))
			}
			if got[0].Kind != KindText || got[0].Text != c.content {
				t.Errorf("Fallback block should carry the full original string, got %+v", got[0])
			}
		})
	}
}

func TestDecodeValidBlocks(t *testing.T) {
	content, err := Serialize([]Block{TextBlock("hi"), {Kind: KindPhoto, MediaRef: "m1"}})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	got := Decode(content, FormatBlocks)
	if len(got) != 2 {
		t.Fatalf("Expected 2 decoded blocks, got %d", len(got))
	}
	if got[0].Text != "hi" || got[1].MediaRef != "m1" {
		t.Errorf("Decoded blocks mismatch: %+v", got)
	}
}

func TestSearchableText(t *testing.T) {
	content, err := Serialize([]Block{
		TextBlock("first text"),
		{Kind: KindPhoto, MediaRef: "m1"},
		{Kind: KindLink, URL: "https://example.com", Metadata: &LinkMetadata{Title: "Example", Description: "desc"}},
		TextBlock("second text"),
	})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	got := SearchableText("My Title", content, FormatBlocks)
	want := "My Title\nfirst text\nExample\ndesc\nsecond text"
	if got != want {
		t.Errorf("SearchableText = %q, want %q", got, want)
	}

	// A bare link without metadata contributes nothing searchable.
	bare, err := Serialize([]Block{{Kind: KindLink, URL: "https://example.com"}})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if got := SearchableText("", bare, FormatBlocks); got != "" {
		t.Errorf("Bare link should contribute nothing searchable, got %q", got)
	}

	if got := SearchableText("T", "raw body", FormatPlain); got != "T\nraw body" {
		t.Errorf("Plain projection mismatch: %q", got)
	}
}
