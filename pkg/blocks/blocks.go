// Package blocks implements the rich-content model for note bodies: an
// ordered sequence of typed blocks serialized into the note's single content
// field, with a lossless fallback for legacy plain-text notes.
package blocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Format declares how a note's content field is encoded.
type Format string

const (
	// FormatPlain marks freeform text or markdown content.
	FormatPlain Format = "plain"
	// FormatBlocks marks content holding a JSON-encoded block sequence.
	FormatBlocks Format = "blocks"
)

// Kind tags the variant of a block.
type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
	KindVoice Kind = "voice"
	KindLink  Kind = "link"
)

var (
	// ErrUnknownKind is returned by Parse for a block whose kind tag is not
	// one of the known variants. Unknown kinds are rejected, never silently
	// dropped.
	ErrUnknownKind = errors.New("unknown block kind")
	// ErrEmptySequence is returned by Parse for an empty block sequence,
	// which is invalid for save.
	ErrEmptySequence = errors.New("empty block sequence")
)

// LinkMetadata carries the optional preview data attached to a link block.
type LinkMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Block is one typed unit of a note's body. The Kind tag decides which
// fields are meaningful: text blocks carry Text, photo and voice blocks
// reference a media row through MediaRef (voice additionally carries
// DurationSeconds), link blocks carry URL and optional Metadata. The block's
// own ID is stable across reorders so media rows keep referential
// correctness.
type Block struct {
	ID              string        `json:"id,omitempty"`
	Kind            Kind          `json:"kind"`
	Text            string        `json:"text,omitempty"`
	MediaRef        string        `json:"mediaRef,omitempty"`
	DurationSeconds int           `json:"durationSeconds,omitempty"`
	URL             string        `json:"url,omitempty"`
	Metadata        *LinkMetadata `json:"metadata,omitempty"`
}

// TextBlock builds a plain text block.
func TextBlock(text string) Block {
	return Block{Kind: KindText, Text: text}
}

// Serialize JSON-encodes the ordered block sequence.
func Serialize(blocks []Block) (string, error) {
	data, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("failed to serialize blocks: %w", err)
	}
	return string(data), nil
}

// Parse decodes a JSON block sequence strictly. It is the save-path
// counterpart of Decode: malformed JSON, an empty sequence, an unknown kind,
// or a block missing its kind-required field are all errors.
func Parse(content string) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal([]byte(content), &blocks); err != nil {
		return nil, fmt.Errorf("failed to parse block sequence: %w", err)
	}
	if len(blocks) == 0 {
		return nil, ErrEmptySequence
	}
	for i, b := range blocks {
		if err := validate(b); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return blocks, nil
}

func validate(b Block) error {
	switch b.Kind {
	case KindText:
		return nil
	case KindPhoto, KindVoice:
		if b.MediaRef == "" {
			return fmt.Errorf("%s block missing mediaRef", b.Kind)
		}
		return nil
	case KindLink:
		if b.URL == "" {
			return errors.New("link block missing url")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, b.Kind)
	}
}

// Decode is the lenient read-path counterpart of Parse. Plain-format
// content, or blocks-format content that fails strict parsing, yields
// exactly one text block holding the full original string, so every note —
// however stored — produces at least one text-bearing projection.
func Decode(content string, format Format) []Block {
	if format == FormatBlocks {
		if blocks, err := Parse(content); err == nil {
			return blocks
		}
	}
	return []Block{TextBlock(content)}
}

// SearchableText builds the plain-text projection used for substring search:
// the title (when present) followed by every text block's content, newline
// joined. Media blocks contribute nothing searchable except a link's
// metadata title/description. Plain-format content contributes its raw
// string.
func SearchableText(title, content string, format Format) string {
	parts := make([]string, 0, 4)
	if title != "" {
		parts = append(parts, title)
	}

	if format != FormatBlocks {
		parts = append(parts, content)
		return strings.Join(parts, "\n")
	}

	for _, b := range Decode(content, format) {
		switch b.Kind {
		case KindText:
			parts = append(parts, b.Text)
		case KindLink:
			if b.Metadata != nil {
				if b.Metadata.Title != "" {
					parts = append(parts, b.Metadata.Title)
				}
				if b.Metadata.Description != "" {
					parts = append(parts, b.Metadata.Description)
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}
