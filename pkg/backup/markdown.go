package backup

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/QinMou000/SuiJi/pkg/blocks"
	pkgdb "github.com/QinMou000/SuiJi/pkg/db"
	"github.com/QinMou000/SuiJi/pkg/store"
)

const markdownTimeLayout = "2006-01-02 15:04:05"

// Placeholders standing in for binary attachments in the markdown projection.
// The payloads themselves only travel through the JSON archive.
const (
	photoPlaceholder = "[照片]"
	voicePlaceholder = "[语音]"
)

type frontMatter struct {
	Date string   `yaml:"date"`
	Tags []string `yaml:"tags,omitempty"`
	// Some exporters label tags "categories"; accepted on import only.
	Categories []string `yaml:"categories,omitempty"`
}

// MarkdownFileName derives the per-note file name: creation timestamp plus a
// filesystem-safe slice of the title.
func MarkdownFileName(note store.Note) string {
	ts := time.UnixMilli(note.CreatedAt).Local().Format("2006-01-02_15-04-05")
	title := note.Title
	if title == "" {
		title = pkgdb.DeriveTitle(note.Content)
	}
	return fmt.Sprintf("%s_%s.md", ts, sanitizeFileName(title))
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// ExportMarkdown renders one note as a markdown document with YAML front
// matter. Block notes are projected to text: text blocks verbatim, link
// blocks as their URL, photo and voice blocks as placeholders.
func ExportMarkdown(note store.Note, media []store.Media) (string, error) {
	fm := frontMatter{
		Date: time.UnixMilli(note.CreatedAt).Local().Format(markdownTimeLayout),
		Tags: note.Tags,
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(markdownBody(note, media))
	b.WriteString("\n")
	return b.String(), nil
}

func markdownBody(note store.Note, media []store.Media) string {
	var lines []string
	if note.Format == blocks.FormatBlocks {
		for _, block := range blocks.Decode(note.Content, note.Format) {
			switch block.Kind {
			case blocks.KindText:
				lines = append(lines, block.Text)
			case blocks.KindPhoto:
				lines = append(lines, photoPlaceholder)
			case blocks.KindVoice:
				lines = append(lines, voicePlaceholder)
			case blocks.KindLink:
				lines = append(lines, block.URL)
			}
		}
		return strings.Join(lines, "\n\n")
	}

	lines = append(lines, note.Content)
	for _, m := range media {
		switch m.Type {
		case store.MediaPhoto:
			lines = append(lines, photoPlaceholder)
		case store.MediaVoice:
			lines = append(lines, voicePlaceholder)
		case store.MediaLink:
			lines = append(lines, m.Payload)
		}
	}
	return strings.Join(lines, "\n\n")
}

// ImportMarkdown parses one markdown document back into a plain note. A
// malformed or absent front matter block demotes the whole file to the note
// body; import never fails on bad metadata.
func ImportMarkdown(content string) store.Note {
	body, fm := splitFrontMatter(content)

	tags := fm.Tags
	for _, c := range fm.Categories {
		seen := false
		for _, t := range tags {
			if t == c {
				seen = true
				break
			}
		}
		if !seen {
			tags = append(tags, c)
		}
	}

	note := store.Note{
		Content: body,
		Format:  blocks.FormatPlain,
		Title:   pkgdb.DeriveTitle(body),
		Tags:    tags,
	}
	if fm.Date != "" {
		if t, err := time.ParseInLocation(markdownTimeLayout, fm.Date, time.Local); err == nil {
			note.CreatedAt = t.UnixMilli()
		}
	}
	return note
}

func splitFrontMatter(content string) (string, frontMatter) {
	var fm frontMatter
	if !strings.HasPrefix(content, "---\n") {
		return strings.TrimSpace(content), fm
	}
	rest := content[len("---\n"):]
	head, body, found := strings.Cut(rest, "\n---")
	if !found {
		return strings.TrimSpace(content), fm
	}
	if err := yaml.Unmarshal([]byte(head), &fm); err != nil {
		return strings.TrimSpace(content), frontMatter{}
	}
	return strings.TrimSpace(body), fm
}
