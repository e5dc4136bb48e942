package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/QinMou000/SuiJi/pkg/blocks"
	"github.com/QinMou000/SuiJi/pkg/store"
)

func TestExportMarkdownPlainNote(t *testing.T) {
	created := time.Date(2026, time.May, 1, 9, 30, 0, 0, time.Local)
	note := store.Note{
		Title:     "早餐",
		Content:   "豆浆油条",
		Format:    blocks.FormatPlain,
		Tags:      []string{"life", "food"},
		CreatedAt: created.UnixMilli(),
	}
	media := []store.Media{
		{Type: store.MediaPhoto, Payload: "data:image/png;base64,aaaa"},
		{Type: store.MediaLink, Payload: "https://example.com/recipe"},
	}

	doc, err := ExportMarkdown(note, media)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}

	for _, want := range []string{
		"---\n",
		"date: \"2026-05-01 09:30:00\"",
		"- life",
		"- food",
		"豆浆油条",
		"[照片]",
		"https://example.com/recipe",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "base64") {
		t.Error("Binary payload leaked into the markdown projection")
	}
}

func TestExportMarkdownBlockNote(t *testing.T) {
	content, err := blocks.Serialize([]blocks.Block{
		{ID: "b1", Kind: blocks.KindText, Text: "first thought"},
		{ID: "b2", Kind: blocks.KindPhoto, MediaRef: "m1"},
		{ID: "b3", Kind: blocks.KindVoice, MediaRef: "m2", DurationSeconds: 8},
		{ID: "b4", Kind: blocks.KindLink, URL: "https://example.com"},
	})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	note := store.Note{Content: content, Format: blocks.FormatBlocks, CreatedAt: time.Now().UnixMilli()}

	doc, err := ExportMarkdown(note, nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	wantBody := "first thought\n\n[照片]\n\n[语音]\n\nhttps://example.com"
	if !strings.Contains(doc, wantBody) {
		t.Errorf("Block projection wrong:\n%s", doc)
	}
}

func TestMarkdownFileName(t *testing.T) {
	created := time.Date(2026, time.May, 1, 9, 30, 15, 0, time.Local)
	note := store.Note{Title: `a/b:c*d?"e"`, CreatedAt: created.UnixMilli()}
	got := MarkdownFileName(note)
	want := "2026-05-01_09-30-15_a_b_c_d__e_.md"
	if got != want {
		t.Errorf("MarkdownFileName = %q, want %q", got, want)
	}

	untitled := store.Note{Content: "第一行\n第二行", CreatedAt: created.UnixMilli()}
	if got := MarkdownFileName(untitled); !strings.Contains(got, "第一行") {
		t.Errorf("Untitled note should fall back to the derived title, got %q", got)
	}
}

func TestImportMarkdownRoundTrip(t *testing.T) {
	doc := "---\ndate: \"2026-05-01 09:30:00\"\ntags:\n    - life\n    - food\n---\n\n豆浆油条\n"
	note := ImportMarkdown(doc)

	if note.Content != "豆浆油条" {
		t.Errorf("Body = %q", note.Content)
	}
	if diff := cmp.Diff([]string{"life", "food"}, note.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	want := time.Date(2026, time.May, 1, 9, 30, 0, 0, time.Local).UnixMilli()
	if note.CreatedAt != want {
		t.Errorf("CreatedAt = %d, want %d", note.CreatedAt, want)
	}
	if note.Title != "豆浆油条" {
		t.Errorf("Title = %q", note.Title)
	}
}

func TestImportMarkdownCategoriesKey(t *testing.T) {
	doc := "---\ndate: \"2026-05-01 09:30:00\"\ntags:\n    - life\ncategories:\n    - food\n    - life\n---\n\n豆浆油条\n"
	note := ImportMarkdown(doc)
	if diff := cmp.Diff([]string{"life", "food"}, note.Tags); diff != "" {
		t.Errorf("Categories should merge into tags without duplicates (-want +got):\n%s", diff)
	}
}

func TestImportMarkdownMalformedFrontMatter(t *testing.T) {
	cases := []string{
		"---\ndate: [unclosed\n---\n\nbody text",
		"no front matter at all",
		"---\nnever closed",
	}
	for _, doc := range cases {
		note := ImportMarkdown(doc)
		if note.Content == "" {
			t.Errorf("Malformed front matter must not lose the body: %q", doc)
		}
		if len(note.Tags) != 0 || note.CreatedAt != 0 {
			t.Errorf("Malformed front matter leaked metadata: %+v", note)
		}
	}
}
