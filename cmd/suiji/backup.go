package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/QinMou000/SuiJi/pkg/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import backups",
	Long:  `Provides commands for exporting the journal to a JSON archive or markdown files, and importing archives back.`,
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the full journal to a JSON archive",
	Long:  `Writes every note, media attachment, tag, and countdown into a single versioned JSON archive.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		archive, err := backup.Export(cmd.Context(), s, time.Now().UnixMilli())
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create archive file: %w", err)
		}
		defer f.Close()

		if err := backup.Write(f, archive); err != nil {
			return err
		}
		fmt.Printf("Exported %d notes, %d media, %d tags, %d countdowns to %s\n",
			len(archive.Records), len(archive.Media), len(archive.Tags), len(archive.Countdowns), args[0])
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a JSON archive",
	Long:  `Merges an archive into the database. Rows are upserted by ID; existing data absent from the archive is kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open archive file: %w", err)
		}
		defer f.Close()

		archive, err := backup.Read(f)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		if err := backup.Import(cmd.Context(), s, archive); err != nil {
			return fmt.Errorf("failed to import archive: %w", err)
		}
		fmt.Printf("Imported %d notes, %d media, %d tags, %d countdowns from %s\n",
			len(archive.Records), len(archive.Media), len(archive.Tags), len(archive.Countdowns), args[0])
		return nil
	},
}

var backupMarkdownCmd = &cobra.Command{
	Use:   "markdown [dir]",
	Short: "Export every note as a markdown file",
	Long: `Writes one markdown file per note into the given directory. Each file carries YAML
front matter with the note's tags and creation date; photo and voice attachments
appear as placeholders and links as their URLs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		notes, err := s.ListNotes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		if err := os.MkdirAll(args[0], 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		for _, note := range notes {
			media, err := s.ListMediaForNote(cmd.Context(), note.ID)
			if err != nil {
				return fmt.Errorf("failed to list media for note %s: %w", note.ID, err)
			}
			doc, err := backup.ExportMarkdown(note, media)
			if err != nil {
				return err
			}
			path := filepath.Join(args[0], backup.MarkdownFileName(note))
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
		fmt.Printf("Exported %d notes to %s\n", len(notes), args[0])
		return nil
	},
}

var backupImportMarkdownCmd = &cobra.Command{
	Use:   "import-markdown [files...]",
	Short: "Import markdown files as notes",
	Long: `Creates one note per markdown file. Tags and the creation date are read from the YAML
front matter when present; files with malformed front matter are imported whole as the body.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			note := backup.ImportMarkdown(string(data))
			if _, err := s.SaveNote(cmd.Context(), note, nil); err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
		}
		fmt.Printf("Imported %d markdown files.\n", len(args))
		return nil
	},
}

func initBackupCmd() {
	backupCmd.AddCommand(backupExportCmd, backupImportCmd, backupMarkdownCmd, backupImportMarkdownCmd)
}
