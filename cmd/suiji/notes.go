package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QinMou000/SuiJi/pkg/store"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage journal notes",
	Long:  `Provides commands for creating, listing, getting, and deleting notes.`,
}

var noteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new note",
	Long:  `Creates a new note with the given content and optional title and tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		tagsStr, _ := cmd.Flags().GetString("tags")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		note, err := s.SaveNote(cmd.Context(), store.Note{
			Title:   title,
			Content: content,
			Tags:    splitTags(tagsStr),
		}, nil)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		fmt.Println("Note created successfully:")
		return printJSON(note)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Long:  `Lists notes newest-first, optionally filtered by a tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		var notes []store.Note
		if tag != "" {
			notes, err = s.ListNotesByTag(cmd.Context(), tag)
		} else {
			notes, err = s.ListNotes(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}

		if len(notes) == 0 {
			fmt.Println("No notes found.")
			return nil
		}
		fmt.Println("Notes:")
		return printJSON(notes)
	},
}

var noteGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a specific note by its ID",
	Long:  `Retrieves and displays a note along with its media attachments.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		note, err := s.GetNote(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, store.ErrNoteNotFound) {
				fmt.Printf("Note with ID %s not found.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to get note: %w", err)
		}
		media, err := s.ListMediaForNote(cmd.Context(), note.ID)
		if err != nil {
			return fmt.Errorf("failed to get media for note: %w", err)
		}

		fmt.Printf("Note (ID: %s):\n", note.ID)
		if err := printJSON(note); err != nil {
			return err
		}
		if len(media) > 0 {
			fmt.Println("Media:")
			return printJSON(media)
		}
		return nil
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note by its ID",
	Long:  `Deletes a specific note and all of its media attachments.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		if err := s.DeleteNote(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, store.ErrNoteNotFound) {
				fmt.Printf("Note with ID %s not found.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to delete note: %w", err)
		}
		fmt.Printf("Note with ID %s and its media deleted successfully.\n", args[0])
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags",
	Long:  `Provides commands for listing and deleting dictionary tags.`,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known tags",
	Long:  `Lists the global tag dictionary sorted by name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		tags, err := s.ListTags(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		if len(tags) == 0 {
			fmt.Println("No tags found.")
			return nil
		}
		fmt.Println("Tags:")
		return printJSON(tags)
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a tag from the dictionary",
	Long:  `Removes a tag from the dictionary. Notes keep their tag strings; only the suggestion entry disappears.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		if err := s.DeleteTag(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, store.ErrTagNotFound) {
				fmt.Printf("Tag %q not found.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		fmt.Printf("Tag %q deleted from the dictionary.\n", args[0])
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search notes",
	Long:  `Searches notes by substring over titles, text content, link previews and tags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		notes, err := s.SearchNotes(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to search notes: %w", err)
		}
		if len(notes) == 0 {
			fmt.Println("No notes found matching the query.")
			return nil
		}
		fmt.Println("Search results:")
		return printJSON(notes)
	},
}

func initNotesCmd() {
	noteCreateCmd.Flags().StringP("title", "t", "", "Title of the note (derived from the first content line when omitted)")
	noteCreateCmd.Flags().StringP("content", "c", "", "Content of the note (required)")
	noteCreateCmd.MarkFlagRequired("content")
	noteCreateCmd.Flags().String("tags", "", "Comma-separated list of tags for the note")

	noteListCmd.Flags().StringP("tag", "t", "", "Only list notes carrying this tag")

	notesCmd.AddCommand(noteCreateCmd, noteListCmd, noteGetCmd, noteDeleteCmd)
	tagsCmd.AddCommand(tagListCmd, tagDeleteCmd)
}

// printJSON renders a value as indented JSON on stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// splitTags splits a comma-separated tag string, dropping blanks.
func splitTags(tagsStr string) []string {
	if tagsStr == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(tagsStr, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
