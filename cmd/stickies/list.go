// ABOUTME: List command for displaying notes.
// ABOUTME: Supports filtering by tag, full-text search and showing trashed notes.

package main

import (
	"fmt"
	"time"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Long:    `List notes, most recently edited first. Filter by tag or search query, or include trashed notes with --all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagFlag, _ := cmd.Flags().GetString("tag")
		searchFlag, _ := cmd.Flags().GetString("search")
		allFlag, _ := cmd.Flags().GetBool("all")
		trashFlag, _ := cmd.Flags().GetBool("trash")
		limitFlag, _ := cmd.Flags().GetInt("limit")

		var notes []*models.Note
		var err error
		switch {
		case trashFlag:
			notes, err = noteStore.ListTrashed(cmd.Context())
		case searchFlag != "":
			notes, err = noteStore.Search(cmd.Context(), searchFlag)
		case tagFlag != "":
			notes, err = noteStore.ListByTag(cmd.Context(), tagFlag)
		default:
			notes, err = noteStore.List(cmd.Context(), allFlag)
		}
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}

		if len(notes) == 0 {
			fmt.Println("No notes found.")
			return nil
		}

		if limitFlag > 0 && len(notes) > limitFlag {
			notes = notes[:limitFlag]
		}

		preview := ui.PreviewOptions{Lines: cfg.Preview.MaxLines, Chars: cfg.Preview.MaxChars}
		now := time.Now()
		for _, note := range notes {
			if note.IsTrashed() {
				fmt.Print(ui.FormatTrashItem(note, noteStore.RetentionDays(), now))
				continue
			}
			fmt.Print(ui.FormatNoteListItem(note, preview, now))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("tag", "", "filter by tag")
	listCmd.Flags().StringP("search", "s", "", "full-text search")
	listCmd.Flags().BoolP("all", "a", false, "include notes in the trash")
	listCmd.Flags().Bool("trash", false, "only notes in the trash")
	listCmd.Flags().IntP("limit", "n", 0, "maximum number of notes (0 for all)")
	rootCmd.AddCommand(listCmd)
}
