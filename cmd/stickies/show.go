// ABOUTME: Show command for displaying a single note.
// ABOUTME: Renders rich text through glamour, or raw markdown with --raw.

package main

import (
	"fmt"
	"time"

	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := noteStore.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		rawFlag, _ := cmd.Flags().GetBool("raw")
		if rawFlag {
			fmt.Println(richtext.ToMarkdown(note.Content))
			return nil
		}

		if note.IsTrashed() {
			fmt.Println(ui.Expiry(note, noteStore.RetentionDays(), time.Now()))
		}
		fmt.Print(ui.FormatNoteHeader(note))

		rendered, err := ui.FormatNoteContent(note.Content)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "print markdown without rendering")
	rootCmd.AddCommand(showCmd)
}
