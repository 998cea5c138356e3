// ABOUTME: Trash commands for reviewing and emptying trashed notes.
// ABOUTME: Shows how long each note has left before it is purged.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Manage the trash",
}

var trashListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List trashed notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := noteStore.ListTrashed(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list trash: %w", err)
		}

		if len(notes) == 0 {
			fmt.Println("Trash is empty.")
			return nil
		}

		now := time.Now()
		for _, note := range notes {
			fmt.Print(ui.FormatTrashItem(note, noteStore.RetentionDays(), now))
		}
		return nil
	},
}

var trashEmptyCmd = &cobra.Command{
	Use:   "empty",
	Short: "Permanently delete every trashed note",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if !force && !confirm(os.Stdin, os.Stdout, "Permanently delete everything in the trash?") {
			fmt.Println("Cancelled.")
			return nil
		}

		n, err := noteStore.EmptyTrash(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to empty trash: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Deleted %d note(s) from the trash", n)))
		return nil
	},
}

func init() {
	trashEmptyCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	trashCmd.AddCommand(trashListCmd)
	trashCmd.AddCommand(trashEmptyCmd)
	rootCmd.AddCommand(trashCmd)
}
