// ABOUTME: Remove and restore commands for notes.
// ABOUTME: rm moves notes to the trash; --purge deletes them for good after confirmation.

package main

import (
	"fmt"
	"os"

	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Move notes to the trash",
	Long:  `Move one or more notes to the trash. Use --purge to delete them permanently.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		purge, _ := cmd.Flags().GetBool("purge")
		force, _ := cmd.Flags().GetBool("force")

		notes, err := resolveNotes(cmd.Context(), args)
		if err != nil {
			return err
		}

		if !purge {
			if err := noteStore.Trash(cmd.Context(), idsOf(notes)...); err != nil {
				return fmt.Errorf("failed to trash notes: %w", err)
			}
			fmt.Println(ui.Success(fmt.Sprintf("Moved %d note(s) to the trash", len(notes))))
			return nil
		}

		if !force {
			question := fmt.Sprintf("Permanently delete %d note(s)?", len(notes))
			if len(notes) == 1 {
				question = fmt.Sprintf("Permanently delete note %q?", notes[0].DisplayTitle())
			}
			if !confirm(os.Stdin, os.Stdout, question) {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := noteStore.Delete(cmd.Context(), idsOf(notes)...); err != nil {
			return fmt.Errorf("failed to delete notes: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Deleted %d note(s)", len(notes))))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>...",
	Short: "Restore notes from the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := resolveNotes(cmd.Context(), args)
		if err != nil {
			return err
		}
		if err := noteStore.Restore(cmd.Context(), idsOf(notes)...); err != nil {
			return fmt.Errorf("failed to restore notes: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Restored %d note(s)", len(notes))))
		return nil
	},
}

func init() {
	rmCmd.Flags().Bool("purge", false, "delete permanently instead of trashing")
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(restoreCmd)
}
