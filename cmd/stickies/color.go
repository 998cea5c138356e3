// ABOUTME: Color command for changing a note's color.
// ABOUTME: Without a color argument it lists the palette and marks the current one.

package main

import (
	"fmt"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var colorCmd = &cobra.Command{
	Use:   "color <id-prefix> [color]",
	Short: "Show or set a note's color",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := noteStore.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(args) == 1 {
			fmt.Print(ui.FormatColorList(note.Color))
			return nil
		}

		c, err := models.ParseColor(args[1])
		if err != nil {
			return err
		}
		if _, err := noteStore.Update(cmd.Context(), note.ID, models.NoteUpdate{Color: &c}); err != nil {
			return fmt.Errorf("failed to set color: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Note %s is now %s %s", shortID(note.ID), ui.Swatch(c), c)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(colorCmd)
}
