// ABOUTME: Edit command for changing an existing note.
// ABOUTME: Loads the note into an editor session and saves only what changed.

package main

import (
	"fmt"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/session"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note",
	Long:  `Edit a note's content as markdown in $EDITOR, or change its title, color or content from flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		note, err := noteStore.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		buf := richtext.NewBuffer()
		ed := session.NewEditor(noteStore, buf,
			session.WithLogger(logger),
			session.WithDelay(cfg.AutosaveDelay()),
		)
		if err := ed.Open(ctx, note.ID); err != nil {
			return err
		}

		metadataOnly := false
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			if err := ed.SetTitle(ctx, title); err != nil {
				return fmt.Errorf("failed to set title: %w", err)
			}
			metadataOnly = true
		}
		if cmd.Flags().Changed("color") {
			name, _ := cmd.Flags().GetString("color")
			c, err := models.ParseColor(name)
			if err != nil {
				return err
			}
			if err := ed.SetColor(ctx, c); err != nil {
				return fmt.Errorf("failed to set color: %w", err)
			}
			metadataOnly = true
		}

		var markdown string
		haveContent := false
		switch {
		case cmd.Flags().Changed("content"):
			markdown, _ = cmd.Flags().GetString("content")
			haveContent = true
		case !metadataOnly:
			edited, err := openEditor(richtext.ToMarkdown(note.Content))
			if err != nil {
				_ = ed.Close(ctx)
				return fmt.Errorf("editor failed: %w", err)
			}
			markdown = edited
			haveContent = true
		}

		if haveContent {
			richtext.Load(buf, richtext.Deserialize(richtext.FromMarkdown(markdown)))
			ed.Changed()
		}

		if err := ed.Close(ctx); err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}

		updated, err := noteStore.Get(ctx, note.ID)
		if err != nil {
			return err
		}
		if updated.UpdatedAt.Equal(note.UpdatedAt) {
			fmt.Println("No changes made.")
			return nil
		}

		fmt.Println(ui.Success(fmt.Sprintf("Updated note %s %s", shortID(updated.ID), updated.DisplayTitle())))
		return nil
	},
}

func init() {
	editCmd.Flags().String("title", "", "set a new title")
	editCmd.Flags().String("color", "", "set a new color ("+models.ColorNames()+")")
	editCmd.Flags().StringP("content", "c", "", "replace content with this markdown")
	rootCmd.AddCommand(editCmd)
}
