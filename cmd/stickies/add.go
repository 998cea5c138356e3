// ABOUTME: Add command for creating new sticky notes.
// ABOUTME: Content comes from a flag, a markdown file, or $EDITOR.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new note",
	Long:  `Create a new sticky note. Content is read as markdown from --content, --file, or your $EDITOR.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var title string
		if len(args) == 1 {
			title = strings.TrimSpace(args[0])
		}
		contentFlag, _ := cmd.Flags().GetString("content")
		fileFlag, _ := cmd.Flags().GetString("file")
		colorFlag, _ := cmd.Flags().GetString("color")
		tagsFlag, _ := cmd.Flags().GetString("tags")

		color := noteStore.DefaultColor()
		if colorFlag != "" {
			c, err := models.ParseColor(colorFlag)
			if err != nil {
				return err
			}
			color = c
		}

		var markdown string
		switch {
		case contentFlag != "":
			markdown = contentFlag
		case fileFlag != "":
			data, err := os.ReadFile(fileFlag) //nolint:gosec // User-specified file path is expected CLI behavior
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			markdown = string(data)
		default:
			edited, err := openEditor("")
			if err != nil {
				return fmt.Errorf("editor failed: %w", err)
			}
			markdown = edited
		}

		content := richtext.FromMarkdown(markdown)
		if title == "" && content.IsEmpty() {
			return fmt.Errorf("note needs a title or content")
		}

		note, err := noteStore.Create(cmd.Context(), title, content, color)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		for _, tag := range parseTags(tagsFlag) {
			if err := noteStore.AddTag(cmd.Context(), note.ID, tag); err != nil {
				return fmt.Errorf("failed to add tag %q: %w", tag, err)
			}
		}

		fmt.Println(ui.Success(fmt.Sprintf("Created note %s %s", shortID(note.ID), note.DisplayTitle())))
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("content", "c", "", "note content as markdown")
	addCmd.Flags().StringP("file", "f", "", "read content from a markdown file")
	addCmd.Flags().String("color", "", "note color ("+models.ColorNames()+")")
	addCmd.Flags().StringP("tags", "t", "", "comma-separated tags")
	rootCmd.AddCommand(addCmd)
}
