// ABOUTME: Tag command for managing note tags.
// ABOUTME: Provides add, rm, list and delete subcommands.

package main

import (
	"fmt"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  `Add, remove, list or delete tags.`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <id-prefix> <tag>",
	Short: "Add a tag to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := noteStore.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tagName := models.NormalizeTagName(args[1])

		if err := noteStore.AddTag(cmd.Context(), note.ID, tagName); err != nil {
			return fmt.Errorf("failed to add tag: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Added tag %q to note %s", tagName, shortID(note.ID))))
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <id-prefix> <tag>",
	Short: "Remove a tag from a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := noteStore.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tagName := models.NormalizeTagName(args[1])

		if err := noteStore.RemoveTag(cmd.Context(), note.ID, tagName); err != nil {
			return fmt.Errorf("failed to remove tag: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Removed tag %q from note %s", tagName, shortID(note.ID))))
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := noteStore.AllTags(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		if len(tags) == 0 {
			fmt.Println("No tags found.")
			return nil
		}

		fmt.Print(ui.FormatTagList(tags))
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Delete a tag from every note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tagName := models.NormalizeTagName(args[0])
		if err := noteStore.DeleteTag(cmd.Context(), tagName); err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Deleted tag %q", tagName)))
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}
