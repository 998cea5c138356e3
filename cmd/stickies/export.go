// ABOUTME: Export command for backing up notes.
// ABOUTME: JSON keeps the rich-text content exactly; markdown writes one file per note.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const exportVersion = "1.0"

type ExportNote struct {
	ID        string          `json:"id" yaml:"id"`
	Title     string          `json:"title" yaml:"title"`
	Color     string          `json:"color" yaml:"color"`
	Content   json.RawMessage `json:"content" yaml:"-"`
	Tags      []string        `json:"tags" yaml:"tags"`
	CreatedAt time.Time       `json:"created_at" yaml:"created"`
	UpdatedAt time.Time       `json:"updated_at" yaml:"updated"`
	TrashedAt *time.Time      `json:"trashed_at,omitempty" yaml:"trashed,omitempty"`
}

type ExportData struct {
	ExportedAt time.Time    `json:"exported_at"`
	Version    string       `json:"version"`
	Notes      []ExportNote `json:"notes"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes",
	Long:  `Export notes to JSON or markdown format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		notePrefix, _ := cmd.Flags().GetString("note")
		includeTrash, _ := cmd.Flags().GetBool("all")

		var notes []*models.Note
		if notePrefix != "" {
			note, err := noteStore.Resolve(cmd.Context(), notePrefix)
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}
			notes = append(notes, note)
		} else {
			all, err := noteStore.List(cmd.Context(), includeTrash)
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
			notes = all
		}

		switch format {
		case "json":
			return exportJSON(notes, outputPath)
		case "md":
			return exportMarkdown(notes, outputPath)
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
	},
}

func toExportNote(n *models.Note) ExportNote {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return ExportNote{
		ID:        n.ID.String(),
		Title:     n.Title,
		Color:     n.Color.String(),
		Content:   json.RawMessage(richtext.Marshal(n.Content)),
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		TrashedAt: n.TrashedAt,
	}
}

func exportJSON(notes []*models.Note, outputPath string) error {
	export := ExportData{
		ExportedAt: time.Now().UTC(),
		Version:    exportVersion,
		Notes:      []ExportNote{},
	}
	for _, n := range notes {
		export.Notes = append(export.Notes, toExportNote(n))
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}

	if outputPath == "" || outputPath == "-" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Exported %d notes to %s", len(notes), outputPath)))
	return nil
}

func exportMarkdown(notes []*models.Note, outputDir string) error {
	if outputDir == "" {
		outputDir = "export"
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return err
	}

	for _, n := range notes {
		frontmatter, err := yaml.Marshal(toExportNote(n))
		if err != nil {
			return err
		}

		var sb strings.Builder
		sb.WriteString("---\n")
		sb.Write(frontmatter)
		sb.WriteString("---\n\n")
		sb.WriteString(richtext.ToMarkdown(n.Content))
		sb.WriteString("\n")

		filename := sanitizeFilename(n.DisplayTitle()) + "-" + shortID(n.ID) + ".md"
		if err := os.WriteFile(filepath.Join(outputDir, filename), []byte(sb.String()), 0600); err != nil {
			return err
		}
	}

	fmt.Println(ui.Success(fmt.Sprintf("Exported %d notes to %s", len(notes), outputDir)))
	return nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	name = replacer.Replace(name)
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}
	return name
}

func init() {
	exportCmd.Flags().String("format", "json", "export format (json or md)")
	exportCmd.Flags().StringP("output", "o", "", "output file (json) or directory (md)")
	exportCmd.Flags().String("note", "", "export a single note by id prefix")
	exportCmd.Flags().BoolP("all", "a", false, "include notes in the trash")
	rootCmd.AddCommand(exportCmd)
}
