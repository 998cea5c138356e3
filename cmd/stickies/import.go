// ABOUTME: Import command for restoring notes from backup.
// ABOUTME: Supports JSON exports and directories of markdown files with frontmatter.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/store"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import notes",
	Long:  `Import notes from a JSON export, a markdown file, or a directory of markdown files.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat path: %w", err)
		}

		if info.IsDir() {
			return importMarkdownDir(cmd.Context(), path)
		}

		if strings.HasSuffix(path, ".json") {
			return importJSON(cmd.Context(), path)
		}

		if err := importMarkdownFile(cmd.Context(), path); err != nil {
			return err
		}
		fmt.Println(ui.Success("Imported 1 note"))
		return nil
	},
}

func importJSON(ctx context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return err
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse export: %w", err)
	}

	count := 0
	for _, en := range export.Notes {
		note, err := fromExportNote(en)
		if err != nil {
			fmt.Printf("Warning: skipping %q: %v\n", en.Title, err)
			continue
		}

		if err := noteStore.Import(ctx, note); err != nil {
			if errors.Is(err, store.ErrNoteExists) {
				fmt.Printf("Warning: note %s already exists, skipping\n", shortID(note.ID))
				continue
			}
			return fmt.Errorf("failed to import %q: %w", en.Title, err)
		}
		count++
	}

	fmt.Println(ui.Success(fmt.Sprintf("Imported %d notes", count)))
	return nil
}

func fromExportNote(en ExportNote) (*models.Note, error) {
	id, err := uuid.Parse(en.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	content := importContent(en)
	color, err := models.ParseColor(en.Color)
	if err != nil {
		return nil, err
	}

	note := models.NewNote(en.Title, content, color)
	note.ID = id
	note.Tags = en.Tags
	if !en.CreatedAt.IsZero() {
		note.CreatedAt = en.CreatedAt.UTC()
	}
	if !en.UpdatedAt.IsZero() {
		note.UpdatedAt = en.UpdatedAt.UTC()
	}
	if en.TrashedAt != nil {
		t := en.TrashedAt.UTC()
		note.TrashedAt = &t
	}
	return note, nil
}

// importContent reads exported content. Older exports hold markdown as a JSON
// string; anything else that is not a document is kept as plain text.
func importContent(en ExportNote) richtext.Document {
	raw := strings.TrimSpace(string(en.Content))
	if raw == "" || raw == "null" {
		return richtext.Document{}
	}
	if strings.HasPrefix(raw, `"`) {
		var markdown string
		if err := json.Unmarshal([]byte(raw), &markdown); err == nil {
			return richtext.FromMarkdown(markdown)
		}
	}
	doc, err := richtext.Parse(raw)
	if err != nil {
		preview, cut := richtext.PreviewOf(raw, 1, 40)
		if cut {
			preview += "…"
		}
		fmt.Printf("Warning: %q has unreadable content, keeping it as plain text: %s\n", en.Title, preview)
		return richtext.Decode(raw)
	}
	return doc
}

func importMarkdownDir(ctx context.Context, dir string) error {
	count := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		if err := importMarkdownFile(ctx, path); err != nil {
			fmt.Printf("Warning: failed to import %s: %v\n", path, err)
			return nil
		}
		count++
		return nil
	})

	if err != nil {
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("Imported %d notes", count)))
	return nil
}

type markdownFrontmatter struct {
	ID      string     `yaml:"id"`
	Title   string     `yaml:"title"`
	Color   string     `yaml:"color"`
	Tags    []string   `yaml:"tags"`
	Created time.Time  `yaml:"created"`
	Updated time.Time  `yaml:"updated"`
	Trashed *time.Time `yaml:"trashed"`
}

func importMarkdownFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return err
	}

	body := strings.ReplaceAll(string(data), "\r\n", "\n")
	var fm markdownFrontmatter

	if strings.HasPrefix(body, "---\n") {
		parts := strings.SplitN(body, "---\n", 3)
		if len(parts) >= 3 {
			if err := yaml.Unmarshal([]byte(parts[1]), &fm); err == nil {
				body = parts[2]
			}
		}
	}

	if fm.Title == "" {
		fm.Title = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	content := richtext.FromMarkdown(strings.TrimSpace(body))
	color, err := models.ParseColor(fm.Color)
	if err != nil {
		return err
	}

	// Files from our own export carry enough to restore the note as it was.
	if id, err := uuid.Parse(fm.ID); err == nil && !fm.Created.IsZero() && !fm.Updated.IsZero() {
		note := models.NewNote(fm.Title, content, color)
		note.ID = id
		note.Tags = fm.Tags
		note.CreatedAt = fm.Created.UTC()
		note.UpdatedAt = fm.Updated.UTC()
		if fm.Trashed != nil {
			t := fm.Trashed.UTC()
			note.TrashedAt = &t
		}
		return noteStore.Import(ctx, note)
	}

	note, err := noteStore.Create(ctx, fm.Title, content, color)
	if err != nil {
		return err
	}
	for _, tag := range fm.Tags {
		if err := noteStore.AddTag(ctx, note.ID, tag); err != nil {
			fmt.Printf("Warning: failed to add tag %q: %v\n", tag, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
