// ABOUTME: Helpers shared by CLI commands.
// ABOUTME: Note resolution, confirmation prompts and $EDITOR round-trips.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/ui"
)

func shortID(id uuid.UUID) string {
	return id.String()[:6]
}

// resolveNotes maps id prefixes to notes, failing on the first bad one.
func resolveNotes(ctx context.Context, refs []string) ([]*models.Note, error) {
	notes := make([]*models.Note, 0, len(refs))
	for _, ref := range refs {
		note, err := noteStore.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func idsOf(notes []*models.Note) []uuid.UUID {
	ids := make([]uuid.UUID, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, ui.ConfirmPrompt(question))
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func parseTags(flag string) []string {
	var tags []string
	for _, tag := range strings.Split(flag, ",") {
		if tag = models.NormalizeTagName(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func openEditor(initial string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	tmpFile, err := os.CreateTemp("", "stickies-*.md")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpFile.Name()) // Best-effort cleanup
	}()

	if initial != "" {
		if _, err := tmpFile.WriteString(initial); err != nil {
			_ = tmpFile.Close()
			return "", fmt.Errorf("failed to write initial content: %w", err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(editor, tmpFile.Name()) //nolint:gosec // Launching $EDITOR is expected CLI behavior
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", err
	}

	return string(data), nil
}
