// ABOUTME: Terminal UI formatting for stickies output.
// ABOUTME: Uses glamour for rich text, fatih/color for styling and go-humanize for times.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

var swatches = map[models.Color]*color.Color{
	models.Yellow: color.New(color.FgYellow),
	models.Blue:   color.New(color.FgBlue),
	models.Green:  color.New(color.FgGreen),
	models.Pink:   color.New(color.FgHiMagenta),
	models.Orange: color.New(color.FgHiYellow),
	models.Purple: color.New(color.FgMagenta),
	models.Red:    color.New(color.FgRed),
	models.Teal:   color.New(color.FgCyan),
}

// PreviewOptions bounds the content shown under each list item.
type PreviewOptions struct {
	Lines int
	Chars int
}

func DefaultPreview() PreviewOptions {
	return PreviewOptions{Lines: richtext.DefaultPreviewLines, Chars: richtext.DefaultPreviewChars}
}

// Swatch is a colored dot for the note color.
func Swatch(c models.Color) string {
	if s, ok := swatches[c]; ok {
		return s.Sprint("●")
	}
	return "●"
}

func shortID(note *models.Note) string {
	return note.ID.String()[:6]
}

func relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func FormatNoteListItem(note *models.Note, preview PreviewOptions, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "  %s %s  %s\n", faint(shortID(note)), Swatch(note.Color), bold(note.DisplayTitle()))

	if text, cut := richtext.Preview(note.Content, preview.Lines, preview.Chars); text != "" {
		if cut {
			text += "…"
		}
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(&sb, "           %s\n", faint(line))
		}
	}

	if len(note.Tags) > 0 {
		fmt.Fprintf(&sb, "           %s %s\n", faint("Tags:"), cyan(strings.Join(note.Tags, ", ")))
	}

	fmt.Fprintf(&sb, "           %s %s\n", faint("Updated:"), faint(relative(note.UpdatedAt, now)))

	return sb.String()
}

// Expiry describes when a trashed note will be purged.
func Expiry(note *models.Note, retentionDays int, now time.Time) string {
	at, ok := note.ExpiresAt(retentionDays)
	if !ok {
		return "kept until the trash is emptied"
	}
	left := at.Sub(now)
	if left <= 0 {
		return "expires at next start"
	}
	days := int(left.Hours() / 24)
	switch days {
	case 0:
		return "expires today"
	case 1:
		return "expires in 1 day"
	default:
		return fmt.Sprintf("expires in %d days", days)
	}
}

func FormatTrashItem(note *models.Note, retentionDays int, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "  %s %s  %s\n", faint(shortID(note)), Swatch(note.Color), bold(note.DisplayTitle()))
	fmt.Fprintf(&sb, "           %s %s, %s\n",
		faint("Trashed:"),
		faint(relative(*note.TrashedAt, now)),
		red(Expiry(note, retentionDays, now)))

	return sb.String()
}

// FormatNoteContent renders a document through markdown. Every line break
// is kept as a hard break.
func FormatNoteContent(doc richtext.Document) (string, error) {
	md := strings.ReplaceAll(richtext.ToMarkdown(doc), "\n", "  \n")

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer fails
		return richtext.PlainText(doc), nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(md)
	if err != nil {
		// Fallback to plain text if rendering fails
		return richtext.PlainText(doc), nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func FormatNoteHeader(note *models.Note) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", Swatch(note.Color), bold(note.DisplayTitle()))
	fmt.Fprintf(&sb, "%s %s\n", faint("ID:"), faint(note.ID.String()))
	fmt.Fprintf(&sb, "%s %s\n", faint("Color:"), faint(note.Color.String()))
	fmt.Fprintf(&sb, "%s %s\n", faint("Created:"), faint(note.CreatedAt.Local().Format("2006-01-02 15:04")))
	fmt.Fprintf(&sb, "%s %s\n", faint("Updated:"), faint(note.UpdatedAt.Local().Format("2006-01-02 15:04")))

	if note.TrashedAt != nil {
		fmt.Fprintf(&sb, "%s %s\n", red("Trashed:"), faint(note.TrashedAt.Local().Format("2006-01-02 15:04")))
	}

	if len(note.Tags) > 0 {
		fmt.Fprintf(&sb, "%s %s\n", faint("Tags:"), cyan(strings.Join(note.Tags, ", ")))
	}

	sb.WriteString(Separator())
	return sb.String()
}

func FormatTagList(tags []*models.Tag) string {
	var sb strings.Builder

	for _, t := range tags {
		fmt.Fprintf(&sb, "  %s %s\n", cyan(t.Name), faint(fmt.Sprintf("(%d)", t.NoteCount)))
	}

	return sb.String()
}

func FormatColorList(current models.Color) string {
	var sb strings.Builder

	for _, c := range models.Colors() {
		marker := " "
		if c == current {
			marker = "*"
		}
		fmt.Fprintf(&sb, " %s %s %s %s\n", marker, Swatch(c), c, faint(c.Hex()))
	}

	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func ConfirmPrompt(msg string) string {
	return faint(msg + " (y/n) ")
}
