// ABOUTME: FTS5 full-text search over note titles and plain-text bodies.
// ABOUTME: Keeps the index row of each note in step with the note itself.

package db

import (
	"context"
	"strings"

	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
)

// MatchQuery turns free text into an FTS5 phrase-prefix query. Embedded
// double quotes are doubled so user input cannot inject FTS syntax.
func MatchQuery(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"*`
}

func indexNote(ctx context.Context, q Querier, note *models.Note) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM notes_fts WHERE note_id = ?`, note.ID.String()); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO notes_fts (note_id, title, body) VALUES (?, ?, ?)`,
		note.ID.String(), note.Title, richtext.PlainText(note.Content),
	)
	return err
}

// SearchNotes returns non-trashed notes matching query, best match first.
func SearchNotes(ctx context.Context, q Querier, query string, limit int) ([]*models.Note, error) {
	sqlQuery := `SELECT ` + noteColumns + `
		 FROM notes_fts
		 JOIN notes n ON n.id = notes_fts.note_id
		 WHERE notes_fts MATCH ? AND n.trashed_at IS NULL
		 ORDER BY rank, n.updated_at DESC`
	args := []any{MatchQuery(query)}
	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, q, notes); err != nil {
		return nil, err
	}
	return notes, nil
}
