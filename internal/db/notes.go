// ABOUTME: Database operations for notes.
// ABOUTME: Provides CRUD, trash state changes, prefix lookup and search index upkeep.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
)

var ErrPrefixTooShort = errors.New("prefix must be at least 6 characters")
var ErrAmbiguousPrefix = errors.New("prefix matches multiple notes")
var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `n.id, n.title, n.content, n.color, n.created_at, n.updated_at, n.trashed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	var idStr, content, color, created, updated string
	var trashed sql.NullString
	if err := row.Scan(&idStr, &note.Title, &content, &color, &created, &updated, &trashed); err != nil {
		return nil, err
	}
	var err error
	note.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid note ID in database: %w", err)
	}
	note.Content = richtext.Decode(content)
	note.Color = models.Color(color)
	if !note.Color.Valid() {
		note.Color = models.DefaultColor
	}
	if note.CreatedAt, err = ParseTime(created); err != nil {
		return nil, err
	}
	if note.UpdatedAt, err = ParseTime(updated); err != nil {
		return nil, err
	}
	if trashed.Valid {
		t, err := ParseTime(trashed.String)
		if err != nil {
			return nil, err
		}
		note.TrashedAt = &t
	}
	return note, nil
}

func scanNotes(rows *sql.Rows) ([]*models.Note, error) {
	defer func() { _ = rows.Close() }()
	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

func CreateNote(ctx context.Context, q Querier, note *models.Note) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, color, created_at, updated_at, trashed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID.String(), note.Title, richtext.Marshal(note.Content), string(note.Color),
		FormatTime(note.CreatedAt), FormatTime(note.UpdatedAt), nullableTime(note.TrashedAt),
	)
	if err != nil {
		return err
	}
	return indexNote(ctx, q, note)
}

func GetNoteByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Note, error) {
	note, err := scanNote(q.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes n WHERE n.id = ?`,
		id.String(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, q, []*models.Note{note}); err != nil {
		return nil, err
	}
	return note, nil
}

func GetNoteByPrefix(ctx context.Context, q Querier, prefix string) (*models.Note, error) {
	if len(prefix) < 6 {
		return nil, ErrPrefixTooShort
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes n WHERE n.id LIKE ?`,
		strings.ToLower(prefix)+"%",
	)
	if err != nil {
		return nil, err
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}

	if len(notes) == 0 {
		return nil, ErrNoteNotFound
	}
	if len(notes) > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(notes))
	}
	if err := attachTags(ctx, q, notes); err != nil {
		return nil, err
	}
	return notes[0], nil
}

// ListOptions selects which notes ListNotes returns.
type ListOptions struct {
	IncludeTrashed bool
	TrashedOnly    bool
	Tag            string
	Limit          int
}

// ListNotes returns notes newest first. Trash listings are ordered by
// trash time instead.
func ListNotes(ctx context.Context, q Querier, opts ListOptions) ([]*models.Note, error) {
	var where []string
	var args []any
	from := `notes n`
	order := `n.updated_at DESC, n.id`

	if opts.Tag != "" {
		from += ` JOIN note_tags nt ON n.id = nt.note_id JOIN tags t ON nt.tag_id = t.id`
		where = append(where, `t.name = ?`)
		args = append(args, models.NormalizeTagName(opts.Tag))
	}
	switch {
	case opts.TrashedOnly:
		where = append(where, `n.trashed_at IS NOT NULL`)
		order = `n.trashed_at DESC, n.id`
	case !opts.IncludeTrashed:
		where = append(where, `n.trashed_at IS NULL`)
	}

	query := `SELECT ` + noteColumns + ` FROM ` + from
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ` + order
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
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

// UpdateNote writes title, content, color and updated_at and refreshes the
// search index.
func UpdateNote(ctx context.Context, q Querier, note *models.Note) error {
	result, err := q.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, color = ?, updated_at = ? WHERE id = ?`,
		note.Title, richtext.Marshal(note.Content), string(note.Color), FormatTime(note.UpdatedAt), note.ID.String(),
	)
	if err != nil {
		return err
	}
	if err := expectOne(result); err != nil {
		return err
	}
	return indexNote(ctx, q, note)
}

// SetTrashed sets or clears trashed_at together with updated_at.
func SetTrashed(ctx context.Context, q Querier, id uuid.UUID, trashedAt *time.Time, updatedAt time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE notes SET trashed_at = ?, updated_at = ? WHERE id = ?`,
		nullableTime(trashedAt), FormatTime(updatedAt), id.String(),
	)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// TouchNote sets updated_at only.
func TouchNote(ctx context.Context, q Querier, id uuid.UUID, updatedAt time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE notes SET updated_at = ? WHERE id = ?`,
		FormatTime(updatedAt), id.String(),
	)
	if err != nil {
		return err
	}
	return expectOne(result)
}

func DeleteNote(ctx context.Context, q Querier, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return expectOne(result)
}

// NoteStamp is the ordering key of a note.
type NoteStamp struct {
	ID        uuid.UUID
	UpdatedAt time.Time
	Trashed   bool
}

// NoteStamps returns the stamps of the given notes that exist, oldest
// update first.
func NoteStamps(ctx context.Context, q Querier, ids []uuid.UUID) ([]NoteStamp, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	rows, err := q.QueryContext(ctx,
		`SELECT id, updated_at, trashed_at IS NOT NULL FROM notes
		 WHERE id IN (`+placeholders+`)
		 ORDER BY updated_at ASC, id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stamps []NoteStamp
	for rows.Next() {
		var s NoteStamp
		var idStr, updated string
		if err := rows.Scan(&idStr, &updated, &s.Trashed); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("invalid note ID in database: %w", err)
		}
		if s.UpdatedAt, err = ParseTime(updated); err != nil {
			return nil, err
		}
		stamps = append(stamps, s)
	}
	return stamps, rows.Err()
}

// TrashedBefore returns the ids of notes trashed strictly before cutoff.
// A zero cutoff returns every trashed note.
func TrashedBefore(ctx context.Context, q Querier, cutoff time.Time) ([]uuid.UUID, error) {
	query := `SELECT id FROM notes WHERE trashed_at IS NOT NULL`
	var args []any
	if !cutoff.IsZero() {
		query += ` AND trashed_at < ?`
		args = append(args, FormatTime(cutoff))
	}
	rows, err := q.QueryContext(ctx, query+` ORDER BY trashed_at, id`, args...)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer func() { _ = rows.Close() }()
	var ids []uuid.UUID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid note ID in database: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func expectOne(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func inClause(ids []uuid.UUID) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
