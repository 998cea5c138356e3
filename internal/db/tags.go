// ABOUTME: Database operations for tags and note-tag associations.
// ABOUTME: Provides tag creation, assignment, removal, counting and deletion.

package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/models"
)

var ErrTagNotFound = errors.New("tag not found")
var ErrEmptyTagName = errors.New("tag name must not be empty")

func GetOrCreateTag(ctx context.Context, q Querier, name string) (*models.Tag, error) {
	tag := models.NewTag(name)
	if tag.Name == "" {
		return nil, ErrEmptyTagName
	}

	// Try to get existing
	err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, tag.Name).Scan(&tag.ID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Create new
	result, err := q.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, tag.Name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	tag.ID = id
	return tag, nil
}

func GetTagByName(ctx context.Context, q Querier, name string) (*models.Tag, error) {
	tag := models.NewTag(name)
	err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, tag.Name).Scan(&tag.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// AddTagToNote links a note and a tag, reporting whether the link is new.
func AddTagToNote(ctx context.Context, q Querier, noteID uuid.UUID, tagID int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
		noteID.String(), tagID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// RemoveTagFromNote unlinks a note and a tag, reporting whether a link existed.
func RemoveTagFromNote(ctx context.Context, q Querier, noteID uuid.UUID, tagName string) (bool, error) {
	tag := models.NewTag(tagName)
	result, err := q.ExecContext(ctx,
		`DELETE FROM note_tags WHERE note_id = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)`,
		noteID.String(), tag.Name,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// GetNoteTags returns the tag names of a note in lexicographic order.
func GetNoteTags(ctx context.Context, q Querier, noteID uuid.UUID) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN note_tags nt ON t.id = nt.tag_id
		 WHERE nt.note_id = ?
		 ORDER BY t.name`,
		noteID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// attachTags fills Tags on every note with one query.
func attachTags(ctx context.Context, q Querier, notes []*models.Note) error {
	if len(notes) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Note, len(notes))
	ids := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		n.Tags = []string{}
		byID[n.ID] = n
		ids = append(ids, n.ID)
	}
	placeholders, args := inClause(ids)
	rows, err := q.QueryContext(ctx,
		`SELECT nt.note_id, t.name FROM note_tags nt
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE nt.note_id IN (`+placeholders+`)
		 ORDER BY t.name`,
		args...,
	)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var idStr, name string
		if err := rows.Scan(&idStr, &name); err != nil {
			return err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		if n, ok := byID[id]; ok {
			n.Tags = append(n.Tags, name)
		}
	}
	return rows.Err()
}

// ListAllTags returns every tag with the number of non-trashed notes using it.
func ListAllTags(ctx context.Context, q Querier) ([]*models.Tag, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT t.id, t.name, COUNT(n.id) as count
		 FROM tags t
		 LEFT JOIN note_tags nt ON t.id = nt.tag_id
		 LEFT JOIN notes n ON n.id = nt.note_id AND n.trashed_at IS NULL
		 GROUP BY t.id
		 ORDER BY t.name`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.NoteCount); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// NotesWithTag returns the ids of every note, trashed or not, carrying the tag.
func NotesWithTag(ctx context.Context, q Querier, tagID int64) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT note_id FROM note_tags WHERE tag_id = ? ORDER BY note_id`,
		tagID,
	)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// DeleteTag removes the tag; its associations go with it.
func DeleteTag(ctx context.Context, q Querier, tagID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTagNotFound
	}
	return nil
}
