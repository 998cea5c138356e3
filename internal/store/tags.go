// ABOUTME: Tag operations on the store.
// ABOUTME: Changing a note's tags bumps its updated_at; deleting a tag does not.

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/db"
	"github.com/harper/stickies/internal/events"
	"github.com/harper/stickies/internal/models"
)

// EnsureTag returns the id of the named tag, creating it if needed.
func (s *Store) EnsureTag(ctx context.Context, name string) (int64, error) {
	tag, err := s.CreateOrGetTag(ctx, name)
	if err != nil {
		return 0, err
	}
	return tag.ID, nil
}

// CreateOrGetTag is idempotent: a duplicate name returns the existing tag.
func (s *Store) CreateOrGetTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag *models.Tag
	err := s.write(ctx, "ensure tag", func(tx *sql.Tx) ([]events.Event, error) {
		var err error
		tag, err = db.GetOrCreateTag(ctx, tx, name)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// AddTag tags a note. Adding a tag the note already has changes nothing.
func (s *Store) AddTag(ctx context.Context, id uuid.UUID, name string) error {
	return s.write(ctx, "add tag", func(tx *sql.Tx) ([]events.Event, error) {
		note, err := db.GetNoteByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		tag, err := db.GetOrCreateTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		added, err := db.AddTagToNote(ctx, tx, id, tag.ID)
		if err != nil || !added {
			return nil, err
		}
		return s.touch(ctx, tx, note)
	})
}

// RemoveTag untags a note. Removing a tag the note does not have changes nothing.
func (s *Store) RemoveTag(ctx context.Context, id uuid.UUID, name string) error {
	return s.write(ctx, "remove tag", func(tx *sql.Tx) ([]events.Event, error) {
		note, err := db.GetNoteByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		removed, err := db.RemoveTagFromNote(ctx, tx, id, name)
		if err != nil || !removed {
			return nil, err
		}
		return s.touch(ctx, tx, note)
	})
}

func (s *Store) touch(ctx context.Context, tx *sql.Tx, note *models.Note) ([]events.Event, error) {
	note.UpdatedAt = models.NextStamp(note.UpdatedAt, s.now())
	if err := db.TouchNote(ctx, tx, note.ID, note.UpdatedAt); err != nil {
		return nil, err
	}
	return []events.Event{s.event(events.Changed, note)}, nil
}

// TagsForNote returns the note's tag names in lexicographic order.
func (s *Store) TagsForNote(ctx context.Context, id uuid.UUID) ([]string, error) {
	var tags []string
	err := s.read("tags for note", func(q db.Querier) error {
		note, err := db.GetNoteByID(ctx, q, id)
		if err != nil {
			return err
		}
		tags = note.Tags
		return nil
	})
	return tags, err
}

// AllTags lists every tag with its count of non-trashed notes.
func (s *Store) AllTags(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := s.read("all tags", func(q db.Querier) error {
		var err error
		tags, err = db.ListAllTags(ctx, q)
		return err
	})
	return tags, err
}

// DeleteTag removes a tag and all its associations. The notes themselves
// keep their timestamps; observers still get a changed event for each.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	return s.write(ctx, "delete tag", func(tx *sql.Tx) ([]events.Event, error) {
		tag, err := db.GetTagByName(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		ids, err := db.NotesWithTag(ctx, tx, tag.ID)
		if err != nil {
			return nil, err
		}
		if err := db.DeleteTag(ctx, tx, tag.ID); err != nil {
			return nil, err
		}
		at := s.now().UTC()
		evs := make([]events.Event, 0, len(ids))
		for _, id := range ids {
			evs = append(evs, events.Event{Kind: events.Changed, NoteID: id, At: at})
		}
		return evs, nil
	})
}
