// ABOUTME: Note CRUD, listing and search on the store.
// ABOUTME: Every write runs in one transaction together with its index update.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/db"
	"github.com/harper/stickies/internal/events"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"go.uber.org/zap"
)

// Create stores a new note. An empty color means the configured default.
func (s *Store) Create(ctx context.Context, title string, content richtext.Document, color models.Color) (*models.Note, error) {
	if color == "" {
		color = s.defaultColor
	}
	if !color.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownColor, color)
	}
	note := models.NewNote(title, content, color)
	now := s.now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	note.Tags = []string{}

	err := s.write(ctx, "create", func(tx *sql.Tx) ([]events.Event, error) {
		if err := db.CreateNote(ctx, tx, note); err != nil {
			return nil, err
		}
		return []events.Event{s.event(events.Created, note)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created note", zap.String("id", note.ID.String()))
	return note, nil
}

// Import stores a note exactly as given, keeping its id, timestamps, trash
// state and tags.
func (s *Store) Import(ctx context.Context, note *models.Note) error {
	if !note.Color.Valid() {
		note.Color = s.defaultColor
	}
	note.Content = note.Content.Normalize()
	return s.write(ctx, "import", func(tx *sql.Tx) ([]events.Event, error) {
		if _, err := db.GetNoteByID(ctx, tx, note.ID); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoteExists, note.ID)
		} else if !errors.Is(err, db.ErrNoteNotFound) {
			return nil, err
		}
		if err := db.CreateNote(ctx, tx, note); err != nil {
			return nil, err
		}
		for _, name := range note.Tags {
			tag, err := db.GetOrCreateTag(ctx, tx, name)
			if errors.Is(err, db.ErrEmptyTagName) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if _, err := db.AddTagToNote(ctx, tx, note.ID, tag.ID); err != nil {
				return nil, err
			}
		}
		return []events.Event{s.event(events.Created, note)}, nil
	})
}

// Get returns the note with its tags, or ErrNoteNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note *models.Note
	err := s.read("get", func(q db.Querier) error {
		var err error
		note, err = db.GetNoteByID(ctx, q, id)
		return err
	})
	return note, err
}

// GetByPrefix resolves an abbreviated id of at least six characters.
func (s *Store) GetByPrefix(ctx context.Context, prefix string) (*models.Note, error) {
	var note *models.Note
	err := s.read("get by prefix", func(q db.Querier) error {
		var err error
		note, err = db.GetNoteByPrefix(ctx, q, prefix)
		return err
	})
	return note, err
}

// Resolve accepts a full id or an id prefix.
func (s *Store) Resolve(ctx context.Context, ref string) (*models.Note, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.Get(ctx, id)
	}
	return s.GetByPrefix(ctx, ref)
}

func (s *Store) list(ctx context.Context, op string, opts db.ListOptions) ([]*models.Note, error) {
	var notes []*models.Note
	err := s.read(op, func(q db.Querier) error {
		var err error
		notes, err = db.ListNotes(ctx, q, opts)
		return err
	})
	return notes, err
}

// List returns notes by most recent update.
func (s *Store) List(ctx context.Context, includeTrashed bool) ([]*models.Note, error) {
	return s.list(ctx, "list", db.ListOptions{IncludeTrashed: includeTrashed})
}

// ListByTag returns the non-trashed notes carrying the tag.
func (s *Store) ListByTag(ctx context.Context, name string) ([]*models.Note, error) {
	return s.list(ctx, "list by tag", db.ListOptions{Tag: name})
}

// ListTrashed returns trashed notes, most recently trashed first.
func (s *Store) ListTrashed(ctx context.Context) ([]*models.Note, error) {
	return s.list(ctx, "list trash", db.ListOptions{TrashedOnly: true})
}

// Update applies the set fields of upd and bumps updated_at. An empty update
// returns the note untouched.
func (s *Store) Update(ctx context.Context, id uuid.UUID, upd models.NoteUpdate) (*models.Note, error) {
	if upd.IsEmpty() {
		return s.Get(ctx, id)
	}
	if upd.Color != nil && !upd.Color.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownColor, *upd.Color)
	}
	var note *models.Note
	err := s.write(ctx, "update", func(tx *sql.Tx) ([]events.Event, error) {
		var err error
		note, err = db.GetNoteByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		upd.Apply(note)
		note.UpdatedAt = models.NextStamp(note.UpdatedAt, s.now())
		if err := db.UpdateNote(ctx, tx, note); err != nil {
			return nil, err
		}
		return []events.Event{s.event(events.Changed, note)}, nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Search matches the query as a phrase prefix over titles and bodies of
// non-trashed notes. A blank query lists every non-trashed note.
func (s *Store) Search(ctx context.Context, query string) ([]*models.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, false)
	}
	var notes []*models.Note
	err := s.read("search", func(q db.Querier) error {
		var err error
		notes, err = db.SearchNotes(ctx, q, query, 0)
		return err
	})
	return notes, err
}
