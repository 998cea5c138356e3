// ABOUTME: Trash lifecycle on the store: trash, restore, hard delete and purge.
// ABOUTME: Bulk operations keep the relative updated_at order of the notes they touch.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/db"
	"github.com/harper/stickies/internal/events"
	"github.com/harper/stickies/internal/models"
)

// stampsFor loads the stamps of ids, failing with ErrNoteNotFound if any id
// is missing. Duplicates are ignored.
func stampsFor(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) ([]db.NoteStamp, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	stamps, err := db.NoteStamps(ctx, tx, unique)
	if err != nil {
		return nil, err
	}
	if len(stamps) != len(unique) {
		found := make(map[uuid.UUID]bool, len(stamps))
		for _, st := range stamps {
			found[st.ID] = true
		}
		for _, id := range unique {
			if !found[id] {
				return nil, fmt.Errorf("%w: %s", db.ErrNoteNotFound, id)
			}
		}
	}
	return stamps, nil
}

// sequence hands out strictly increasing stamps that also move past each
// note's own previous stamp.
type sequence struct {
	now  time.Time
	last time.Time
}

func (q *sequence) next(prev time.Time) time.Time {
	if q.last.After(prev) {
		prev = q.last
	}
	q.last = models.NextStamp(prev, q.now)
	return q.last
}

// Trash moves notes to the trash. Trashing a trashed note refreshes its
// trash time.
func (s *Store) Trash(ctx context.Context, ids ...uuid.UUID) error {
	return s.write(ctx, "trash", func(tx *sql.Tx) ([]events.Event, error) {
		stamps, err := stampsFor(ctx, tx, ids)
		if err != nil {
			return nil, err
		}
		seq := &sequence{now: s.now()}
		var evs []events.Event
		for _, st := range stamps {
			at := seq.next(st.UpdatedAt)
			if err := db.SetTrashed(ctx, tx, st.ID, &at, at); err != nil {
				return nil, err
			}
			evs = append(evs, events.Event{Kind: events.Trashed, NoteID: st.ID, At: at})
		}
		return evs, nil
	})
}

// Restore brings notes back from the trash. Notes that are not trashed are
// left alone.
func (s *Store) Restore(ctx context.Context, ids ...uuid.UUID) error {
	return s.write(ctx, "restore", func(tx *sql.Tx) ([]events.Event, error) {
		stamps, err := stampsFor(ctx, tx, ids)
		if err != nil {
			return nil, err
		}
		seq := &sequence{now: s.now()}
		var evs []events.Event
		for _, st := range stamps {
			if !st.Trashed {
				continue
			}
			at := seq.next(st.UpdatedAt)
			if err := db.SetTrashed(ctx, tx, st.ID, nil, at); err != nil {
				return nil, err
			}
			evs = append(evs, events.Event{Kind: events.Restored, NoteID: st.ID, At: at})
		}
		return evs, nil
	})
}

// Delete removes notes permanently, trashed or not.
func (s *Store) Delete(ctx context.Context, ids ...uuid.UUID) error {
	return s.write(ctx, "delete", func(tx *sql.Tx) ([]events.Event, error) {
		stamps, err := stampsFor(ctx, tx, ids)
		if err != nil {
			return nil, err
		}
		return s.deleteAll(ctx, tx, idsOf(stamps))
	})
}

// EmptyTrash permanently removes every trashed note and returns how many.
func (s *Store) EmptyTrash(ctx context.Context) (int, error) {
	return s.purge(ctx, "empty trash", time.Time{})
}

// PurgeExpired permanently removes notes trashed more than retentionDays ago.
func (s *Store) PurgeExpired(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays < 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	return s.purge(ctx, "purge expired", cutoff)
}

func (s *Store) purge(ctx context.Context, op string, cutoff time.Time) (int, error) {
	count := 0
	err := s.write(ctx, op, func(tx *sql.Tx) ([]events.Event, error) {
		ids, err := db.TrashedBefore(ctx, tx, cutoff)
		if err != nil {
			return nil, err
		}
		count = len(ids)
		return s.deleteAll(ctx, tx, ids)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) deleteAll(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) ([]events.Event, error) {
	at := s.now().UTC()
	evs := make([]events.Event, 0, len(ids))
	for _, id := range ids {
		if err := db.DeleteNote(ctx, tx, id); err != nil {
			return nil, err
		}
		evs = append(evs, events.Event{Kind: events.Deleted, NoteID: id, At: at})
	}
	return evs, nil
}

func idsOf(stamps []db.NoteStamp) []uuid.UUID {
	ids := make([]uuid.UUID, len(stamps))
	for i, st := range stamps {
		ids[i] = st.ID
	}
	return ids
}
