// ABOUTME: Tests for the note store: CRUD, trash lifecycle, purge, search and tags.
// ABOUTME: Uses a controllable clock and a fresh database per test.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/events"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "notes.db"), opts...)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func mustCreate(t *testing.T, s *Store, title, body string) *models.Note {
	t.Helper()
	note, err := s.Create(context.Background(), title, richtext.FromLines(body), "")
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}
	return note
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)

	note, err := s.Create(ctx, "Title", richtext.FromText("body"), models.Blue)
	if err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	if !note.CreatedAt.Equal(clock.Now()) || !note.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("expected timestamps to be now, got %v / %v", note.CreatedAt, note.UpdatedAt)
	}

	got, err := s.Get(ctx, note.ID)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got.Title != "Title" || got.Color != models.Blue || got.PlainText() != "body" {
		t.Errorf("unexpected note %+v", got)
	}
}

func TestCreateUsesDefaultColor(t *testing.T) {
	s, _ := openTestStore(t, WithDefaultColor(models.Green))

	note := mustCreate(t, s, "x", "")
	if note.Color != models.Green {
		t.Errorf("expected configured default color, got %q", note.Color)
	}

	if _, err := s.Create(context.Background(), "x", richtext.Document{}, "beige"); !errors.Is(err, models.ErrUnknownColor) {
		t.Errorf("expected ErrUnknownColor, got %v", err)
	}
}

func TestGetMissingNote(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
	if errors.Is(err, ErrStorage) {
		t.Error("not-found must not be a storage error")
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	note := mustCreate(t, s, "x", "")

	byFull, err := s.Resolve(ctx, note.ID.String())
	if err != nil || byFull.ID != note.ID {
		t.Fatalf("expected full id to resolve: %v", err)
	}
	byPrefix, err := s.Resolve(ctx, note.ID.String()[:6])
	if err != nil || byPrefix.ID != note.ID {
		t.Fatalf("expected prefix to resolve: %v", err)
	}
	if _, err := s.Resolve(ctx, "abc"); !errors.Is(err, ErrPrefixTooShort) {
		t.Errorf("expected ErrPrefixTooShort, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)
	note := mustCreate(t, s, "old", "body")

	clock.Advance(time.Minute)
	title := "new"
	updated, err := s.Update(ctx, note.ID, models.NoteUpdate{Title: &title})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.Title != "new" || updated.PlainText() != "body" {
		t.Errorf("unexpected update result %q %q", updated.Title, updated.PlainText())
	}
	if !updated.UpdatedAt.After(note.UpdatedAt) {
		t.Error("expected updated_at to advance")
	}

	got, _ := s.Get(ctx, note.ID)
	if got.Title != "new" {
		t.Errorf("expected persisted title, got %q", got.Title)
	}
}

func TestEmptyUpdateIsNoOp(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)
	note := mustCreate(t, s, "t", "")

	var seen int
	s.Events().Subscribe(func(events.Event) { seen++ })
	clock.Advance(time.Hour)

	got, err := s.Update(ctx, note.ID, models.NoteUpdate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.UpdatedAt.Equal(note.UpdatedAt) {
		t.Error("expected updated_at to stay put")
	}
	if seen != 0 {
		t.Errorf("expected no events, got %d", seen)
	}

	if _, err := s.Update(ctx, uuid.New(), models.NoteUpdate{}); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound for missing note, got %v", err)
	}
}

func TestUpdateIsMonotonicWhenClockStalls(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	note := mustCreate(t, s, "t", "")

	prev := note.UpdatedAt
	for i := 0; i < 3; i++ {
		title := "t"
		got, err := s.Update(ctx, note.ID, models.NoteUpdate{Title: &title})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if !got.UpdatedAt.After(prev) {
			t.Fatalf("expected strictly increasing updated_at, got %v after %v", got.UpdatedAt, prev)
		}
		prev = got.UpdatedAt
	}
}

func TestTrashLifecycle(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)
	note := mustCreate(t, s, "t", "")
	start := note.UpdatedAt

	clock.Advance(time.Minute)
	if err := s.Trash(ctx, note.ID); err != nil {
		t.Fatalf("failed to trash: %v", err)
	}
	trashed, _ := s.Get(ctx, note.ID)
	if trashed.TrashedAt == nil || !trashed.UpdatedAt.After(start) {
		t.Fatalf("expected note trashed with bumped updated_at, got %+v", trashed)
	}
	if !trashed.TrashedAt.Equal(trashed.UpdatedAt) {
		t.Error("expected trashed_at to equal updated_at")
	}

	live, _ := s.List(ctx, false)
	if len(live) != 0 {
		t.Errorf("expected trashed note to be hidden, got %d", len(live))
	}

	clock.Advance(time.Minute)
	if err := s.Restore(ctx, note.ID); err != nil {
		t.Fatalf("failed to restore: %v", err)
	}
	restored, _ := s.Get(ctx, note.ID)
	if restored.TrashedAt != nil {
		t.Error("expected trashed_at to be cleared")
	}
	if !restored.UpdatedAt.After(trashed.UpdatedAt) {
		t.Error("expected updated_at to increase again")
	}

	live, _ = s.List(ctx, false)
	if len(live) != 1 {
		t.Errorf("expected restored note to be listed, got %d", len(live))
	}
}

func TestTrashTwiceRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)
	note := mustCreate(t, s, "t", "")

	_ = s.Trash(ctx, note.ID)
	first, _ := s.Get(ctx, note.ID)
	clock.Advance(time.Hour)
	if err := s.Trash(ctx, note.ID); err != nil {
		t.Fatalf("second trash failed: %v", err)
	}
	second, _ := s.Get(ctx, note.ID)

	if !second.TrashedAt.After(*first.TrashedAt) {
		t.Error("expected trash time to be refreshed")
	}
}

func TestTrashMissingNoteChangesNothing(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	note := mustCreate(t, s, "t", "")

	err := s.Trash(ctx, note.ID, uuid.New())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	got, _ := s.Get(ctx, note.ID)
	if got.TrashedAt != nil {
		t.Error("expected the existing note to stay live")
	}
}

func TestBulkTrashRestoreKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)

	var ids []uuid.UUID
	for _, title := range []string{"first", "second", "third"} {
		n := mustCreate(t, s, title, "")
		ids = append(ids, n.ID)
		clock.Advance(time.Second)
	}
	other := mustCreate(t, s, "other", "")

	before, _ := s.List(ctx, false)

	if err := s.Trash(ctx, ids[2], ids[0], ids[1]); err != nil {
		t.Fatalf("failed to trash: %v", err)
	}
	live, _ := s.List(ctx, false)
	if len(live) != 1 || live[0].ID != other.ID {
		t.Fatalf("expected only the other note live, got %v", noteTitles(live))
	}

	if err := s.Restore(ctx, ids[1], ids[2], ids[0]); err != nil {
		t.Fatalf("failed to restore: %v", err)
	}
	after, _ := s.List(ctx, false)
	if len(after) != 4 {
		t.Fatalf("expected 4 notes, got %d", len(after))
	}

	relative := func(notes []*models.Note) []string {
		var out []string
		for _, n := range notes {
			if n.ID != other.ID {
				out = append(out, n.Title)
			}
		}
		return out
	}
	want, got := relative(before), relative(after)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("expected relative order %v, got %v", want, got)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	a := mustCreate(t, s, "a", "")
	b := mustCreate(t, s, "b", "")
	_ = s.AddTag(ctx, a.ID, "work")

	if err := s.Delete(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected note to be gone, got %v", err)
	}
	tags, _ := s.AllTags(ctx)
	if len(tags) != 1 || tags[0].NoteCount != 0 {
		t.Errorf("expected tag to remain with no notes, got %+v", tags)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestEmptyTrash(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	keep := mustCreate(t, s, "keep", "")
	a := mustCreate(t, s, "a", "")
	b := mustCreate(t, s, "b", "")
	_ = s.Trash(ctx, a.ID, b.ID)

	n, err := s.EmptyTrash(ctx)
	if err != nil {
		t.Fatalf("failed to empty trash: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}
	all, _ := s.List(ctx, true)
	if len(all) != 1 || all[0].ID != keep.ID {
		t.Errorf("expected only the live note to remain, got %v", noteTitles(all))
	}
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	s, clock := openTestStore(t)
	const retention = 7

	old := mustCreate(t, s, "old", "")
	_ = s.Trash(ctx, old.ID)
	clock.Advance(2 * 24 * time.Hour)
	recent := mustCreate(t, s, "recent", "")
	_ = s.Trash(ctx, recent.ID)
	clock.Advance(6 * 24 * time.Hour)

	// old was trashed 8 days ago, recent 6 days ago.
	n, err := s.PurgeExpired(ctx, retention)
	if err != nil {
		t.Fatalf("failed to purge: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
	if _, err := s.Get(ctx, old.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Error("expected old trash to be purged")
	}
	if _, err := s.Get(ctx, recent.ID); err != nil {
		t.Errorf("expected recent trash to survive: %v", err)
	}
}

func TestOpenPurgesExpiredTrash(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")
	clock := newFakeClock()

	s, err := Open(ctx, path, WithClock(clock.Now), WithRetentionDays(3))
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	note := mustCreate(t, s, "bye", "")
	_ = s.Trash(ctx, note.ID)
	_ = s.Close()

	clock.Advance(4 * 24 * time.Hour)
	s, err = Open(ctx, path, WithClock(clock.Now), WithRetentionDays(3))
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Get(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected purge at open, got %v", err)
	}
}

func TestOpenWithRetentionDisabledKeepsTrash(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")
	clock := newFakeClock()

	s, _ := Open(ctx, path, WithClock(clock.Now), WithRetentionDays(0))
	note := mustCreate(t, s, "keep", "")
	_ = s.Trash(ctx, note.ID)
	_ = s.Close()

	clock.Advance(365 * 24 * time.Hour)
	s, err := Open(ctx, path, WithClock(clock.Now), WithRetentionDays(0))
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Get(ctx, note.ID); err != nil {
		t.Errorf("expected trash to survive: %v", err)
	}
}

func TestOpenIsExclusive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}

	if _, err := Open(ctx, path); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}

	_ = first.Close()
	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("expected reopen after close to work: %v", err)
	}
	_ = second.Close()
}

func TestClosedStore(t *testing.T) {
	s, _ := openTestStore(t)
	_ = s.Close()

	if _, err := s.List(context.Background(), false); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("expected second close to succeed, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	grocery := mustCreate(t, s, "Grocery List", "eggs\nmilk")
	other := mustCreate(t, s, "Other", "nothing here")

	for _, q := range []string{"groc", "mil", "  GROC  "} {
		results, err := s.Search(ctx, q)
		if err != nil {
			t.Fatalf("search %q failed: %v", q, err)
		}
		if len(results) != 1 || results[0].ID != grocery.ID {
			t.Errorf("search %q: expected the grocery note, got %v", q, noteTitles(results))
		}
	}

	phrase, _ := s.Search(ctx, "grocery li")
	if len(phrase) != 1 || phrase[0].ID != grocery.ID {
		t.Errorf("expected phrase prefix to match, got %v", noteTitles(phrase))
	}
	reordered, _ := s.Search(ctx, "list grocery")
	if len(reordered) != 0 {
		t.Errorf("expected words out of order not to match, got %v", noteTitles(reordered))
	}

	all, _ := s.Search(ctx, "   ")
	if len(all) != 2 {
		t.Errorf("expected blank search to list all, got %d", len(all))
	}

	_ = s.Trash(ctx, grocery.ID)
	results, _ := s.Search(ctx, "groc")
	if len(results) != 0 {
		t.Errorf("expected trashed note excluded, got %v", noteTitles(results))
	}
	all, _ = s.Search(ctx, "")
	if len(all) != 1 || all[0].ID != other.ID {
		t.Errorf("expected blank search to skip trash, got %v", noteTitles(all))
	}
}

func TestSearchSeesLatestContent(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	note := mustCreate(t, s, "", "apples")

	content := richtext.FromText("bananas")
	_, _ = s.Update(ctx, note.ID, models.NoteUpdate{Content: &content})

	if results, _ := s.Search(ctx, "apple"); len(results) != 0 {
		t.Error("expected old content to be gone from the index")
	}
	if results, _ := s.Search(ctx, "banan"); len(results) != 1 {
		t.Error("expected new content to be indexed")
	}
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	var kinds []events.Kind
	s.Events().Subscribe(func(e events.Event) {
		// The change must already be visible when observers run.
		if e.Kind != events.Deleted {
			if _, err := s.Get(ctx, e.NoteID); err != nil {
				t.Errorf("note not visible during %s event: %v", e.Kind, err)
			}
		}
		kinds = append(kinds, e.Kind)
	})

	note := mustCreate(t, s, "t", "")
	title := "u"
	_, _ = s.Update(ctx, note.ID, models.NoteUpdate{Title: &title})
	_ = s.Trash(ctx, note.ID)
	_ = s.Restore(ctx, note.ID)
	_ = s.Delete(ctx, note.ID)

	want := []events.Kind{events.Created, events.Changed, events.Trashed, events.Restored, events.Deleted}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
}

func TestFailedWriteRollsBackAndPublishesNothing(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	a := mustCreate(t, s, "a", "")

	var seen int
	s.Events().Subscribe(func(events.Event) { seen++ })

	err := s.Delete(ctx, a.ID, uuid.New())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, a.ID); err != nil {
		t.Errorf("expected rollback to keep the note: %v", err)
	}
	if seen != 0 {
		t.Errorf("expected no events, got %d", seen)
	}
}

func TestStorageFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	kept := mustCreate(t, s, "kept", "body")

	var seen int
	s.Events().Subscribe(func(events.Event) { seen++ })

	if _, err := s.db.ExecContext(ctx, `DROP TABLE notes_fts`); err != nil {
		t.Fatalf("failed to drop index: %v", err)
	}

	_, err := s.Create(ctx, "lost", richtext.FromText("never stored"), "")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage from Create, got %v", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("failed to count notes: %v", err)
	}
	if count != 1 {
		t.Errorf("expected only the original note to remain, got %d rows", count)
	}

	title := "renamed"
	_, err = s.Update(ctx, kept.ID, models.NoteUpdate{Title: &title})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage from Update, got %v", err)
	}
	got, err := s.Get(ctx, kept.ID)
	if err != nil {
		t.Fatalf("failed to get note: %v", err)
	}
	if got.Title != "kept" || !got.UpdatedAt.Equal(kept.UpdatedAt) {
		t.Errorf("expected update to roll back, got title %q at %v", got.Title, got.UpdatedAt)
	}

	if seen != 0 {
		t.Errorf("expected no events, got %d", seen)
	}
}

func TestImportKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	trashedAt := time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC)
	note := &models.Note{
		ID:        uuid.New(),
		Title:     "imported",
		Content:   richtext.FromText("body"),
		Color:     models.Purple,
		CreatedAt: time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: trashedAt,
		TrashedAt: &trashedAt,
		Tags:      []string{"b", "a"},
	}

	if err := s.Import(ctx, note); err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	got, err := s.Get(ctx, note.ID)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !got.CreatedAt.Equal(note.CreatedAt) || got.TrashedAt == nil || got.Color != models.Purple {
		t.Errorf("import lost fields: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "a" {
		t.Errorf("expected sorted tags, got %v", got.Tags)
	}

	if err := s.Import(ctx, note); !errors.Is(err, ErrNoteExists) {
		t.Errorf("expected ErrNoteExists, got %v", err)
	}
}

func noteTitles(notes []*models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
