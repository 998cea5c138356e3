// ABOUTME: Editing session for one open note bound to a rich-text surface.
// ABOUTME: Edits are saved after a quiet period; SaveNow and Close persist immediately.

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/debounce"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/richtext"
	"github.com/harper/stickies/internal/store"
	"go.uber.org/zap"
)

var ErrNoNote = errors.New("no note is open")

// snapshot is the surface content captured at one edit.
type snapshot struct {
	rev  uint64
	text richtext.LiveText
}

// Editor keeps a surface and a stored note in step. Surface calls must come
// from one goroutine; saves may run on the debounce goroutine.
type Editor struct {
	store   *store.Store
	surface richtext.Surface
	logger  *zap.Logger
	pending *debounce.Latest[snapshot]

	mu       sync.Mutex
	note     *models.Note
	saved    richtext.Document
	rev      uint64
	savedRev uint64
	lastErr  error

	saveMu sync.Mutex
}

func NewEditor(st *store.Store, surface richtext.Surface, opts ...Option) *Editor {
	o := buildOptions(DefaultSaveDelay, opts)
	e := &Editor{store: st, surface: surface, logger: o.logger}
	e.pending = debounce.NewLatest(o.delay, func(s snapshot) {
		if err := e.persist(context.Background(), s); err != nil {
			e.logger.Error("autosave failed", zap.Error(err))
		}
	})
	return e
}

// Open saves the current note, if any, then loads id into the surface.
func (e *Editor) Open(ctx context.Context, id uuid.UUID) error {
	if err := e.SaveNow(ctx); err != nil && !errors.Is(err, ErrNoNote) {
		return err
	}
	note, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	e.load(note)
	return nil
}

// Create stores a new empty note and opens it.
func (e *Editor) Create(ctx context.Context, color models.Color) (*models.Note, error) {
	if err := e.SaveNow(ctx); err != nil && !errors.Is(err, ErrNoNote) {
		return nil, err
	}
	note, err := e.store.Create(ctx, "", richtext.Document{}, color)
	if err != nil {
		return nil, err
	}
	e.load(note)
	return e.Note(), nil
}

func (e *Editor) load(note *models.Note) {
	e.pending.Cancel()
	e.mu.Lock()
	e.note = note
	e.saved = note.Content.Normalize()
	e.rev++
	e.savedRev = e.rev
	e.lastErr = nil
	e.mu.Unlock()
	richtext.Load(e.surface, richtext.Deserialize(note.Content))
}

// Note returns a copy of the open note as last saved, or nil.
func (e *Editor) Note() *models.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note == nil {
		return nil
	}
	n := *e.note
	n.Content = e.note.Content.Clone()
	n.Tags = append([]string(nil), e.note.Tags...)
	return &n
}

// Err returns the error of the most recent save, if it failed.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Dirty reports whether the surface holds edits not yet saved.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.note != nil && e.rev != e.savedRev
}

// Changed records an edit on the surface and schedules a save.
func (e *Editor) Changed() {
	e.mu.Lock()
	if e.note == nil {
		e.mu.Unlock()
		return
	}
	e.rev++
	s := snapshot{rev: e.rev, text: richtext.Capture(e.surface)}
	e.mu.Unlock()
	e.pending.Set(s)
}

// SaveNow cancels the pending save and persists the surface immediately.
func (e *Editor) SaveNow(ctx context.Context) error {
	e.mu.Lock()
	if e.note == nil {
		e.mu.Unlock()
		return ErrNoNote
	}
	e.rev++
	s := snapshot{rev: e.rev, text: richtext.Capture(e.surface)}
	e.mu.Unlock()
	e.pending.Cancel()
	return e.persist(ctx, s)
}

func (e *Editor) persist(ctx context.Context, s snapshot) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if e.note == nil || s.rev <= e.savedRev {
		e.mu.Unlock()
		return nil
	}
	id := e.note.ID
	doc := richtext.Serialize(s.text)
	if doc.Equal(e.saved) {
		e.savedRev = s.rev
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	note, err := e.store.Update(ctx, id, models.NoteUpdate{Content: &doc})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = err
	if err != nil {
		return err
	}
	if e.note == nil || e.note.ID != id {
		return nil
	}
	e.note = note
	e.saved = note.Content
	if s.rev > e.savedRev {
		e.savedRev = s.rev
	}
	e.logger.Debug("saved note", zap.String("id", id.String()))
	return nil
}

// ToggleBullet flips the bullet on the cursor's line.
func (e *Editor) ToggleBullet(cursor int) {
	lt := richtext.ToggleBullet(richtext.Capture(e.surface), cursor)
	richtext.Load(e.surface, lt)
	e.Changed()
}

// BreakLine handles Enter at cursor. It returns the new cursor and whether
// the break was handled; an unhandled break is left to the surface.
func (e *Editor) BreakLine(cursor int) (int, bool) {
	out, next, handled := richtext.BreakLine(richtext.Capture(e.surface), cursor)
	if !handled {
		return cursor, false
	}
	richtext.Load(e.surface, out)
	e.Changed()
	return next, true
}

// SetTitle saves a new title right away.
func (e *Editor) SetTitle(ctx context.Context, title string) error {
	return e.update(ctx, models.NoteUpdate{Title: &title})
}

// SetColor saves a new color right away.
func (e *Editor) SetColor(ctx context.Context, color models.Color) error {
	return e.update(ctx, models.NoteUpdate{Color: &color})
}

func (e *Editor) update(ctx context.Context, upd models.NoteUpdate) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if e.note == nil {
		e.mu.Unlock()
		return ErrNoNote
	}
	id := e.note.ID
	e.mu.Unlock()

	note, err := e.store.Update(ctx, id, upd)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note != nil && e.note.ID == id {
		// Content on the surface may be ahead of the store; keep the last
		// saved content so a later save still sees the difference.
		note.Content = e.note.Content
		e.note = note
	}
	return nil
}

// Close saves pending edits and detaches the note. The editor can open
// another note afterwards.
func (e *Editor) Close(ctx context.Context) error {
	err := e.SaveNow(ctx)
	if errors.Is(err, ErrNoNote) {
		return nil
	}
	e.pending.Cancel()
	e.mu.Lock()
	e.note = nil
	e.saved = richtext.Document{}
	e.mu.Unlock()
	return err
}
