// ABOUTME: Note store: the transactional repository over the SQLite database.
// ABOUTME: Owns the connection, the single-writer file lock and domain event publishing.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/harper/stickies/internal/db"
	"github.com/harper/stickies/internal/events"
	"github.com/harper/stickies/internal/models"
	"go.uber.org/zap"
)

const DefaultRetentionDays = 7

type Store struct {
	path          string
	db            *sql.DB
	lock          *flock.Flock
	logger        *zap.Logger
	bus           *events.Bus
	now           func() time.Time
	retentionDays int
	defaultColor  models.Color

	mu     sync.Mutex
	closed bool
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithBus(bus *events.Bus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRetentionDays sets how long trashed notes survive. Zero disables the
// purge at open.
func WithRetentionDays(days int) Option {
	return func(s *Store) { s.retentionDays = days }
}

func WithDefaultColor(c models.Color) Option {
	return func(s *Store) {
		if c.Valid() {
			s.defaultColor = c
		}
	}
}

// Open opens the store at path, takes the single-writer lock and purges
// expired trash.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:          path,
		logger:        zap.NewNop(),
		now:           time.Now,
		retentionDays: DefaultRetentionDays,
		defaultColor:  models.DefaultColor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = events.NewBus(s.logger)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("create data directory: %w", err)}
	}
	s.lock = flock.New(path + ".lock")
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, &StorageError{Op: "lock", Err: err}
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	conn, err := db.Open(path)
	if err != nil {
		_ = s.lock.Unlock()
		return nil, &StorageError{Op: "open", Err: err}
	}
	s.db = conn
	s.logger.Debug("opened note store", zap.String("path", path))

	if s.retentionDays > 0 {
		purged, err := s.PurgeExpired(ctx, s.retentionDays)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		if purged > 0 {
			s.logger.Info("purged expired trash", zap.Int("count", purged), zap.Int("retention_days", s.retentionDays))
		}
	}
	return s, nil
}

// Close releases the database and the lock. It is safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.db.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	s.logger.Debug("closed note store", zap.String("path", s.path))
	if err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Events() *events.Bus { return s.bus }

func (s *Store) RetentionDays() int { return s.retentionDays }

func (s *Store) DefaultColor() models.Color { return s.defaultColor }

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// read runs a query outside a transaction and classifies its error.
func (s *Store) read(op string, fn func(q db.Querier) error) error {
	if s.isClosed() {
		return ErrClosed
	}
	return classify(op, fn(s.db))
}

// write runs fn in a transaction and publishes the returned events after a
// successful commit.
func (s *Store) write(ctx context.Context, op string, fn func(tx *sql.Tx) ([]events.Event, error)) error {
	if s.isClosed() {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail(op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	evs, err := fn(tx)
	if err != nil {
		return s.fail(op, err)
	}
	if err := tx.Commit(); err != nil {
		return s.fail(op, err)
	}
	s.bus.Publish(evs...)
	return nil
}

func (s *Store) fail(op string, err error) error {
	err = classify(op, err)
	if errors.Is(err, ErrStorage) {
		s.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

func (s *Store) event(kind events.Kind, n *models.Note) events.Event {
	return events.Event{Kind: kind, NoteID: n.ID, At: n.UpdatedAt}
}
