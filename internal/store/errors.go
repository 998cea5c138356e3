// ABOUTME: Error kinds returned by the note store.
// ABOUTME: Not-found and constraint errors are sentinels; I/O failures are StorageErrors.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/stickies/internal/db"
	"github.com/harper/stickies/internal/models"
)

var (
	ErrNoteNotFound    = db.ErrNoteNotFound
	ErrTagNotFound     = db.ErrTagNotFound
	ErrPrefixTooShort  = db.ErrPrefixTooShort
	ErrAmbiguousPrefix = db.ErrAmbiguousPrefix
	ErrEmptyTagName    = db.ErrEmptyTagName
	ErrNoteExists      = errors.New("note already exists")
	ErrLocked          = errors.New("note store is in use by another process")
	ErrClosed          = errors.New("note store is closed")

	// ErrStorage matches every StorageError via errors.Is.
	ErrStorage = errors.New("storage failure")
)

// StorageError reports a failure of the backing database. The operation it
// interrupted was rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// domainErrors pass through unwrapped.
var domainErrors = []error{
	ErrNoteNotFound,
	ErrTagNotFound,
	ErrPrefixTooShort,
	ErrAmbiguousPrefix,
	ErrEmptyTagName,
	ErrNoteExists,
	ErrClosed,
	models.ErrUnknownColor,
	context.Canceled,
	context.DeadlineExceeded,
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
