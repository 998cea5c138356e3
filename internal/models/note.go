// ABOUTME: Note model holding rich-text content, color, tags and trash state.
// ABOUTME: Provides constructor, monotonic timestamps and partial updates.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/stickies/internal/richtext"
)

type Note struct {
	ID        uuid.UUID
	Title     string
	Content   richtext.Document
	Color     Color
	CreatedAt time.Time
	UpdatedAt time.Time
	TrashedAt *time.Time
	Tags      []string
}

func NewNote(title string, content richtext.Document, color Color) *Note {
	if !color.Valid() {
		color = DefaultColor
	}
	now := time.Now().UTC()
	return &Note{
		ID:        uuid.New(),
		Title:     title,
		Content:   content.Normalize(),
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NextStamp returns now, or one nanosecond past prev when the clock has not
// moved beyond it.
func NextStamp(prev, now time.Time) time.Time {
	now = now.UTC()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond).UTC()
	}
	return now
}

func (n *Note) Touch() {
	n.UpdatedAt = NextStamp(n.UpdatedAt, time.Now())
}

func (n *Note) IsTrashed() bool {
	return n.TrashedAt != nil
}

func (n *Note) PlainText() string {
	return richtext.PlainText(n.Content)
}

// DisplayTitle is the title, or the first non-blank content line when the
// title is empty.
func (n *Note) DisplayTitle() string {
	if t := strings.TrimSpace(n.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(n.PlainText(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, richtext.BulletGlyph))
		if line != "" {
			return line
		}
	}
	return "Untitled"
}

// ExpiresAt is when a trashed note becomes eligible for purge.
func (n *Note) ExpiresAt(retentionDays int) (time.Time, bool) {
	if n.TrashedAt == nil || retentionDays <= 0 {
		return time.Time{}, false
	}
	return n.TrashedAt.Add(time.Duration(retentionDays) * 24 * time.Hour), true
}

func (n *Note) HasTag(name string) bool {
	name = NormalizeTagName(name)
	for _, t := range n.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// NoteUpdate carries the fields to change; nil fields are left alone.
type NoteUpdate struct {
	Title   *string
	Content *richtext.Document
	Color   *Color
}

func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Color == nil
}

// Apply copies the set fields onto n. It does not touch timestamps.
func (u NoteUpdate) Apply(n *Note) {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Content != nil {
		n.Content = u.Content.Normalize()
	}
	if u.Color != nil {
		n.Color = *u.Color
	}
}
