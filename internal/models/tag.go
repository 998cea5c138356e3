// ABOUTME: Tag model for categorizing notes.
// ABOUTME: Normalizes tag names to lowercase with trimmed whitespace.

package models

import "strings"

type Tag struct {
	ID        int64
	Name      string
	NoteCount int
}

func NewTag(name string) *Tag {
	return &Tag{
		Name: NormalizeTagName(name),
	}
}

// NormalizeTagName is the canonical stored form of a tag name.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
