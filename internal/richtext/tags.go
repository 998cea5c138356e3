// ABOUTME: Character-level format tags and the sets runs carry.
// ABOUTME: A TagSet is a bitmask that serializes as a sorted array of names.

package richtext

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormatTag is a single character-level format. Bullets are block-level and
// are not a FormatTag.
type FormatTag uint8

const (
	Bold FormatTag = 1 << iota
	Italic
	Underline
	Strikethrough
)

const allTagBits = TagSet(Bold | Italic | Underline | Strikethrough)

// canonicalOrder lists the tags sorted by their persisted name.
var canonicalOrder = []FormatTag{Bold, Italic, Strikethrough, Underline}

var tagNames = map[FormatTag]string{
	Bold:          "bold",
	Italic:        "italic",
	Underline:     "underline",
	Strikethrough: "strikethrough",
}

// AllTags returns every supported tag in canonical order.
func AllTags() []FormatTag {
	return append([]FormatTag(nil), canonicalOrder...)
}

func (t FormatTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is exactly one supported tag.
func (t FormatTag) Valid() bool {
	_, ok := tagNames[t]
	return ok
}

// ParseTag maps a persisted tag name to its FormatTag.
func ParseTag(name string) (FormatTag, bool) {
	for tag, n := range tagNames {
		if n == name {
			return tag, true
		}
	}
	return 0, false
}

// TagSet is an unordered set of FormatTags.
type TagSet uint8

func NewTagSet(tags ...FormatTag) TagSet {
	var s TagSet
	for _, t := range tags {
		s = s.With(t)
	}
	return s
}

func (s TagSet) Has(t FormatTag) bool {
	return t.Valid() && s&TagSet(t) != 0
}

func (s TagSet) With(t FormatTag) TagSet {
	if !t.Valid() {
		return s
	}
	return s | TagSet(t)
}

func (s TagSet) Without(t FormatTag) TagSet {
	return s &^ TagSet(t)
}

func (s TagSet) IsEmpty() bool {
	return s&allTagBits == 0
}

// Tags returns the members of s in canonical order.
func (s TagSet) Tags() []FormatTag {
	var out []FormatTag
	for _, t := range canonicalOrder {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Names returns the sorted tag names. An empty set yields an empty, non-nil slice.
func (s TagSet) Names() []string {
	names := []string{}
	for _, t := range s.Tags() {
		names = append(names, t.String())
	}
	return names
}

func (s TagSet) String() string {
	if s.IsEmpty() {
		return "plain"
	}
	return strings.Join(s.Names(), "+")
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON accepts an array of tag names. Unknown names are skipped so
// content written by a newer version still loads.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = 0
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out TagSet
	for _, n := range names {
		if t, ok := ParseTag(n); ok {
			out = out.With(t)
		}
	}
	*s = out
	return nil
}
