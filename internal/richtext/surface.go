// ABOUTME: Boundary to a host text-editing widget and an in-memory implementation.
// ABOUTME: Capture reads live text from a surface; Load pushes live text into one.

package richtext

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Range is a half-open rune range.
type Range struct {
	Start int
	End   int
}

// Surface is the contract an editing widget fulfils. Offsets are rune
// offsets. SetText replaces the content and clears all tags and bullet flags.
type Surface interface {
	Text() string
	Ranges(tag FormatTag) []Range
	LineBullet(line int) bool
	SetText(text string)
	ApplyTag(tag FormatTag, start, end int)
	RemoveTag(tag FormatTag, start, end int)
	SetLineBullet(line int, on bool)
}

// Capture snapshots the content of s.
func Capture(s Surface) LiveText {
	lt := LiveText{Text: s.Text()}
	for _, tag := range AllTags() {
		for _, r := range s.Ranges(tag) {
			if r.Start < r.End {
				lt.Spans = append(lt.Spans, Span{Start: r.Start, End: r.End, Tag: tag})
			}
		}
	}
	sort.SliceStable(lt.Spans, func(i, j int) bool { return lt.Spans[i].Start < lt.Spans[j].Start })
	lines := lt.LineCount()
	lt.Bullets = make([]bool, lines)
	for i := 0; i < lines; i++ {
		lt.Bullets[i] = s.LineBullet(i)
	}
	return lt
}

// Load replaces the content of s with lt.
func Load(s Surface, lt LiveText) {
	s.SetText(lt.Text)
	for _, sp := range lt.Spans {
		s.ApplyTag(sp.Tag, sp.Start, sp.End)
	}
	for i, on := range lt.Bullets {
		if on {
			s.SetLineBullet(i, true)
		}
	}
}

// Buffer is an in-memory Surface.
type Buffer struct {
	text    []rune
	masks   []TagSet
	bullets []bool
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Text() string {
	return string(b.text)
}

func (b *Buffer) Ranges(tag FormatTag) []Range {
	var out []Range
	start := -1
	for i := 0; i <= len(b.masks); i++ {
		on := i < len(b.masks) && b.masks[i].Has(tag)
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			out = append(out, Range{Start: start, End: i})
			start = -1
		}
	}
	return out
}

func (b *Buffer) LineBullet(line int) bool {
	return line >= 0 && line < len(b.bullets) && b.bullets[line]
}

func (b *Buffer) SetText(text string) {
	b.text = []rune(text)
	b.masks = make([]TagSet, len(b.text))
	b.bullets = make([]bool, strings.Count(text, "\n")+1)
}

func (b *Buffer) clamp(start, end int) (int, int) {
	start = min(max(start, 0), len(b.text))
	end = min(max(end, start), len(b.text))
	return start, end
}

func (b *Buffer) ApplyTag(tag FormatTag, start, end int) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		b.masks[i] = b.masks[i].With(tag)
	}
}

func (b *Buffer) RemoveTag(tag FormatTag, start, end int) {
	start, end = b.clamp(start, end)
	for i := start; i < end; i++ {
		b.masks[i] = b.masks[i].Without(tag)
	}
}

func (b *Buffer) SetLineBullet(line int, on bool) {
	if line < 0 || line >= len(b.bullets) {
		return
	}
	b.bullets[line] = on
}

// Insert types s at offset with the given tags, the way a widget inserts
// text with the active formats.
func (b *Buffer) Insert(offset int, s string, tags TagSet) {
	offset, _ = b.clamp(offset, offset)
	lt := Capture(b).insert(offset, s)
	n := utf8.RuneCountInString(s)
	for _, tag := range tags.Tags() {
		lt.Spans = append(lt.Spans, Span{Start: offset, End: offset + n, Tag: tag})
	}
	Load(b, lt)
}

// Delete removes the rune range [start, end).
func (b *Buffer) Delete(start, end int) {
	start, end = b.clamp(start, end)
	Load(b, Capture(b).remove(start, end))
}
