// ABOUTME: Live text as an editing surface sees it: plain text, tag spans, bullet lines.
// ABOUTME: Serialize and Deserialize convert between live text and documents.

package richtext

import (
	"strings"
	"unicode/utf8"
)

// Span applies Tag to the half-open rune range [Start, End).
type Span struct {
	Start int
	End   int
	Tag   FormatTag
}

// LiveText is the editor-side representation of a note. Offsets are rune
// offsets into Text. Bullets holds one flag per line; missing entries are false.
type LiveText struct {
	Text    string
	Spans   []Span
	Bullets []bool
}

// Clone returns a deep copy of lt.
func (lt LiveText) Clone() LiveText {
	return LiveText{
		Text:    lt.Text,
		Spans:   append([]Span(nil), lt.Spans...),
		Bullets: append([]bool(nil), lt.Bullets...),
	}
}

// Len is the length of the text in runes.
func (lt LiveText) Len() int {
	return utf8.RuneCountInString(lt.Text)
}

// Lines splits the text on newlines.
func (lt LiveText) Lines() []string {
	return strings.Split(lt.Text, "\n")
}

func (lt LiveText) LineCount() int {
	return strings.Count(lt.Text, "\n") + 1
}

func (lt LiveText) IsBullet(line int) bool {
	return line >= 0 && line < len(lt.Bullets) && lt.Bullets[line]
}

// TagsAt returns the effective tag set of the rune at offset.
func (lt LiveText) TagsAt(offset int) TagSet {
	var s TagSet
	for _, sp := range lt.Spans {
		if offset >= sp.Start && offset < sp.End {
			s = s.With(sp.Tag)
		}
	}
	return s
}

// masks computes the effective tag set of every rune.
func (lt LiveText) masks(n int) []TagSet {
	m := make([]TagSet, n)
	for _, sp := range lt.Spans {
		if !sp.Tag.Valid() {
			continue
		}
		start, end := max(sp.Start, 0), min(sp.End, n)
		for i := start; i < end; i++ {
			m[i] = m[i].With(sp.Tag)
		}
	}
	return m
}

// lineBounds returns the line containing offset with its rune start and end
// (end excludes the newline).
func (lt LiveText) lineBounds(offset int) (line, start, end int) {
	runes := []rune(lt.Text)
	offset = min(max(offset, 0), len(runes))
	for i := 0; i < offset; i++ {
		if runes[i] == '\n' {
			line++
			start = i + 1
		}
	}
	end = start
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	return line, start, end
}

func (lt *LiveText) setBullet(line int, on bool) {
	for len(lt.Bullets) <= line {
		lt.Bullets = append(lt.Bullets, false)
	}
	lt.Bullets[line] = on
}

// insert returns a copy with s inserted at rune offset pos. Spans starting at
// or after pos shift right; spans strictly containing pos grow. New lines
// created by s are not bullets.
func (lt LiveText) insert(pos int, s string) LiveText {
	runes := []rune(lt.Text)
	pos = min(max(pos, 0), len(runes))
	n := utf8.RuneCountInString(s)
	out := LiveText{Text: string(runes[:pos]) + s + string(runes[pos:])}
	for _, sp := range lt.Spans {
		switch {
		case sp.Start >= pos:
			sp.Start += n
			sp.End += n
		case sp.End > pos:
			sp.End += n
		}
		out.Spans = append(out.Spans, sp)
	}
	line, _, _ := lt.lineBounds(pos)
	out.Bullets = append([]bool(nil), lt.Bullets...)
	if added := strings.Count(s, "\n"); added > 0 && line < len(out.Bullets) {
		tail := append(make([]bool, added), out.Bullets[line+1:]...)
		out.Bullets = append(out.Bullets[:line+1], tail...)
	}
	return out
}

// remove returns a copy with the rune range [start, end) deleted. Lines
// joined by the deletion keep the bullet flag of the first line.
func (lt LiveText) remove(start, end int) LiveText {
	runes := []rune(lt.Text)
	start = min(max(start, 0), len(runes))
	end = min(max(end, start), len(runes))
	width := end - start
	shift := func(x int) int {
		switch {
		case x <= start:
			return x
		case x >= end:
			return x - width
		default:
			return start
		}
	}
	out := LiveText{Text: string(runes[:start]) + string(runes[end:])}
	for _, sp := range lt.Spans {
		sp.Start, sp.End = shift(sp.Start), shift(sp.End)
		if sp.Start < sp.End {
			out.Spans = append(out.Spans, sp)
		}
	}
	line, _, _ := lt.lineBounds(start)
	out.Bullets = append([]bool(nil), lt.Bullets...)
	if joined := strings.Count(string(runes[start:end]), "\n"); joined > 0 && line+1 < len(out.Bullets) {
		cut := min(line+1+joined, len(out.Bullets))
		out.Bullets = append(out.Bullets[:line+1], out.Bullets[cut:]...)
	}
	return out
}

// Serialize converts live text into a document: one block per line, a new run
// wherever the effective tag set changes. Empty text yields no blocks.
func Serialize(lt LiveText) Document {
	if lt.Text == "" {
		return Document{Blocks: []Block{}}
	}
	runes := []rune(lt.Text)
	masks := lt.masks(len(runes))
	lines := lt.Lines()
	blocks := make([]Block, 0, len(lines))
	offset := 0
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		kind := Paragraph
		if lt.IsBullet(i) {
			kind = Bullet
		}
		blocks = append(blocks, Block{Kind: kind, Runs: splitRuns(runes[offset:offset+n], masks[offset:offset+n])})
		offset += n + 1
	}
	return Document{Blocks: blocks}
}

func splitRuns(text []rune, masks []TagSet) []Run {
	if len(text) == 0 {
		return []Run{{}}
	}
	var runs []Run
	start := 0
	for i := 1; i <= len(text); i++ {
		if i == len(text) || masks[i] != masks[start] {
			runs = append(runs, Run{Text: string(text[start:i]), Tags: masks[start]})
			start = i
		}
	}
	return runs
}

// Deserialize rebuilds live text from a document. Blocks are joined with
// newlines, each tag gets one span per contiguous stretch, and each line gets
// the bullet flag of its block.
func Deserialize(d Document) LiveText {
	var sb strings.Builder
	lt := LiveText{Bullets: make([]bool, len(d.Blocks))}
	last := map[FormatTag]int{}
	offset := 0
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
			offset++
		}
		for _, r := range b.Runs {
			n := utf8.RuneCountInString(r.Text)
			if n == 0 {
				continue
			}
			sb.WriteString(r.Text)
			for _, tag := range r.Tags.Tags() {
				if idx, ok := last[tag]; ok && lt.Spans[idx].End == offset {
					lt.Spans[idx].End += n
					continue
				}
				lt.Spans = append(lt.Spans, Span{Start: offset, End: offset + n, Tag: tag})
				last[tag] = len(lt.Spans) - 1
			}
			offset += n
		}
		lt.Bullets[i] = b.Kind == Bullet
	}
	lt.Text = sb.String()
	return lt
}
