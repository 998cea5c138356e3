// ABOUTME: Markdown bridge for editing notes in $EDITOR, rendering and import/export.
// ABOUTME: Each line maps to one block; inline formatting is parsed with goldmark.

package richtext

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

var bulletLine = regexp.MustCompile(`^\s*[-*+](?:[ \t]|$)`)

var orderedStart = regexp.MustCompile(`^(\d+)([.)])`)

const inlineSpecials = "\\`*_~<>[]!#|&"

// ToMarkdown renders d with one line per block. Bold is **, italic *,
// strikethrough ~~, underline <u>…</u> and bullets "- ". A styled run that
// touches another styled run, punctuation or surrounding whitespace is written
// with HTML tags (<b>, <i>, <s>, <u>) instead, since emphasis delimiters only
// parse back when they sit between whitespace and word characters.
func ToMarkdown(d Document) string {
	lines := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		if b.Kind == Bullet {
			lines[i] = "- " + inlineMarkdown(stripGlyph(b.Runs))
			continue
		}
		lines[i] = inlineMarkdown(b.Runs)
	}
	return strings.Join(lines, "\n")
}

func stripGlyph(runs []Run) []Run {
	if len(runs) == 0 {
		return runs
	}
	out := append([]Run(nil), runs...)
	switch {
	case strings.HasPrefix(out[0].Text, BulletGlyph):
		out[0].Text = strings.TrimPrefix(out[0].Text, BulletGlyph)
	case out[0].Text == strings.TrimSpace(BulletGlyph):
		out[0].Text = ""
	}
	if out[0].Text == "" {
		out = out[1:]
	}
	return out
}

func inlineMarkdown(runs []Run) string {
	var sb strings.Builder
	for i, r := range runs {
		if r.Tags.IsEmpty() || r.Text == "" {
			lead, core, trail := splitSpace(r.Text)
			core = escapeInline(core)
			if i == 0 {
				core = escapeLineStart(core)
			}
			sb.WriteString(lead + core + trail)
			continue
		}
		open, close := htmlMarkers(r.Tags)
		if delimitable(runs, i) {
			open, close = markers(r.Tags)
		}
		sb.WriteString(open + escapeInline(r.Text) + close)
	}
	return sb.String()
}

// delimitable reports whether run i can be wrapped in emphasis delimiters:
// it starts and ends with a word character and its neighbours are plain
// text separated from it by whitespace.
func delimitable(runs []Run, i int) bool {
	text := runs[i].Text
	first, _ := utf8.DecodeRuneInString(text)
	last, _ := utf8.DecodeLastRuneInString(text)
	if !isWordRune(first) || !isWordRune(last) {
		return false
	}
	if i > 0 {
		prev := runs[i-1]
		r, _ := utf8.DecodeLastRuneInString(prev.Text)
		if !prev.Tags.IsEmpty() || !unicode.IsSpace(r) {
			return false
		}
	}
	if i+1 < len(runs) {
		next := runs[i+1]
		r, _ := utf8.DecodeRuneInString(next.Text)
		if !next.Tags.IsEmpty() || !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func markers(tags TagSet) (open, close string) {
	if tags.Has(Underline) {
		open, close = open+"<u>", "</u>"+close
	}
	if tags.Has(Strikethrough) {
		open, close = open+"~~", "~~"+close
	}
	if tags.Has(Bold) {
		open, close = open+"**", "**"+close
	}
	if tags.Has(Italic) {
		open, close = open+"*", "*"+close
	}
	return open, close
}

var htmlNames = map[FormatTag]string{
	Underline:     "u",
	Strikethrough: "s",
	Bold:          "b",
	Italic:        "i",
}

var htmlFormats = map[string]FormatTag{
	"u":      Underline,
	"s":      Strikethrough,
	"del":    Strikethrough,
	"strike": Strikethrough,
	"b":      Bold,
	"strong": Bold,
	"i":      Italic,
	"em":     Italic,
}

var htmlFormatTag = regexp.MustCompile(`^<(/?)([A-Za-z]+)>$`)

func htmlMarkers(tags TagSet) (open, close string) {
	for _, t := range []FormatTag{Underline, Strikethrough, Bold, Italic} {
		if tags.Has(t) {
			open += "<" + htmlNames[t] + ">"
			close = "</" + htmlNames[t] + ">" + close
		}
	}
	return open, close
}

func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

func escapeInline(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(inlineSpecials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// escapeLineStart neutralizes text that would otherwise start a list, a
// heading underline or a thematic break.
func escapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '=':
		return "\\" + s
	}
	if m := orderedStart.FindStringSubmatch(s); m != nil {
		return m[1] + "\\" + s[len(m[1]):]
	}
	return s
}

// FromMarkdown parses markdown into a document, one block per line. Lines
// starting with "-", "*" or "+" followed by a space become bullets carrying
// the bullet glyph. Trailing blank lines are dropped.
func FromMarkdown(src string) Document {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.TrimRight(src, "\n")
	if src == "" {
		return Document{Blocks: []Block{}}
	}
	lines := strings.Split(src, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		if m := bulletLine.FindString(line); m != "" {
			runs := append([]Run{Plain(BulletGlyph)}, parseInline(line[len(m):])...)
			blocks = append(blocks, NewBullet(runs...))
			continue
		}
		blocks = append(blocks, NewParagraph(parseInline(line)...))
	}
	return Document{Blocks: blocks}.Normalize()
}

func parseInline(line string) []Run {
	lead, core, trail := splitSpace(line)
	if core == "" {
		return []Run{Plain(line)}
	}
	src := []byte(core)
	root := markdown.Parser().Parse(text.NewReader(src))
	var runs []Run
	collectInline(root, src, 0, &runs)
	if len(runs) == 0 {
		runs = []Run{Plain(core)}
	}
	runs = append([]Run{Plain(lead)}, runs...)
	return append(runs, Plain(trail))
}

func collectInline(n ast.Node, src []byte, tags TagSet, runs *[]Run) {
	add := func(s string, t TagSet) {
		*runs = append(*runs, Run{Text: s, Tags: t})
	}
	cur := tags
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			v := node.Segment.Value(src)
			if !node.IsRaw() {
				v = util.UnescapePunctuations(v)
			}
			add(string(v), cur)
		case *ast.String:
			add(string(node.Value), cur)
		case *ast.Emphasis:
			t := Italic
			if node.Level >= 2 {
				t = Bold
			}
			collectInline(node, src, cur.With(t), runs)
		case *east.Strikethrough:
			collectInline(node, src, cur.With(Strikethrough), runs)
		case *ast.RawHTML:
			raw := string(node.Segments.Value(src))
			if m := htmlFormatTag.FindStringSubmatch(raw); m != nil {
				if t, ok := htmlFormats[strings.ToLower(m[2])]; ok {
					if m[1] == "" {
						cur = cur.With(t)
					} else {
						cur = cur.Without(t)
					}
					continue
				}
			}
			add(raw, cur)
		case *ast.AutoLink:
			add(string(node.Label(src)), cur)
		default:
			if c.Type() == ast.TypeBlock && !c.HasChildren() {
				lines := c.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					add(strings.TrimRight(string(seg.Value(src)), "\n"), cur)
				}
				continue
			}
			collectInline(c, src, cur, runs)
		}
	}
}
