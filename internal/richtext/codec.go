// ABOUTME: JSON persistence format for rich-text documents.
// ABOUTME: Decode never fails; legacy or malformed content becomes plain text.

package richtext

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EmptyJSON is the persisted form of a note with no content.
const EmptyJSON = `{"blocks":[]}`

type wireRun struct {
	Text *string `json:"text"`
	Tags *TagSet `json:"tags"`
}

type wireBlock struct {
	Type *BlockKind `json:"type"`
	Runs *[]wireRun `json:"runs"`
}

type wireDocument struct {
	Blocks *[]wireBlock `json:"blocks"`
}

// Marshal encodes the canonical form of d.
func Marshal(d Document) string {
	n := d.Normalize()
	data, err := json.Marshal(n)
	if err != nil {
		return EmptyJSON
	}
	return string(data)
}

// Parse strictly decodes persisted content. The top level must be an object
// with a "blocks" array; every block needs a "type" and a "runs" array (an
// unrecognized type reads as a paragraph);
// every run needs a "text" string. A missing "tags" key means no tags.
func Parse(raw string) (Document, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var w wireDocument
	if err := dec.Decode(&w); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("%w: trailing data", ErrInvalidDocument)
	}
	if w.Blocks == nil {
		return Document{}, fmt.Errorf("%w: missing blocks", ErrInvalidDocument)
	}
	doc := Document{Blocks: make([]Block, 0, len(*w.Blocks))}
	for i, wb := range *w.Blocks {
		if wb.Type == nil {
			return Document{}, fmt.Errorf("%w: block %d has no type", ErrInvalidDocument, i)
		}
		if wb.Runs == nil {
			return Document{}, fmt.Errorf("%w: block %d has no runs", ErrInvalidDocument, i)
		}
		b := Block{Kind: *wb.Type, Runs: make([]Run, 0, len(*wb.Runs))}
		for j, wr := range *wb.Runs {
			if wr.Text == nil {
				return Document{}, fmt.Errorf("%w: block %d run %d has no text", ErrInvalidDocument, i, j)
			}
			r := Run{Text: *wr.Text}
			if wr.Tags != nil {
				r.Tags = *wr.Tags
			}
			b.Runs = append(b.Runs, r)
		}
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc.Normalize(), nil
}

// Decode turns persisted content into a document. Empty input is the empty
// document; anything Parse rejects becomes one unformatted paragraph holding
// the raw input.
func Decode(raw string) Document {
	if raw == "" {
		return Document{Blocks: []Block{}}
	}
	doc, err := Parse(raw)
	if err != nil {
		return FromText(raw)
	}
	return doc
}

// FromText wraps s as a single unformatted paragraph.
func FromText(s string) Document {
	return Document{Blocks: []Block{NewParagraph(Plain(s))}}.Normalize()
}

// FromLines builds one unformatted paragraph per line of s.
func FromLines(s string) Document {
	if s == "" {
		return Document{Blocks: []Block{}}
	}
	lines := strings.Split(s, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, NewParagraph(Plain(line)))
	}
	return Document{Blocks: blocks}.Normalize()
}
