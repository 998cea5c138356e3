// ABOUTME: The persisted rich-text document model: blocks of formatted runs.
// ABOUTME: Provides validation, normalization to minimal runs, and deep copies.

package richtext

import (
	"errors"
	"fmt"
	"strings"
)

// BlockKind distinguishes plain paragraphs from bullet-list items.
type BlockKind string

const (
	Paragraph BlockKind = "paragraph"
	Bullet    BlockKind = "bullet"
)

func (k BlockKind) Valid() bool {
	return k == Paragraph || k == Bullet
}

// Run is a maximal stretch of text sharing one tag set.
type Run struct {
	Text string `json:"text"`
	Tags TagSet `json:"tags"`
}

// Block is one line of a note.
type Block struct {
	Kind BlockKind `json:"type"`
	Runs []Run     `json:"runs"`
}

// Document is the structured content of a note.
type Document struct {
	Blocks []Block `json:"blocks"`
}

var ErrInvalidDocument = errors.New("invalid document")

// Plain is shorthand for an unformatted run.
func Plain(text string) Run {
	return Run{Text: text}
}

// Styled is shorthand for a run carrying the given tags.
func Styled(text string, tags ...FormatTag) Run {
	return Run{Text: text, Tags: NewTagSet(tags...)}
}

func NewParagraph(runs ...Run) Block {
	return Block{Kind: Paragraph, Runs: runs}
}

func NewBullet(runs ...Run) Block {
	return Block{Kind: Bullet, Runs: runs}
}

// Text concatenates the run texts of the block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsEmpty reports whether the block holds no characters.
func (b Block) IsEmpty() bool {
	for _, r := range b.Runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the document has no blocks at all.
func (d Document) IsEmpty() bool {
	return len(d.Blocks) == 0
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		out.Blocks[i] = Block{Kind: b.Kind, Runs: append([]Run(nil), b.Runs...)}
	}
	return out
}

// Equal compares two documents after normalization.
func (d Document) Equal(other Document) bool {
	a, b := d.Normalize(), other.Normalize()
	if len(a.Blocks) != len(b.Blocks) {
		return false
	}
	for i := range a.Blocks {
		if a.Blocks[i].Kind != b.Blocks[i].Kind || len(a.Blocks[i].Runs) != len(b.Blocks[i].Runs) {
			return false
		}
		for j := range a.Blocks[i].Runs {
			if a.Blocks[i].Runs[j] != b.Blocks[i].Runs[j] {
				return false
			}
		}
	}
	return true
}

// Validate checks the structural rules a canonical document obeys: known block
// kinds, at least one run per block, no empty runs in a non-empty block, no
// newlines inside runs and no two adjacent runs with the same tag set.
func (d Document) Validate() error {
	for i, b := range d.Blocks {
		if !b.Kind.Valid() {
			return fmt.Errorf("%w: block %d has kind %q", ErrInvalidDocument, i, b.Kind)
		}
		if len(b.Runs) == 0 {
			return fmt.Errorf("%w: block %d has no runs", ErrInvalidDocument, i)
		}
		if b.IsEmpty() {
			if len(b.Runs) != 1 || !b.Runs[0].Tags.IsEmpty() {
				return fmt.Errorf("%w: empty block %d must hold a single untagged run", ErrInvalidDocument, i)
			}
			continue
		}
		for j, r := range b.Runs {
			if r.Text == "" {
				return fmt.Errorf("%w: block %d run %d is empty", ErrInvalidDocument, i, j)
			}
			if strings.Contains(r.Text, "\n") {
				return fmt.Errorf("%w: block %d run %d contains a newline", ErrInvalidDocument, i, j)
			}
			if j > 0 && b.Runs[j-1].Tags == r.Tags {
				return fmt.Errorf("%w: block %d runs %d and %d share tags", ErrInvalidDocument, i, j-1, j)
			}
		}
	}
	return nil
}

// Normalize returns a canonical copy of d: unknown kinds become paragraphs,
// empty runs are dropped, adjacent runs with equal tags are merged and an
// empty block keeps exactly one empty untagged run.
func (d Document) Normalize() Document {
	out := Document{Blocks: make([]Block, 0, len(d.Blocks))}
	for _, b := range d.Blocks {
		kind := b.Kind
		if !kind.Valid() {
			kind = Paragraph
		}
		var runs []Run
		for _, r := range b.Runs {
			if r.Text == "" {
				continue
			}
			r.Tags &= allTagBits
			if n := len(runs); n > 0 && runs[n-1].Tags == r.Tags {
				runs[n-1].Text += r.Text
				continue
			}
			runs = append(runs, r)
		}
		if len(runs) == 0 {
			runs = []Run{{}}
		}
		out.Blocks = append(out.Blocks, Block{Kind: kind, Runs: runs})
	}
	return out
}
