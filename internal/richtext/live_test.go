// ABOUTME: Tests for converting between live text and documents.
// ABOUTME: Includes a randomized round-trip check over text, spans and bullets.

package richtext

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeEmptyText(t *testing.T) {
	doc := Serialize(LiveText{})
	assert.True(t, doc.IsEmpty())
	assert.Equal(t, EmptyJSON, Marshal(doc))
}

func TestSerializeSplitsRunsOnTagChanges(t *testing.T) {
	// "Hello bold world": "bold" is bold, "bo" also italic.
	lt := LiveText{
		Text: "Hello bold world",
		Spans: []Span{
			{Start: 6, End: 10, Tag: Bold},
			{Start: 6, End: 8, Tag: Italic},
		},
	}

	doc := Serialize(lt)

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, []Run{
		Plain("Hello "),
		Styled("bo", Bold, Italic),
		Styled("ld", Bold),
		Plain(" world"),
	}, doc.Blocks[0].Runs)
}

func TestSerializeOverlappingSpansOfSameTag(t *testing.T) {
	lt := LiveText{
		Text: "abcdef",
		Spans: []Span{
			{Start: 0, End: 3, Tag: Bold},
			{Start: 2, End: 5, Tag: Bold},
		},
	}

	doc := Serialize(lt)

	assert.Equal(t, []Run{Styled("abcde", Bold), Plain("f")}, doc.Blocks[0].Runs)
}

func TestSerializePreservesEmptyLines(t *testing.T) {
	lt := LiveText{Text: "a\n\n\nb", Bullets: []bool{false, true}}

	doc := Serialize(lt)

	require.Len(t, doc.Blocks, 4)
	assert.Equal(t, []Run{{}}, doc.Blocks[1].Runs)
	assert.Equal(t, Bullet, doc.Blocks[1].Kind)
	assert.Equal(t, []Run{{}}, doc.Blocks[2].Runs)
	assert.Equal(t, Paragraph, doc.Blocks[2].Kind)
	require.NoError(t, doc.Validate())

	back := Deserialize(doc)
	assert.Equal(t, "a\n\n\nb", back.Text)
}

func TestDeserializeCoalescesAdjacentSpans(t *testing.T) {
	doc := Document{Blocks: []Block{
		NewParagraph(Styled("ab", Bold), Styled("cd", Bold, Italic), Plain("e")),
	}}

	lt := Deserialize(doc)

	assert.Equal(t, "abcde", lt.Text)
	assert.Equal(t, []Span{
		{Start: 0, End: 4, Tag: Bold},
		{Start: 2, End: 4, Tag: Italic},
	}, lt.Spans)
}

func TestDeserializeMultibyteOffsets(t *testing.T) {
	doc := Document{Blocks: []Block{
		NewBullet(Plain("• "), Styled("café", Underline)),
	}}

	lt := Deserialize(doc)

	assert.Equal(t, []Span{{Start: 2, End: 6, Tag: Underline}}, lt.Spans)
	assert.Equal(t, []bool{true}, lt.Bullets)
}

func randomLiveText(r *rand.Rand) LiveText {
	alphabet := []rune("ab é\n•")
	n := 1 + r.Intn(40)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(alphabet[r.Intn(len(alphabet))])
	}
	lt := LiveText{Text: sb.String()}
	for i := r.Intn(6); i > 0; i-- {
		start := r.Intn(n)
		end := start + 1 + r.Intn(n-start)
		lt.Spans = append(lt.Spans, Span{Start: start, End: end, Tag: AllTags()[r.Intn(4)]})
	}
	lt.Bullets = make([]bool, lt.LineCount())
	for i := range lt.Bullets {
		lt.Bullets[i] = r.Intn(2) == 0
	}
	return lt
}

func TestLiveTextRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		lt := randomLiveText(r)

		doc := Serialize(lt)
		require.NoError(t, doc.Validate(), "iteration %d", i)

		back := Deserialize(doc)
		require.Equal(t, lt.Text, back.Text, "iteration %d", i)

		runes := []rune(lt.Text)
		for off, ch := range runes {
			if ch == '\n' {
				continue
			}
			require.Equal(t, lt.TagsAt(off), back.TagsAt(off), "iteration %d offset %d", i, off)
		}
		for line := 0; line < lt.LineCount(); line++ {
			require.Equal(t, lt.IsBullet(line), back.IsBullet(line), "iteration %d line %d", i, line)
		}

		again := Serialize(back)
		require.True(t, doc.Equal(again), "iteration %d", i)
		require.True(t, doc.Equal(Decode(Marshal(doc))), "iteration %d", i)
	}
}
