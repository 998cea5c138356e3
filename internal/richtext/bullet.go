// ABOUTME: Bullet-list editing: toggling the bullet on a line and continuing lists.
// ABOUTME: A bullet line starts with the glyph and carries the line's bullet flag.

package richtext

import (
	"strings"
	"unicode/utf8"
)

// BulletGlyph is inserted at the start of every bullet line.
const BulletGlyph = "• "

var glyphLen = utf8.RuneCountInString(BulletGlyph)

func lineText(lt LiveText, start, end int) string {
	runes := []rune(lt.Text)
	return string(runes[start:end])
}

// ToggleBullet flips the bullet state of the line containing cursor. Turning a
// bullet off removes a leading glyph if present; turning it on inserts the
// glyph at the line start. The input is not modified.
func ToggleBullet(lt LiveText, cursor int) LiveText {
	line, start, end := lt.lineBounds(cursor)
	if lt.IsBullet(line) {
		out := lt.Clone()
		if strings.HasPrefix(lineText(lt, start, end), BulletGlyph) {
			out = out.remove(start, start+glyphLen)
		}
		out.setBullet(line, false)
		return out
	}
	out := lt.insert(start, BulletGlyph)
	out.setBullet(line, true)
	return out
}

// BreakLine handles Enter at cursor. On a bullet line it starts a new bullet
// line and returns the new cursor with handled=true; on a bullet line holding
// nothing but the glyph it ends the list instead. On any other line it returns
// lt unchanged with handled=false so the caller inserts a plain newline.
func BreakLine(lt LiveText, cursor int) (out LiveText, newCursor int, handled bool) {
	line, start, end := lt.lineBounds(cursor)
	if !lt.IsBullet(line) {
		return lt, cursor, false
	}
	if strings.TrimSpace(lineText(lt, start, end)) == strings.TrimSpace(BulletGlyph) {
		out = lt.remove(start, end)
		out.setBullet(line, false)
		return out, start, true
	}
	cursor = min(max(cursor, 0), lt.Len())
	out = lt.insert(cursor, "\n"+BulletGlyph)
	out.setBullet(line+1, true)
	return out, cursor + 1 + glyphLen, true
}
