// ABOUTME: The fixed palette of note colors.
// ABOUTME: Parses user input into a palette entry and exposes display hex values.

package models

import (
	"errors"
	"fmt"
	"strings"
)

type Color string

const (
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Green  Color = "green"
	Pink   Color = "pink"
	Orange Color = "orange"
	Purple Color = "purple"
	Red    Color = "red"
	Teal   Color = "teal"
)

const DefaultColor = Yellow

var ErrUnknownColor = errors.New("unknown color")

var palette = []Color{Yellow, Blue, Green, Pink, Orange, Purple, Red, Teal}

var hexes = map[Color]string{
	Yellow: "#FFF9C4",
	Blue:   "#BBDEFB",
	Green:  "#C8E6C9",
	Pink:   "#F8BBD0",
	Orange: "#FFE0B2",
	Purple: "#E1BEE7",
	Red:    "#FFCDD2",
	Teal:   "#B2DFDB",
}

// Colors returns the palette in display order.
func Colors() []Color {
	return append([]Color(nil), palette...)
}

func (c Color) Valid() bool {
	_, ok := hexes[c]
	return ok
}

// Hex is the light background color used when displaying the note.
func (c Color) Hex() string {
	return hexes[c]
}

func (c Color) String() string {
	return string(c)
}

// ParseColor accepts a palette name in any case. An empty string yields the
// default color.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultColor, nil
	}
	c := Color(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q (choose from %s)", ErrUnknownColor, s, ColorNames())
	}
	return c, nil
}

// ColorNames lists the palette as a comma-separated string.
func ColorNames() string {
	names := make([]string, len(palette))
	for i, c := range palette {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
