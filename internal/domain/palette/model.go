package palette

import (
	"fmt"
	"image/color"
)

// Color is one selectable label color.
type Color struct {
	Name string   `json:"name"`
	RGB  [3]uint8 `json:"rgb"`
	Hex  string   `json:"hex"`
}

// RGBA returns the color as an opaque image/color value.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.RGB[0], G: c.RGB[1], B: c.RGB[2], A: 255}
}

// HexOf formats an RGB triple as "#RRGGBB" with uppercase digits.
func HexOf(rgb [3]uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2])
}
