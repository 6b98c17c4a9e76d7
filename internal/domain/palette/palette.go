package palette

import (
	"fmt"

	"github.com/rpggio/chromalabel/internal/config"
)

// Palette is the closed, ordered set of colors offered to participants.
// It is built once at startup; hex values are never recomputed.
type Palette struct {
	colors []Color
	byName map[string]int
}

// New builds a palette from configured entries.
func New(entries []config.ColorConfig) (*Palette, error) {
	p := &Palette{
		colors: make([]Color, 0, len(entries)),
		byName: make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("palette entry with empty name")
		}
		if _, dup := p.byName[entry.Name]; dup {
			return nil, fmt.Errorf("duplicate palette color %q", entry.Name)
		}
		var rgb [3]uint8
		for i, v := range entry.RGB {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("palette color %q: channel %d out of range", entry.Name, v)
			}
			rgb[i] = uint8(v)
		}
		p.byName[entry.Name] = len(p.colors)
		p.colors = append(p.colors, Color{Name: entry.Name, RGB: rgb, Hex: HexOf(rgb)})
	}
	return p, nil
}

// Colors returns a copy of the palette in display order.
func (p *Palette) Colors() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Lookup finds a color by name.
func (p *Palette) Lookup(name string) (Color, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Color{}, false
	}
	return p.colors[i], true
}

// Len reports the number of colors.
func (p *Palette) Len() int {
	return len(p.colors)
}
