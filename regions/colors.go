package regions

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// paletteNames are high-contrast named colors, tried in order.
var paletteNames = []string{
	"red", "lime", "blue", "yellow", "cyan", "magenta", "orange", "purple",
	"teal", "pink", "gold", "navy", "maroon", "olive", "green", "coral",
	"orchid", "turquoise", "salmon", "slateblue", "chocolate", "skyblue",
	"khaki", "crimson", "darkorange", "springgreen", "indigo", "tan",
}

func palette() []color.RGBA {
	out := make([]color.RGBA, 0, len(paletteNames))
	for _, name := range paletteNames {
		if c, ok := colornames.Map[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// AssignColors gives every region a color that none of its neighbors has.
// Colors are presentation only; the palette is tried in order and, when the
// neighbors already use all of it, a derived color is generated.
func AssignColors(d *Data) {
	pal := palette()
	assigned := make(map[int]bool, len(d.Regions))
	for _, r := range d.Regions {
		used := make(map[color.RGBA]bool)
		for _, n := range r.Neighbors {
			if assigned[n.RegionID] {
				used[d.Regions[n.RegionID].Color] = true
			}
		}
		r.Color = pick(pal, used, r.ID)
		assigned[r.ID] = true
	}
}

func pick(pal []color.RGBA, used map[color.RGBA]bool, seed int) color.RGBA {
	for _, c := range pal {
		if !used[c] {
			return c
		}
	}
	for i := 0; ; i++ {
		h := uint32(seed*2654435761) + uint32(i)*40503
		c := color.RGBA{R: uint8(h), G: uint8(h >> 8), B: uint8(h >> 16), A: 255}
		if !used[c] {
			return c
		}
	}
}
