// Package regions decomposes walkable terrain into tactical regions (open
// areas, ramps, expansion sites), links them into an adjacency graph with
// per-side frontiers, and tracks which ramps are currently obstructed.
package regions

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/expand"
	"github.com/nstehr/vimy/vimy-terrain/model"
)

// SchemaVersion is written into every persisted document. Bump it whenever the
// JSON layout of Data changes so stale cached maps are rebuilt.
const SchemaVersion = 1

type RegionType int

const (
	// Unknown is only used for partition candidates that have not been typed yet.
	Unknown RegionType = iota
	OpenArea
	Ramp
	Expand
)

var regionTypeNames = [...]string{"Unknown", "OpenArea", "Ramp", "Expand"}

func (t RegionType) String() string {
	if t < 0 || int(t) >= len(regionTypeNames) {
		return fmt.Sprintf("RegionType(%d)", int(t))
	}
	return regionTypeNames[t]
}

func (t RegionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RegionType) UnmarshalText(b []byte) error {
	i := slices.Index(regionTypeNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("unknown region type %q", b)
	}
	*t = RegionType(i)
	return nil
}

// NeighboringRegion is a directed edge. Frontier holds the cells of the owning
// region that touch the neighbor; the neighbor's edge back has its own frontier.
type NeighboringRegion struct {
	RegionID int          `json:"regionId"`
	Frontier []model.Cell `json:"frontier"`
}

// Region is one node of the graph. Everything except IsObstructed, Color and
// the runtime ExpandLocation binding is fixed once the region is built.
type Region struct {
	ID                 int                 `json:"id"`
	Type               RegionType          `json:"type"`
	Cells              []model.Cell        `json:"cells"`
	Center             model.Cell          `json:"center"`
	ApproximatedRadius float64             `json:"approximatedRadius"`
	Neighbors          []NeighboringRegion `json:"neighbors"`
	ExpandPosition     *model.Cell         `json:"expandPosition,omitempty"`
	Color              color.RGBA          `json:"color"`

	IsObstructed   bool             `json:"-"`
	ExpandLocation *expand.Location `json:"-"`

	cellSet mapset.Set[model.Cell]
	indexed bool
}

// ApproximateRadius estimates a region's radius from its cell count alone,
// treating it as a square and inflating slightly for large regions.
// Shape is ignored, so this is an estimate, never a bound.
func ApproximateRadius(cellCount int) float64 {
	return math.Pow(math.Sqrt(2*float64(cellCount))/2, 1.05)
}

func newRegion(id int, cells []model.Cell, t RegionType) *Region {
	cells = slices.Clone(cells)
	model.SortCells(cells)
	cx, cy := model.Centroid(cells)
	center, _ := model.Nearest(cells, cx, cy)
	return &Region{
		ID:                 id,
		Type:               t,
		Cells:              cells,
		Center:             center,
		ApproximatedRadius: ApproximateRadius(len(cells)),
	}
}

// Contains reports whether c is one of the region's cells.
func (r *Region) Contains(c model.Cell) bool {
	if !r.indexed {
		r.cellSet = mapset.New[model.Cell]()
		for _, m := range r.Cells {
			r.cellSet.Put(m)
		}
		r.indexed = true
	}
	return r.cellSet.Has(c)
}

// Neighbor returns the edge toward the region with the given id.
func (r *Region) Neighbor(id int) (NeighboringRegion, bool) {
	for _, n := range r.Neighbors {
		if n.RegionID == id {
			return n, true
		}
	}
	return NeighboringRegion{}, false
}

func (r *Region) IsNeighbor(id int) bool {
	_, ok := r.Neighbor(id)
	return ok
}

func (r *Region) NeighborIDs() []int {
	ids := make([]int, len(r.Neighbors))
	for i, n := range r.Neighbors {
		ids[i] = n.RegionID
	}
	return ids
}

// Data is the persisted aggregate for one map: the region arena (Regions[i].ID == i),
// raw ramp cell groups, unclustered noise cells, chokepoints and expansion anchors.
type Data struct {
	SchemaVersion int            `json:"schemaVersion"`
	MapName       string         `json:"mapName"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	Regions       []*Region      `json:"regions"`
	Ramps         [][]model.Cell `json:"ramps"`
	Noise         []model.Cell   `json:"noise"`
	Chokepoints   []model.Cell   `json:"chokepoints"`
	ExpandAnchors []model.Cell   `json:"expandAnchors"`

	index map[model.Cell]int
}

// Region returns the region with the given id.
func (d *Data) Region(id int) (*Region, bool) {
	if id < 0 || id >= len(d.Regions) {
		return nil, false
	}
	return d.Regions[id], true
}

// RegionAt returns the region owning cell c.
func (d *Data) RegionAt(c model.Cell) (*Region, bool) {
	if d.index == nil {
		d.Reindex()
	}
	id, ok := d.index[c]
	if !ok {
		return nil, false
	}
	return d.Regions[id], true
}

// Reindex rebuilds the cell -> region lookup. Needed after decoding.
func (d *Data) Reindex() {
	d.index = make(map[model.Cell]int)
	for _, r := range d.Regions {
		for _, c := range r.Cells {
			d.index[c] = r.ID
		}
	}
}

// OfType lists the regions of one type in id order.
func (d *Data) OfType(t RegionType) []*Region {
	var out []*Region
	for _, r := range d.Regions {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the arena invariants a decoded document must satisfy.
func (d *Data) Validate() error {
	if d.SchemaVersion != SchemaVersion {
		return fmt.Errorf("schema version %d, want %d", d.SchemaVersion, SchemaVersion)
	}
	for i, r := range d.Regions {
		if r == nil || r.ID != i {
			return fmt.Errorf("region at index %d has mismatched id", i)
		}
		for _, n := range r.Neighbors {
			if n.RegionID < 0 || n.RegionID >= len(d.Regions) {
				return fmt.Errorf("region %d references missing neighbor %d", r.ID, n.RegionID)
			}
		}
	}
	return nil
}

// Clone deep-copies the persisted part of d. Runtime state (obstruction flags,
// expand bindings) starts fresh in the copy.
func (d *Data) Clone() *Data {
	out := &Data{
		SchemaVersion: d.SchemaVersion,
		MapName:       d.MapName,
		Width:         d.Width,
		Height:        d.Height,
		Regions:       make([]*Region, len(d.Regions)),
		Ramps:         make([][]model.Cell, len(d.Ramps)),
		Noise:         slices.Clone(d.Noise),
		Chokepoints:   slices.Clone(d.Chokepoints),
		ExpandAnchors: slices.Clone(d.ExpandAnchors),
	}
	for i, ramp := range d.Ramps {
		out.Ramps[i] = slices.Clone(ramp)
	}
	for i, r := range d.Regions {
		c := &Region{
			ID:                 r.ID,
			Type:               r.Type,
			Cells:              slices.Clone(r.Cells),
			Center:             r.Center,
			ApproximatedRadius: r.ApproximatedRadius,
			Neighbors:          make([]NeighboringRegion, len(r.Neighbors)),
			Color:              r.Color,
		}
		for j, n := range r.Neighbors {
			c.Neighbors[j] = NeighboringRegion{RegionID: n.RegionID, Frontier: slices.Clone(n.Frontier)}
		}
		if r.ExpandPosition != nil {
			p := *r.ExpandPosition
			c.ExpandPosition = &p
		}
		out.Regions[i] = c
	}
	return out
}
