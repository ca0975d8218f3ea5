// Package mask implements the tri-valued per-pixel hole/valid/ignored
// status grid (spec §4.C) and the region queries the rest of the engine
// builds on.
package mask

import (
	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// Status is the per-pixel classification. HOLE/VALID partition the
// working domain; IGNORED pixels (e.g. a padded border) sit outside any
// computation.
type Status byte

const (
	Valid Status = iota
	Hole
	Ignored
)

// Mask wraps a byte field whose values are Status constants.
type Mask struct {
	grid *field.Byte
}

// New allocates a mask of the given size, every pixel VALID.
func New(w, h int) *Mask {
	g := field.NewByte(w, h)
	for i := range g.Pix {
		g.Pix[i] = byte(Valid)
	}
	return &Mask{grid: g}
}

// FromStatusBytes builds a mask from a raw byte grid, where 0 = HOLE and
// 255 = VALID; anything strictly between is IGNORED. raw is translated
// into a newly allocated grid and is not retained.
func FromStatusBytes(w, h int, raw []byte) *Mask {
	g := &field.Byte{W: w, H: h, Pix: make([]byte, len(raw))}
	for i, b := range raw {
		switch {
		case b == 0:
			g.Pix[i] = byte(Hole)
		case b == 255:
			g.Pix[i] = byte(Valid)
		default:
			g.Pix[i] = byte(Ignored)
		}
	}
	return &Mask{grid: g}
}

// Bounds returns the region covering the whole mask.
func (m *Mask) Bounds() raster.Region { return m.grid.Bounds() }

// Width and Height of the mask.
func (m *Mask) Width() int  { return m.grid.W }
func (m *Mask) Height() int { return m.grid.H }

// StatusAt returns the raw status at idx.
func (m *Mask) StatusAt(idx raster.Index) Status { return Status(m.grid.At(idx)) }

// IsHole reports whether idx is HOLE.
func (m *Mask) IsHole(idx raster.Index) bool { return m.StatusAt(idx) == Hole }

// IsValid reports whether idx is VALID.
func (m *Mask) IsValid(idx raster.Index) bool { return m.StatusAt(idx) == Valid }

// SetHole transitions idx to HOLE. Used only at construction time (from
// the input mask); the running algorithm only ever moves HOLE -> VALID.
func (m *Mask) SetHole(idx raster.Index) { m.grid.Set(idx, byte(Hole)) }

// SetValid transitions idx from HOLE to VALID. There is no reverse
// transition once the engine starts stepping.
func (m *Mask) SetValid(idx raster.Index) { m.grid.Set(idx, byte(Valid)) }

// SetIgnored marks idx as outside any computation.
func (m *Mask) SetIgnored(idx raster.Index) { m.grid.Set(idx, byte(Ignored)) }

// IsValidRegion reports whether every pixel of r lies inside the mask's
// bounds and is VALID.
func (m *Mask) IsValidRegion(r raster.Region) bool {
	bounds := m.Bounds()
	if r.Origin.Row < bounds.Origin.Row || r.Origin.Col < bounds.Origin.Col ||
		r.Origin.Row+r.H > bounds.H || r.Origin.Col+r.W > bounds.W {
		return false
	}
	for dr := 0; dr < r.H; dr++ {
		row := r.Origin.Row + dr
		for dc := 0; dc < r.W; dc++ {
			if !m.IsValid(raster.Index{Row: row, Col: r.Origin.Col + dc}) {
				return false
			}
		}
	}
	return true
}

// HoleCount returns the number of HOLE pixels in the mask.
func (m *Mask) HoleCount() int {
	n := 0
	for _, b := range m.grid.Pix {
		if Status(b) == Hole {
			n++
		}
	}
	return n
}

// ValidPixelsIn returns every VALID index inside r (cropped to bounds),
// in row-major order.
func (m *Mask) ValidPixelsIn(r raster.Region) []raster.Index {
	r = r.Crop(m.Bounds())
	out := make([]raster.Index, 0, r.W*r.H)
	for dr := 0; dr < r.H; dr++ {
		row := r.Origin.Row + dr
		for dc := 0; dc < r.W; dc++ {
			idx := raster.Index{Row: row, Col: r.Origin.Col + dc}
			if m.IsValid(idx) {
				out = append(out, idx)
			}
		}
	}
	return out
}

// HoleOffsetsIn returns, for every HOLE pixel inside r, its offset
// relative to r.Origin. The offsets are not cropped to r — a region that
// extends outside the mask's bounds simply never finds a HOLE pixel
// there (out-of-bounds reads are skipped, not faulted).
func (m *Mask) HoleOffsetsIn(r raster.Region) []raster.Offset {
	bounds := m.Bounds()
	out := make([]raster.Offset, 0, r.W*r.H)
	for dr := 0; dr < r.H; dr++ {
		row := r.Origin.Row + dr
		if row < bounds.Origin.Row || row >= bounds.H {
			continue
		}
		for dc := 0; dc < r.W; dc++ {
			col := r.Origin.Col + dc
			if col < bounds.Origin.Col || col >= bounds.W {
				continue
			}
			idx := raster.Index{Row: row, Col: col}
			if m.IsHole(idx) {
				out = append(out, raster.Offset{DRow: dr, DCol: dc})
			}
		}
	}
	return out
}

// HoleOffsetsInverse returns, for every VALID pixel inside r, its offset
// relative to r.Origin. This is the support a DifferenceFunc measures
// over: the target pixel must already be known for the comparison to
// mean anything (spec §4.H).
func (m *Mask) HoleOffsetsInverse(r raster.Region) []raster.Offset {
	bounds := m.Bounds()
	out := make([]raster.Offset, 0, r.W*r.H)
	for dr := 0; dr < r.H; dr++ {
		row := r.Origin.Row + dr
		if row < bounds.Origin.Row || row >= bounds.H {
			continue
		}
		for dc := 0; dc < r.W; dc++ {
			col := r.Origin.Col + dc
			if col < bounds.Origin.Col || col >= bounds.W {
				continue
			}
			idx := raster.Index{Row: row, Col: col}
			if m.IsValid(idx) {
				out = append(out, raster.Offset{DRow: dr, DCol: dc})
			}
		}
	}
	return out
}

// HasHoleNeighbor8 reports whether any of idx's 8-neighbours (that lie
// within bounds) is HOLE.
func (m *Mask) HasHoleNeighbor8(idx raster.Index) bool {
	for _, n := range raster.EightNeighbors(idx) {
		if n.Row < 0 || n.Row >= m.Height() || n.Col < 0 || n.Col >= m.Width() {
			continue
		}
		if m.IsHole(n) {
			return true
		}
	}
	return false
}
