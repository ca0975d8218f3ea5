// Package raster provides the 2-D index, offset, region, and vector
// primitives shared by every grid in the inpainting engine.
package raster

import "math"

// Index addresses a single pixel. Row is the Y axis, Col is the X axis,
// with the origin at the top-left corner of the image.
type Index struct {
	Row, Col int
}

// Add returns the index shifted by the given offset.
func (i Index) Add(o Offset) Index {
	return Index{Row: i.Row + o.DRow, Col: i.Col + o.DCol}
}

// Offset is a signed displacement between two indices.
type Offset struct {
	DRow, DCol int
}

// Region is an axis-aligned rectangle described by its top-left origin
// and its width/height in pixels.
type Region struct {
	Origin Index
	W, H   int
}

// RegionInRadius returns the (2r+1)x(2r+1) square centred on center. The
// region may extend outside any particular image's bounds; callers crop
// with Region.Crop when they need an in-bounds view.
func RegionInRadius(center Index, r int) Region {
	return Region{
		Origin: Index{Row: center.Row - r, Col: center.Col - r},
		W:      2*r + 1,
		H:      2*r + 1,
	}
}

// Center returns the pixel at the middle of the region. Only meaningful
// for odd-sized regions such as those produced by RegionInRadius.
func (r Region) Center() Index {
	return Index{Row: r.Origin.Row + r.H/2, Col: r.Origin.Col + r.W/2}
}

// Contains reports whether idx falls inside the region.
func (r Region) Contains(idx Index) bool {
	return idx.Row >= r.Origin.Row && idx.Row < r.Origin.Row+r.H &&
		idx.Col >= r.Origin.Col && idx.Col < r.Origin.Col+r.W
}

// Crop intersects r with bounds (a region whose Origin is typically
// {0,0} and W/H are the image dimensions), returning the overlap. If
// the regions do not overlap the result has W<=0 or H<=0.
func (r Region) Crop(bounds Region) Region {
	minRow := max(r.Origin.Row, bounds.Origin.Row)
	minCol := max(r.Origin.Col, bounds.Origin.Col)
	maxRow := min(r.Origin.Row+r.H, bounds.Origin.Row+bounds.H)
	maxCol := min(r.Origin.Col+r.W, bounds.Origin.Col+bounds.W)
	return Region{
		Origin: Index{Row: minRow, Col: minCol},
		W:      maxCol - minCol,
		H:      maxRow - minRow,
	}
}

// Empty reports whether the region has no pixels.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// GrowBy returns the region expanded by n pixels on every side.
func (r Region) GrowBy(n int) Region {
	return Region{
		Origin: Index{Row: r.Origin.Row - n, Col: r.Origin.Col - n},
		W:      r.W + 2*n,
		H:      r.H + 2*n,
	}
}

// Offsets yields every offset relative to r.Origin, in row-major order.
func (r Region) Offsets(yield func(Offset)) {
	for dr := 0; dr < r.H; dr++ {
		for dc := 0; dc < r.W; dc++ {
			yield(Offset{DRow: dr, DCol: dc})
		}
	}
}

// Vec2 is a 2-D floating point vector, (row, col) order to match Index.
type Vec2 struct {
	Row, Col float64
}

// Add returns u+v.
func (u Vec2) Add(v Vec2) Vec2 { return Vec2{Row: u.Row + v.Row, Col: u.Col + v.Col} }

// Sub returns u-v.
func (u Vec2) Sub(v Vec2) Vec2 { return Vec2{Row: u.Row - v.Row, Col: u.Col - v.Col} }

// Scale returns u scaled by s.
func (u Vec2) Scale(s float64) Vec2 { return Vec2{Row: u.Row * s, Col: u.Col * s} }

// Dot returns the dot product of u and v.
func (u Vec2) Dot(v Vec2) float64 { return u.Row*v.Row + u.Col*v.Col }

// Length returns the Euclidean norm of u.
func (u Vec2) Length() float64 { return math.Sqrt(u.Dot(u)) }

// Normalize returns u/|u|. The zero vector is returned unchanged since it
// has no well-defined direction; callers must check IsZero first when
// that distinction matters.
func (u Vec2) Normalize() Vec2 {
	l := u.Length()
	if l == 0 {
		return u
	}
	return u.Scale(1 / l)
}

// IsZero reports whether u is exactly the zero vector.
func (u Vec2) IsZero() bool { return u.Row == 0 && u.Col == 0 }

// Rotate90 rotates u by +90 degrees: (row, col) -> (col, -row). This is
// the operator the isophote field applies to the luminance gradient.
func (u Vec2) Rotate90() Vec2 { return Vec2{Row: u.Col, Col: -u.Row} }

// AngleBetween returns the absolute angle between u and v, in [0, pi].
// The zero vector is treated as orthogonal to everything (angle pi/2),
// since neither direction is privileged.
func AngleBetween(u, v Vec2) float64 {
	lu, lv := u.Length(), v.Length()
	if lu == 0 || lv == 0 {
		return math.Pi / 2
	}
	cos := u.Dot(v) / (lu * lv)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// eightNeighborOffsets lists the 8-neighbourhood in a fixed order used to
// break ties lexicographically on (DRow, DCol).
var eightNeighborOffsets = []Offset{
	{DRow: -1, DCol: -1}, {DRow: -1, DCol: 0}, {DRow: -1, DCol: 1},
	{DRow: 0, DCol: -1}, {DRow: 0, DCol: 1},
	{DRow: 1, DCol: -1}, {DRow: 1, DCol: 0}, {DRow: 1, DCol: 1},
}

// EightNeighbors returns p's eight neighbouring indices in the same fixed
// lexicographic order used by NextPixelAlong.
func EightNeighbors(p Index) []Index {
	out := make([]Index, len(eightNeighborOffsets))
	for i, o := range eightNeighborOffsets {
		out[i] = p.Add(o)
	}
	return out
}

// NextPixelAlong returns the 8-neighbour of p whose unit direction is
// closest to v's direction, ties broken lexicographically on (DRow, DCol).
// v must be non-zero; callers stepping along an undefined direction
// should special-case IsZero first.
func NextPixelAlong(p Index, v Vec2) Index {
	dir := v.Normalize()
	best := eightNeighborOffsets[0]
	bestDot := math.Inf(-1)
	for _, o := range eightNeighborOffsets {
		cand := Vec2{Row: float64(o.DRow), Col: float64(o.DCol)}.Normalize()
		d := dir.Dot(cand)
		if d > bestDot {
			bestDot = d
			best = o
		}
	}
	return p.Add(best)
}

