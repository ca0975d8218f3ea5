// Package sourceindex maintains the growable set of fully-VALID square
// patches eligible as copy sources. Because the mask only ever
// transitions HOLE -> VALID, a patch that is fully valid stays fully
// valid forever — additions are monotone and the index never needs to
// invalidate an entry. An append-only slice is therefore sufficient;
// no free-list or removal path exists.
package sourceindex

import (
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// Index is the arena of fully-VALID patch regions discovered so far.
type Index struct {
	radius  int
	regions []raster.Region
	known   map[raster.Index]bool // centre -> already indexed
}

// New creates an empty index for patches of the given half-width radius.
func New(radius int) *Index {
	return &Index{radius: radius, known: make(map[raster.Index]bool)}
}

// Len returns the number of indexed source patches.
func (idx *Index) Len() int { return len(idx.regions) }

// Regions returns the indexed patch regions. The returned slice shares
// the index's backing array and must not be mutated by the caller.
func (idx *Index) Regions() []raster.Region { return idx.regions }

// ScanFull seeds the index by testing every pixel of m as a prospective
// patch centre, used once at engine init.
func (idx *Index) ScanFull(m *mask.Mask) {
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			idx.tryAdd(m, raster.Index{Row: row, Col: col})
		}
	}
}

// ScanRegion rescans every centre inside region (already grown by the
// patch radius by the caller per spec §4.J step 8) and adds any
// newly-fully-valid patch not already indexed.
func (idx *Index) ScanRegion(m *mask.Mask, region raster.Region) {
	region = region.Crop(m.Bounds())
	for dr := 0; dr < region.H; dr++ {
		row := region.Origin.Row + dr
		for dc := 0; dc < region.W; dc++ {
			idx.tryAdd(m, raster.Index{Row: row, Col: region.Origin.Col + dc})
		}
	}
}

func (idx *Index) tryAdd(m *mask.Mask, center raster.Index) {
	if idx.known[center] {
		return
	}
	region := raster.RegionInRadius(center, idx.radius)
	if !m.IsValidRegion(region) {
		return
	}
	idx.known[center] = true
	idx.regions = append(idx.regions, region)
}
