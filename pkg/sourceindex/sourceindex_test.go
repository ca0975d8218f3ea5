package sourceindex

import (
	"testing"

	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

func TestScanFullOnAllValidMask(t *testing.T) {
	m := mask.New(5, 5)
	idx := New(1)
	idx.ScanFull(m)

	// Every pixel whose radius-1 patch fits fully inside the 5x5 bounds
	// qualifies: rows/cols 1..3, so a 3x3 grid of centres.
	if idx.Len() != 9 {
		t.Fatalf("expected 9 fully-valid radius-1 patches in a 5x5 all-VALID mask, got %d", idx.Len())
	}
}

func TestScanFullExcludesHolePatches(t *testing.T) {
	m := mask.New(5, 5)
	m.SetHole(raster.Index{Row: 2, Col: 2})
	idx := New(1)
	idx.ScanFull(m)

	for _, r := range idx.Regions() {
		if r.Contains(raster.Index{Row: 2, Col: 2}) {
			t.Fatalf("expected no indexed patch to cover the HOLE pixel, got region %+v", r)
		}
	}
}

func TestScanRegionAddsNewlyValidPatches(t *testing.T) {
	m := mask.New(5, 5)
	m.SetHole(raster.Index{Row: 2, Col: 2})
	idx := New(1)
	idx.ScanFull(m)
	before := idx.Len()

	m.SetValid(raster.Index{Row: 2, Col: 2})
	idx.ScanRegion(m, raster.RegionInRadius(raster.Index{Row: 2, Col: 2}, 1).GrowBy(1))

	if idx.Len() <= before {
		t.Fatalf("expected ScanRegion to discover new fully-valid patches after a HOLE pixel was filled, before=%d after=%d", before, idx.Len())
	}
}

func TestScanRegionIsIdempotent(t *testing.T) {
	m := mask.New(5, 5)
	idx := New(1)
	idx.ScanFull(m)
	first := idx.Len()

	idx.ScanRegion(m, m.Bounds())
	if idx.Len() != first {
		t.Fatalf("expected re-scanning an already-indexed region to add nothing new, before=%d after=%d", first, idx.Len())
	}
}

func TestScanRegionOutOfBoundsDoesNotPanic(t *testing.T) {
	m := mask.New(3, 3)
	idx := New(1)
	idx.ScanRegion(m, raster.Region{Origin: raster.Index{Row: -5, Col: -5}, W: 20, H: 20})
	if idx.Len() != 1 {
		t.Fatalf("expected exactly the single centre patch to qualify in a 3x3 mask at radius 1, got %d", idx.Len())
	}
}
