package mask

import (
	"testing"

	"github.com/Fepozopo/inpaint/pkg/raster"
)

func TestNewIsAllValid(t *testing.T) {
	m := New(3, 3)
	if m.HoleCount() != 0 {
		t.Fatalf("expected a fresh mask to have no holes, got %d", m.HoleCount())
	}
	if !m.IsValid(raster.Index{Row: 1, Col: 1}) {
		t.Fatal("expected every pixel of a fresh mask to be VALID")
	}
}

func TestFromStatusBytesWireConvention(t *testing.T) {
	// 0 = HOLE, 255 = VALID, anything else = IGNORED.
	raw := []byte{0, 255, 128, 255}
	m := FromStatusBytes(2, 2, raw)
	if !m.IsHole(raster.Index{Row: 0, Col: 0}) {
		t.Fatal("expected 0 to decode as HOLE")
	}
	if !m.IsValid(raster.Index{Row: 0, Col: 1}) {
		t.Fatal("expected 255 to decode as VALID")
	}
	if m.StatusAt(raster.Index{Row: 1, Col: 0}) != Ignored {
		t.Fatal("expected 128 to decode as IGNORED")
	}
}

func TestSetHoleThenSetValid(t *testing.T) {
	m := New(3, 3)
	idx := raster.Index{Row: 1, Col: 1}
	m.SetHole(idx)
	if !m.IsHole(idx) {
		t.Fatal("expected SetHole to transition the pixel to HOLE")
	}
	if m.HoleCount() != 1 {
		t.Fatalf("expected exactly one hole pixel, got %d", m.HoleCount())
	}
	m.SetValid(idx)
	if !m.IsValid(idx) {
		t.Fatal("expected SetValid to transition the pixel back to VALID")
	}
	if m.HoleCount() != 0 {
		t.Fatalf("expected zero holes after SetValid, got %d", m.HoleCount())
	}
}

func TestIsValidRegion(t *testing.T) {
	m := New(5, 5)
	r := raster.Region{Origin: raster.Index{Row: 1, Col: 1}, W: 2, H: 2}
	if !m.IsValidRegion(r) {
		t.Fatal("expected an all-VALID region to report valid")
	}
	m.SetHole(raster.Index{Row: 1, Col: 1})
	if m.IsValidRegion(r) {
		t.Fatal("expected a region containing a HOLE pixel to report invalid")
	}

	outOfBounds := raster.Region{Origin: raster.Index{Row: 4, Col: 4}, W: 2, H: 2}
	if m.IsValidRegion(outOfBounds) {
		t.Fatal("expected a region extending past the mask bounds to report invalid")
	}
}

func TestValidPixelsIn(t *testing.T) {
	m := New(4, 4)
	m.SetHole(raster.Index{Row: 1, Col: 1})
	r := raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 2, H: 2}
	valid := m.ValidPixelsIn(r)
	if len(valid) != 3 {
		t.Fatalf("expected 3 of the 4 pixels to be VALID, got %d", len(valid))
	}
	for _, idx := range valid {
		if idx == (raster.Index{Row: 1, Col: 1}) {
			t.Fatal("the HOLE pixel must not appear in ValidPixelsIn")
		}
	}
}

func TestHoleOffsetsInAndInverse(t *testing.T) {
	m := New(4, 4)
	m.SetHole(raster.Index{Row: 1, Col: 1})
	r := raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 2, H: 2}

	holes := m.HoleOffsetsIn(r)
	if len(holes) != 1 || holes[0] != (raster.Offset{DRow: 1, DCol: 1}) {
		t.Fatalf("expected exactly the offset (1,1) to be the hole, got %v", holes)
	}

	valid := m.HoleOffsetsInverse(r)
	if len(valid) != 3 {
		t.Fatalf("expected 3 valid offsets in a 2x2 region with 1 hole, got %d", len(valid))
	}
}

func TestHoleOffsetsOutOfBoundsRegionDoesNotPanic(t *testing.T) {
	m := New(2, 2)
	r := raster.Region{Origin: raster.Index{Row: -1, Col: -1}, W: 4, H: 4}
	holes := m.HoleOffsetsIn(r)
	if len(holes) != 0 {
		t.Fatalf("expected no holes on an all-VALID mask, got %d", len(holes))
	}
}

func TestHasHoleNeighbor8(t *testing.T) {
	m := New(3, 3)
	center := raster.Index{Row: 1, Col: 1}
	if m.HasHoleNeighbor8(center) {
		t.Fatal("expected no hole neighbors on an all-VALID mask")
	}
	m.SetHole(raster.Index{Row: 0, Col: 0})
	if !m.HasHoleNeighbor8(center) {
		t.Fatal("expected the diagonal HOLE neighbor to be detected")
	}
	// A pixel at the mask's edge must not panic when checking off-grid neighbors.
	corner := raster.Index{Row: 0, Col: 2}
	_ = m.HasHoleNeighbor8(corner)
}
