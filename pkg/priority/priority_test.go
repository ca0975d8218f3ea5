package priority

import (
	"math"
	"testing"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

func TestConfidenceIgnoresNonBoundaryPixels(t *testing.T) {
	conf := field.NewScalar(5, 5)
	conf.Fill(conf.Bounds(), 1.0)
	m := mask.New(5, 5)
	boundaryField := field.NewByte(5, 5)

	out := Confidence(conf, m, boundaryField, 1)
	if v := out.At(raster.Index{Row: 2, Col: 2}); v != 0 {
		t.Fatalf("expected a non-boundary pixel to be left at 0, got %v", v)
	}
}

func TestConfidenceAllValidNeighborhoodIsOne(t *testing.T) {
	conf := field.NewScalar(5, 5)
	conf.Fill(conf.Bounds(), 1.0)
	m := mask.New(5, 5)
	boundaryField := field.NewByte(5, 5)
	center := raster.Index{Row: 2, Col: 2}
	boundaryField.Set(center, 1)

	out := Confidence(conf, m, boundaryField, 1)
	if v := out.At(center); math.Abs(float64(v)-1.0) > 1e-6 {
		t.Fatalf("expected confidence 1.0 when the whole patch is VALID with mass 1, got %v", v)
	}
}

func TestConfidencePartialHoleNeighborhood(t *testing.T) {
	conf := field.NewScalar(3, 3)
	conf.Fill(conf.Bounds(), 1.0)
	m := mask.New(3, 3)
	center := raster.Index{Row: 1, Col: 1}
	// Zero out the confidence mass contributed by the top row (a third) of
	// the 3x3 patch by
	// marking those pixels HOLE instead: HOLE pixels don't contribute to
	// the sum, but still count toward the fixed (2r+1)^2 denominator.
	for _, idx := range []raster.Index{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}} {
		m.SetHole(idx)
	}
	boundaryField := field.NewByte(3, 3)
	boundaryField.Set(center, 1)

	out := Confidence(conf, m, boundaryField, 1)
	v := out.At(center)
	if v <= 0 || v >= 1 {
		t.Fatalf("expected a partially-valid neighborhood to score strictly between 0 and 1, got %v", v)
	}
}

func TestDataIsAbsoluteDotProductOverNorm(t *testing.T) {
	iso := field.NewVector(3, 3)
	normals := field.NewVector(3, 3)
	center := raster.Index{Row: 1, Col: 1}
	iso.Set(center, raster.Vec2{Row: 255, Col: 0})
	normals.Set(center, raster.Vec2{Row: 1, Col: 0})
	boundaryField := field.NewByte(3, 3)
	boundaryField.Set(center, 1)

	out := Data(iso, normals, boundaryField)
	if v := out.At(center); math.Abs(float64(v)-1.0) > 1e-6 {
		t.Fatalf("expected |(255,0).(1,0)|/255 == 1.0, got %v", v)
	}
}

func TestDataIgnoresNonBoundaryPixels(t *testing.T) {
	iso := field.NewVector(3, 3)
	normals := field.NewVector(3, 3)
	iso.Set(raster.Index{Row: 1, Col: 1}, raster.Vec2{Row: 255, Col: 0})
	normals.Set(raster.Index{Row: 1, Col: 1}, raster.Vec2{Row: 1, Col: 0})
	boundaryField := field.NewByte(3, 3)

	out := Data(iso, normals, boundaryField)
	if v := out.At(raster.Index{Row: 1, Col: 1}); v != 0 {
		t.Fatalf("expected a non-boundary pixel's data term to stay 0, got %v", v)
	}
}

func TestProductMultipliesOnlyAtBoundary(t *testing.T) {
	conf := field.NewScalar(3, 3)
	conf.Fill(conf.Bounds(), 0.5)
	data := field.NewScalar(3, 3)
	data.Fill(data.Bounds(), 0.4)
	boundaryField := field.NewByte(3, 3)
	center := raster.Index{Row: 1, Col: 1}
	boundaryField.Set(center, 1)

	out := Product(conf, data, boundaryField)
	if v := out.At(center); math.Abs(float64(v)-0.2) > 1e-6 {
		t.Fatalf("expected 0.5*0.4 == 0.2 at the boundary pixel, got %v", v)
	}
	if v := out.At(raster.Index{Row: 0, Col: 0}); v != 0 {
		t.Fatalf("expected non-boundary pixels to remain 0, got %v", v)
	}
}

func TestTopKTargetsPicksHighestFirst(t *testing.T) {
	priorities := field.NewScalar(5, 5)
	boundaryField := field.NewByte(5, 5)
	for _, idx := range []raster.Index{{Row: 0, Col: 0}, {Row: 4, Col: 4}} {
		boundaryField.Set(idx, 1)
	}
	priorities.Set(raster.Index{Row: 0, Col: 0}, 0.1)
	priorities.Set(raster.Index{Row: 4, Col: 4}, 0.9)

	picks := TopKTargets(priorities, boundaryField, 1, 0)
	if len(picks) != 1 || picks[0] != (raster.Index{Row: 4, Col: 4}) {
		t.Fatalf("expected the single highest-priority pixel to be picked, got %v", picks)
	}
}

func TestTopKTargetsEnforcesSeparation(t *testing.T) {
	priorities := field.NewScalar(9, 9)
	boundaryField := field.NewByte(9, 9)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			boundaryField.Set(raster.Index{Row: row, Col: col}, 1)
			priorities.Set(raster.Index{Row: row, Col: col}, 0.5)
		}
	}
	picks := TopKTargets(priorities, boundaryField, 3, 1)
	if len(picks) != 3 {
		t.Fatalf("expected 3 picks from a large uniform boundary, got %d: %v", len(picks), picks)
	}
	for i := 0; i < len(picks); i++ {
		for j := i + 1; j < len(picks); j++ {
			dr := picks[i].Row - picks[j].Row
			dc := picks[i].Col - picks[j].Col
			if dr > -2 && dr < 2 && dc > -2 && dc < 2 {
				t.Fatalf("expected picks to be separated by more than the suppression radius, got %v and %v", picks[i], picks[j])
			}
		}
	}
}

func TestTopKTargetsStopsOnEmptyBoundary(t *testing.T) {
	priorities := field.NewScalar(3, 3)
	boundaryField := field.NewByte(3, 3)
	picks := TopKTargets(priorities, boundaryField, 5, 0)
	if len(picks) != 0 {
		t.Fatalf("expected no picks when the boundary is empty, got %v", picks)
	}
}

// TestTopKTargetsTrustsBoundaryFieldLiterally documents the
// priority/mask desync scenario (spec §4.J step 3, §8 scenario 6): a
// stub priority strategy could hand TopKTargets a BoundaryMask claiming
// a pixel is boundary-adjacent when the real Mask disagrees. TopKTargets
// has no way to detect that on its own — it trusts the BoundaryMask it
// is given, which is exactly why Engine.Step separately asserts
// mask.HasHoleNeighbor8 against the live Mask before ranking sources.
func TestTopKTargetsTrustsBoundaryFieldLiterally(t *testing.T) {
	m := mask.New(5, 5)
	isolated := raster.Index{Row: 2, Col: 2}
	// No hole anywhere: isolated has no HOLE 8-neighbour.
	if m.HasHoleNeighbor8(isolated) {
		t.Fatal("test setup: isolated must have no HOLE neighbour")
	}

	priorities := field.NewScalar(5, 5)
	priorities.Set(isolated, 1.0)
	desyncedBoundary := field.NewByte(5, 5)
	desyncedBoundary.Set(isolated, 1) // a buggy strategy's claim, not derived from m

	picks := TopKTargets(priorities, desyncedBoundary, 1, 0)
	if len(picks) != 1 || picks[0] != isolated {
		t.Fatalf("expected TopKTargets to pick the pixel the (desynced) boundary field names, got %v", picks)
	}
	if m.HasHoleNeighbor8(picks[0]) {
		t.Fatal("expected the real mask to disagree with the desynced boundary field")
	}
}

func TestDefaultStrategyMatchesConfidenceTimesData(t *testing.T) {
	m := mask.New(3, 3)
	center := raster.Index{Row: 1, Col: 1}
	m.SetHole(center)
	boundaryField := field.NewByte(3, 3)
	boundaryField.Set(raster.Index{Row: 1, Col: 0}, 1)

	confidenceMap := field.NewScalar(3, 3)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			idx := raster.Index{Row: row, Col: col}
			if m.IsValid(idx) {
				confidenceMap.Set(idx, 1)
			}
		}
	}
	isophotes := field.NewVector(3, 3)
	isophotes.Set(raster.Index{Row: 1, Col: 0}, raster.Vec2{Row: 1, Col: 0})
	normals := field.NewVector(3, 3)
	normals.Set(raster.Index{Row: 1, Col: 0}, raster.Vec2{Row: 1, Col: 0})

	got := DefaultStrategy(confidenceMap, isophotes, normals, m, boundaryField, 1)
	want := Product(
		Confidence(confidenceMap, m, boundaryField, 1),
		Data(isophotes, normals, boundaryField),
		boundaryField,
	)
	target := raster.Index{Row: 1, Col: 0}
	if got.At(target) != want.At(target) {
		t.Fatalf("expected DefaultStrategy to match Confidence x Data, got %v want %v", got.At(target), want.At(target))
	}
}
