package accept

import (
	"testing"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

func TestAverageDifferenceAcceptsMatchingBrightness(t *testing.T) {
	img := field.NewImage(6, 3, 1)
	img.Fill(raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 3, H: 3}, []float32{100})
	img.Fill(raster.Region{Origin: raster.Index{Row: 0, Col: 3}, W: 3, H: 3}, []float32{100})
	m := mask.New(6, 3)
	target := raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 3, H: 3}
	target.Offsets(func(o raster.Offset) { m.SetHole(target.Origin.Add(o)) })
	m.SetValid(raster.Index{Row: 0, Col: 0}) // leave at least one VALID pixel so targetMean is non-trivial

	ctx := &Context{Image: img, Mask: m}
	source := raster.Region{Origin: raster.Index{Row: 0, Col: 3}, W: 3, H: 3}
	v := AverageDifferenceAcceptanceVisitor(DefaultVarianceThreshold)
	if !v(ctx, target, source) {
		t.Fatal("expected matching-brightness patches to be accepted")
	}
}

func TestAverageDifferenceRejectsMismatchedBrightness(t *testing.T) {
	img := field.NewImage(6, 3, 1)
	img.Fill(raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 3, H: 3}, []float32{10})
	img.Fill(raster.Region{Origin: raster.Index{Row: 0, Col: 3}, W: 3, H: 3}, []float32{250})
	m := mask.New(6, 3)
	target := raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 3, H: 3}
	target.Offsets(func(o raster.Offset) { m.SetHole(target.Origin.Add(o)) })
	m.SetValid(raster.Index{Row: 0, Col: 0})

	ctx := &Context{Image: img, Mask: m}
	source := raster.Region{Origin: raster.Index{Row: 0, Col: 3}, W: 3, H: 3}
	v := AverageDifferenceAcceptanceVisitor(1.0)
	if v(ctx, target, source) {
		t.Fatal("expected a wildly mismatched brightness patch to be rejected under a tight threshold")
	}
}

func TestVarianceDifferenceDefaultsThresholdWhenNonPositive(t *testing.T) {
	img := field.NewImage(3, 3, 1)
	m := mask.New(3, 3)
	target := raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 3, H: 3}
	ctx := &Context{Image: img, Mask: m}
	v := VarianceDifferenceAcceptanceVisitor(0)
	// A flat zero image compared with itself has zero variance difference
	// regardless of threshold, so this just exercises the default-fallback
	// path without panicking.
	if !v(ctx, target, target) {
		t.Fatal("expected a self-comparison with zero variance difference to be accepted")
	}
}

func TestCompositeAcceptanceRequiresAllVisitorsToAccept(t *testing.T) {
	alwaysTrue := func(ctx *Context, target, source raster.Region) bool { return true }
	alwaysFalse := func(ctx *Context, target, source raster.Region) bool { return false }

	ctx := &Context{Image: field.NewImage(1, 1, 1), Mask: mask.New(1, 1)}
	region := raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: 1, H: 1}

	if !CompositeAcceptance(alwaysTrue, alwaysTrue)(ctx, region, region) {
		t.Fatal("expected all-accepting visitors to accept")
	}
	if CompositeAcceptance(alwaysTrue, alwaysFalse)(ctx, region, region) {
		t.Fatal("expected one rejecting visitor to veto the whole composite")
	}
}
