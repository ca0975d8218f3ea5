package filters

import (
	"math"
	"testing"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

func TestGaussianBlurZeroSigmaIsIdentity(t *testing.T) {
	s := field.NewScalar(4, 4)
	s.Fill(s.Bounds(), 12)
	out := GaussianBlur(s, 0)
	for i, v := range out.Pix {
		if v != s.Pix[i] {
			t.Fatalf("expected sigma<=0 to return an unchanged copy, differed at %d: %v vs %v", i, v, s.Pix[i])
		}
	}
}

func TestGaussianBlurUniformFieldStaysRoughlyUniform(t *testing.T) {
	s := field.NewScalar(8, 8)
	s.Fill(s.Bounds(), 100)
	out := GaussianBlur(s, 1.5)
	center := out.At(raster.Index{Row: 4, Col: 4})
	if math.Abs(float64(center)-100) > 5 {
		t.Fatalf("expected a uniform field to blur to roughly the same value, got %v", center)
	}
}

func TestDerivativeZeroOnUniformField(t *testing.T) {
	s := field.NewScalar(8, 8)
	s.Fill(s.Bounds(), 100)
	d := Derivative(s)
	center := d.At(raster.Index{Row: 4, Col: 4})
	if center.Length() > 5 {
		t.Fatalf("expected ~zero gradient on a uniform field, got length %v", center.Length())
	}
}

func TestDilateGrowsOnPixels(t *testing.T) {
	b := field.NewByte(7, 7)
	b.Set(raster.Index{Row: 3, Col: 3}, 1)

	out := Dilate(b, 1)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			idx := raster.Index{Row: 3 + dr, Col: 3 + dc}
			if out.At(idx) == 0 {
				t.Fatalf("expected dilation by 1 to cover (%d,%d)", idx.Row, idx.Col)
			}
		}
	}
	if out.At(raster.Index{Row: 0, Col: 0}) != 0 {
		t.Fatal("expected a far corner pixel to remain off after a radius-1 dilation")
	}
}

func TestDilateZeroRadiusIsIdentity(t *testing.T) {
	b := field.NewByte(5, 5)
	b.Set(raster.Index{Row: 2, Col: 2}, 1)
	out := Dilate(b, 0)
	for i, v := range out.Pix {
		if v != b.Pix[i] {
			t.Fatalf("expected radius-0 dilation to be the identity, differed at %d", i)
		}
	}
}
