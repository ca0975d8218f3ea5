// Package priority computes per-boundary-pixel confidence and data
// terms, their product, and greedy top-K target extraction with
// geometric separation.
package priority

import (
	"math"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// MinPriorityEpsilon is the threshold below which top-K extraction
// stops early, once at least one target has already been picked.
const MinPriorityEpsilon = 1e-4

// MaxDataNorm is the scale constant (alpha = 255) the data term
// divides by.
const MaxDataNorm = 255.0

// Confidence computes the confidence term at every boundary pixel:
// the fraction, over the (2r+1)^2 patch centred on p (cropped to the
// image), of ConfidenceMap mass among VALID pixels.
func Confidence(confidence *field.Scalar, m *mask.Mask, boundaryField *field.Byte, radius int) *field.Scalar {
	out := field.NewScalar(confidence.W, confidence.H)
	area := float64((2*radius + 1) * (2*radius + 1))
	bounds := m.Bounds()
	for row := 0; row < confidence.H; row++ {
		for col := 0; col < confidence.W; col++ {
			center := raster.Index{Row: row, Col: col}
			if boundaryField.At(center) == 0 {
				continue
			}
			region := raster.RegionInRadius(center, radius).Crop(bounds)
			sum := 0.0
			for dr := 0; dr < region.H; dr++ {
				r := region.Origin.Row + dr
				for dc := 0; dc < region.W; dc++ {
					idx := raster.Index{Row: r, Col: region.Origin.Col + dc}
					if m.IsValid(idx) {
						sum += float64(confidence.At(idx))
					}
				}
			}
			out.Set(center, float32(sum/area))
		}
	}
	return out
}

// Data computes the data term at every boundary pixel:
// |<isophote(p), normal(p)>| / 255.
func Data(isophotes *field.Vector, normals *field.Vector, boundaryField *field.Byte) *field.Scalar {
	out := field.NewScalar(isophotes.W, isophotes.H)
	for row := 0; row < isophotes.H; row++ {
		for col := 0; col < isophotes.W; col++ {
			idx := raster.Index{Row: row, Col: col}
			if boundaryField.At(idx) == 0 {
				continue
			}
			iso := isophotes.At(idx)
			n := normals.At(idx)
			d := math.Abs(iso.Dot(n)) / MaxDataNorm
			out.Set(idx, float32(d))
		}
	}
	return out
}

// Product multiplies confidence and data term-wise, restricted to
// boundary pixels (zero elsewhere).
func Product(confidence, data *field.Scalar, boundaryField *field.Byte) *field.Scalar {
	out := field.NewScalar(confidence.W, confidence.H)
	for row := 0; row < confidence.H; row++ {
		for col := 0; col < confidence.W; col++ {
			idx := raster.Index{Row: row, Col: col}
			if boundaryField.At(idx) == 0 {
				continue
			}
			out.Set(idx, confidence.At(idx)*data.At(idx))
		}
	}
	return out
}

// Strategy computes the full per-boundary-pixel priority field from the
// running confidence map, the isophote/normal fields, and the current
// mask (spec §6's pluggable `set_priority`). The default,
// DefaultStrategy, multiplies Confidence (§4.G) by Data; alternative
// strategies may re-weight the two terms or substitute another measure
// entirely, as long as the result stays zero off the boundary so
// TopKTargets' selection remains boundary-gated.
type Strategy func(confidenceMap *field.Scalar, isophotes, normals *field.Vector, m *mask.Mask, boundaryField *field.Byte, radius int) *field.Scalar

// DefaultStrategy is Confidence x Data, exactly as spec'd in §4.G.
func DefaultStrategy(confidenceMap *field.Scalar, isophotes, normals *field.Vector, m *mask.Mask, boundaryField *field.Byte, radius int) *field.Scalar {
	conf := Confidence(confidenceMap, m, boundaryField, radius)
	data := Data(isophotes, normals, boundaryField)
	return Product(conf, data, boundaryField)
}

// TopKTargets repeatedly picks the boundary pixel with maximum priority,
// then zeros a (2*minSeparationRadius+1)^2 square around it in a working
// copy so subsequent picks are geometrically separated. Stops once k
// picks are made, the boundary is exhausted, or (after at least one pick)
// the next maximum falls below MinPriorityEpsilon.
func TopKTargets(priorities *field.Scalar, boundaryField *field.Byte, k, minSeparationRadius int) []raster.Index {
	work := priorities.Clone()
	var out []raster.Index
	for len(out) < k {
		best := raster.Index{}
		bestVal := float32(-1)
		found := false
		for row := 0; row < work.H; row++ {
			for col := 0; col < work.W; col++ {
				idx := raster.Index{Row: row, Col: col}
				if boundaryField.At(idx) == 0 {
					continue
				}
				v := work.At(idx)
				if v > bestVal {
					bestVal = v
					best = idx
					found = true
				}
			}
		}
		if !found {
			break
		}
		if len(out) > 0 && float64(bestVal) < MinPriorityEpsilon {
			break
		}
		out = append(out, best)
		work.Fill(raster.RegionInRadius(best, minSeparationRadius), 0)
	}
	return out
}
