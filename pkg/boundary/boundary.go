// Package boundary implements outer-boundary extraction and
// inward-normal estimation for a hole mask.
package boundary

import (
	"math"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/filters"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// DefaultNormalVariance is the Gaussian variance (sigma^2 = 2) used for
// the mask blur feeding normal estimation.
const DefaultNormalVariance = 2.0

// Extract returns a byte field that is 1 at every VALID pixel with at
// least one 8-adjacent HOLE pixel ("outer boundary"), 0 elsewhere. Always
// non-empty when m has at least one HOLE pixel, and empty when m has none.
func Extract(m *mask.Mask) *field.Byte {
	out := field.NewByte(m.Width(), m.Height())
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			idx := raster.Index{Row: row, Col: col}
			if m.IsValid(idx) && m.HasHoleNeighbor8(idx) {
				out.Set(idx, 1)
			}
		}
	}
	return out
}

// Normals computes inward-pointing unit normals at every boundary
// pixel: blur the HOLE/VALID mask (HOLE=0, VALID=255) with a Gaussian
// of the given variance, take the gradient, and normalize. The
// gradient naturally points from the (low-valued) hole toward the
// (high-valued) valid region. Pixels where the gradient vanishes are
// left as the zero vector — an expected degeneracy on flat regions of
// the mask, not an error.
func Normals(m *mask.Mask, boundaryField *field.Byte, variance float64) *field.Vector {
	if variance <= 0 {
		variance = DefaultNormalVariance
	}
	sigma := math.Sqrt(variance)

	src := field.NewScalar(m.Width(), m.Height())
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			idx := raster.Index{Row: row, Col: col}
			if m.IsHole(idx) {
				src.Set(idx, 0)
			} else {
				src.Set(idx, 255)
			}
		}
	}

	blurred := filters.GaussianBlur(src, sigma)
	grad := filters.Derivative(blurred)

	out := field.NewVector(m.Width(), m.Height())
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			idx := raster.Index{Row: row, Col: col}
			if boundaryField.At(idx) == 0 {
				continue
			}
			out.Set(idx, grad.At(idx).Normalize())
		}
	}
	return out
}
