// Package accept implements post-hoc acceptance visitors that can veto
// a ranked candidate before it is copied, grounded in the original
// source's VarianceDifferenceAcceptanceVisitor.
package accept

import (
	"math"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// DefaultVarianceThreshold matches the original's DifferenceThreshold
// default of 100.
const DefaultVarianceThreshold = 100.0

// Context bundles the read-only state a Visitor needs to judge a match.
type Context struct {
	Image *field.Image
	Mask  *mask.Mask
}

// Visitor decides whether a candidate source patch may be copied onto a
// target patch. Returning false vetoes the match; the search proceeds to
// the candidate's next-ranked alternative.
type Visitor func(ctx *Context, target, source raster.Region) bool

func meanOfIndices(img *field.Image, indices []raster.Index) []float64 {
	out := make([]float64, img.C)
	if len(indices) == 0 {
		return out
	}
	for _, idx := range indices {
		px := img.At(idx)
		for c := range out {
			out[c] += float64(px[c])
		}
	}
	for c := range out {
		out[c] /= float64(len(indices))
	}
	return out
}

func varianceOfIndices(img *field.Image, indices []raster.Index) []float64 {
	mean := meanOfIndices(img, indices)
	out := make([]float64, img.C)
	if len(indices) == 0 {
		return out
	}
	for _, idx := range indices {
		px := img.At(idx)
		for c := range out {
			d := float64(px[c]) - mean[c]
			out[c] += d * d
		}
	}
	for c := range out {
		out[c] /= float64(len(indices))
	}
	return out
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func diff(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// sourceIndicesForTargetHoles maps the HOLE offsets inside target onto
// source, producing the indices of source that will end up copied over
// the hole once the match is accepted.
func sourceIndicesForTargetHoles(m *mask.Mask, target, source raster.Region) []raster.Index {
	offsets := m.HoleOffsetsIn(target)
	out := make([]raster.Index, len(offsets))
	for i, o := range offsets {
		out[i] = source.Origin.Add(o)
	}
	return out
}

// VarianceDifferenceAcceptanceVisitor accepts a match when the Euclidean
// norm of (variance of target's known pixels - variance of the source
// pixels that would land on target's holes) is below threshold.
func VarianceDifferenceAcceptanceVisitor(threshold float64) Visitor {
	if threshold <= 0 {
		threshold = DefaultVarianceThreshold
	}
	return func(ctx *Context, target, source raster.Region) bool {
		validTarget := ctx.Mask.ValidPixelsIn(target)
		targetVar := varianceOfIndices(ctx.Image, validTarget)

		sourceIndices := sourceIndicesForTargetHoles(ctx.Mask, target, source)
		sourceVar := varianceOfIndices(ctx.Image, sourceIndices)

		energy := norm(diff(targetVar, sourceVar))
		return energy < threshold
	}
}

// AverageDifferenceAcceptanceVisitor is the same comparison but on means
// rather than variances — a softer check useful when a patch's texture
// varies but its overall brightness must still roughly match.
func AverageDifferenceAcceptanceVisitor(threshold float64) Visitor {
	if threshold <= 0 {
		threshold = DefaultVarianceThreshold
	}
	return func(ctx *Context, target, source raster.Region) bool {
		validTarget := ctx.Mask.ValidPixelsIn(target)
		targetMean := meanOfIndices(ctx.Image, validTarget)

		sourceIndices := sourceIndicesForTargetHoles(ctx.Mask, target, source)
		sourceMean := meanOfIndices(ctx.Image, sourceIndices)

		energy := norm(diff(targetMean, sourceMean))
		return energy < threshold
	}
}

// CompositeAcceptance accepts only if every child visitor accepts.
func CompositeAcceptance(visitors ...Visitor) Visitor {
	return func(ctx *Context, target, source raster.Region) bool {
		for _, v := range visitors {
			if !v(ctx, target, source) {
				return false
			}
		}
		return true
	}
}
