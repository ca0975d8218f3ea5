// Package search ranks candidate source patches against a target patch
// by a pluggable difference function, plus an optional
// continuation-based tiebreaker (grounded in the original source's
// DemoFollowIsophotesAcrossBoundary/GMH-difference tests).
package search

import (
	"math"
	"sort"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// MaxPixelDiff bounds a single-channel absolute difference (0..255 scale)
// used to normalise the continuation score into [0,1].
const MaxPixelDiff = 255.0

// DefaultTopPatches is the default number of top-ranked candidates kept
// per target patch.
const DefaultTopPatches = 10

// Context bundles the read-only state a DifferenceFunc needs. Image is
// always the blurred measurement buffer — matching is never done
// against the unblurred working image.
type Context struct {
	Image *field.Image
	Mask  *mask.Mask

	gradMag *field.Scalar // lazily computed by GradientMagnitudeHistogramDifference
}

// DifferenceFunc scores how well a source patch could stand in for a
// target patch. Implementations must be symmetric, non-negative, and
// zero iff the regions are pointwise equal on the measured support.
type DifferenceFunc func(ctx *Context, source, target raster.Region) float32

// targetValidOffsets returns the offsets within a (2r+1)^2 region where
// the target pixel is VALID — the only support a patch difference is
// computed over.
func targetValidOffsets(ctx *Context, target raster.Region) []raster.Offset {
	return ctx.Mask.HoleOffsetsInverse(target)
}

// SumSquaredDifference is the default difference function: mean squared
// L2 distance over all channels, evaluated only at offsets where the
// target pixel is VALID.
func SumSquaredDifference(ctx *Context, source, target raster.Region) float32 {
	offsets := targetValidOffsets(ctx, target)
	if len(offsets) == 0 {
		return 0
	}
	var sum float64
	for _, o := range offsets {
		sp := ctx.Image.At(source.Origin.Add(o))
		tp := ctx.Image.At(target.Origin.Add(o))
		for c := 0; c < ctx.Image.C; c++ {
			d := float64(sp[c]) - float64(tp[c])
			sum += d * d
		}
	}
	return float32(sum / float64(len(offsets)*ctx.Image.C))
}

// LuminanceDifference scores patches by mean squared difference of
// Rec.709 luminance only, ignoring chroma.
func LuminanceDifference(ctx *Context, source, target raster.Region) float32 {
	offsets := targetValidOffsets(ctx, target)
	if len(offsets) == 0 {
		return 0
	}
	lum := func(px []float32) float64 {
		if len(px) >= 3 {
			return 0.2126*float64(px[0]) + 0.7152*float64(px[1]) + 0.0722*float64(px[2])
		}
		return float64(px[0])
	}
	var sum float64
	for _, o := range offsets {
		sd := lum(ctx.Image.At(source.Origin.Add(o))) - lum(ctx.Image.At(target.Origin.Add(o)))
		sum += sd * sd
	}
	return float32(sum / float64(len(offsets)))
}

// rgbToHsv converts an 0..255-scaled RGB pixel to (h in [0,1), s, v in
// [0,1]).
func rgbToHsv(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max / 255.0
	d := max - min
	if max == 0 {
		s = 0
	} else {
		s = d / max
	}
	if d == 0 {
		h = 0
		return
	}
	switch max {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	if h < 0 {
		h += 1
	}
	return
}

const hsvBins = 16

// hsvHistogram accumulates a joint hue/saturation histogram over offsets.
func hsvHistogram(img *field.Image, origin raster.Index, offsets []raster.Offset) []float64 {
	hist := make([]float64, hsvBins*hsvBins)
	for _, o := range offsets {
		px := img.At(origin.Add(o))
		var r, g, b float64
		r = float64(px[0])
		if len(px) >= 3 {
			g, b = float64(px[1]), float64(px[2])
		} else {
			g, b = r, r
		}
		h, s, _ := rgbToHsv(r, g, b)
		hb := int(h * hsvBins)
		if hb >= hsvBins {
			hb = hsvBins - 1
		}
		sb := int(s * hsvBins)
		if sb >= hsvBins {
			sb = hsvBins - 1
		}
		hist[hb*hsvBins+sb]++
	}
	if len(offsets) > 0 {
		for i := range hist {
			hist[i] /= float64(len(offsets))
		}
	}
	return hist
}

// HSVHistogramDifference scores patches by the chi-square distance
// between their hue/saturation histograms (computed over the same
// target-valid support for both source and target).
func HSVHistogramDifference(ctx *Context, source, target raster.Region) float32 {
	offsets := targetValidOffsets(ctx, target)
	if len(offsets) == 0 {
		return 0
	}
	hs := hsvHistogram(ctx.Image, source.Origin, offsets)
	ht := hsvHistogram(ctx.Image, target.Origin, offsets)
	var sum float64
	for i := range hs {
		d := hs[i] - ht[i]
		denom := hs[i] + ht[i]
		if denom > 0 {
			sum += (d * d) / denom
		}
	}
	return float32(sum)
}

// gradientMagnitude computes per-pixel Sobel gradient magnitude of
// luminance, used by GradientMagnitudeHistogramDifference. Computed
// lazily and cached on the Context since not every search call needs it.
func gradientMagnitude(ctx *Context) *field.Scalar {
	if ctx.gradMag != nil {
		return ctx.gradMag
	}
	img := ctx.Image
	mag := field.NewScalar(img.W, img.H)
	for row := 0; row < img.H; row++ {
		for col := 0; col < img.W; col++ {
			gx, gy := 0.0, 0.0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					ny, nx := row+ky, col+kx
					if ny < 0 {
						ny = 0
					} else if ny >= img.H {
						ny = img.H - 1
					}
					if nx < 0 {
						nx = 0
					} else if nx >= img.W {
						nx = img.W - 1
					}
					px := img.At(raster.Index{Row: ny, Col: nx})
					var lum float64
					if img.C >= 3 {
						lum = 0.2126*float64(px[0]) + 0.7152*float64(px[1]) + 0.0722*float64(px[2])
					} else {
						lum = float64(px[0])
					}
					gx += lum * sobelGx[ky+1][kx+1]
					gy += lum * sobelGy[ky+1][kx+1]
				}
			}
			mag.Set(raster.Index{Row: row, Col: col}, float32(math.Sqrt(gx*gx+gy*gy)))
		}
	}
	ctx.gradMag = mag
	return mag
}

var sobelGx = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
var sobelGy = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

const gmhBins = 16

// GradientMagnitudeHistogramDifference scores patches by chi-square
// distance between gradient-magnitude histograms, grounded in the
// original source's TestGMHDifference.cpp.
func GradientMagnitudeHistogramDifference(ctx *Context, source, target raster.Region) float32 {
	offsets := targetValidOffsets(ctx, target)
	if len(offsets) == 0 {
		return 0
	}
	mag := gradientMagnitude(ctx)
	build := func(origin raster.Index) []float64 {
		hist := make([]float64, gmhBins)
		for _, o := range offsets {
			v := float64(mag.At(origin.Add(o)))
			b := int(v / 16.0) // 16 magnitude units per bin, clamped below
			if b >= gmhBins {
				b = gmhBins - 1
			}
			if b < 0 {
				b = 0
			}
			hist[b]++
		}
		for i := range hist {
			hist[i] /= float64(len(offsets))
		}
		return hist
	}
	hs := build(source.Origin)
	ht := build(target.Origin)
	var sum float64
	for i := range hs {
		d := hs[i] - ht[i]
		denom := hs[i] + ht[i]
		if denom > 0 {
			sum += (d * d) / denom
		}
	}
	return float32(sum)
}

// Candidate is a scored source patch for a given target.
type Candidate struct {
	Source raster.Region
	Score  float32
}

// Rank scores every patch in sources against target using diff, and
// returns the topN best (ascending score) — spec §4.H steps 1-3.
func Rank(ctx *Context, sources []raster.Region, target raster.Region, diff DifferenceFunc, topN int) []Candidate {
	out := make([]Candidate, len(sources))
	for i, s := range sources {
		out[i] = Candidate{Source: s, Score: diff(ctx, s, target)}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Continuation computes an isophote-continuity tiebreaker score: for
// every boundary pixel of target on the valid side, step one pixel
// along the isophote into the hole side, map by the constant
// target->source offset, and average pixel/angle mismatch. Lower is
// better; result is in [0,1].
func Continuation(ctx *Context, isophotes *field.Vector, boundaryOffsets []raster.Offset, source, target raster.Region) float32 {
	if len(boundaryOffsets) == 0 {
		return 0
	}
	delta := raster.Offset{
		DRow: source.Origin.Row - target.Origin.Row,
		DCol: source.Origin.Col - target.Origin.Col,
	}
	var sum float64
	n := 0
	for _, o := range boundaryOffsets {
		b := target.Origin.Add(o)
		if !ctx.Mask.IsValid(b) {
			continue
		}
		iso := isophotes.At(b)
		if iso.IsZero() {
			continue
		}
		stepped := raster.NextPixelAlong(b, iso)
		mapped := stepped.Add(delta)
		if !inBounds(ctx.Image, mapped) {
			continue
		}
		pb := ctx.Image.At(b)
		pm := ctx.Image.At(mapped)
		var pixDiff float64
		for c := 0; c < ctx.Image.C; c++ {
			d := math.Abs(float64(pb[c]) - float64(pm[c]))
			pixDiff += d
		}
		pixDiff /= float64(ctx.Image.C)

		isoMapped := isophotes.At(mapped)
		angle := raster.AngleBetween(iso, isoMapped)

		sum += 0.5 * (pixDiff/MaxPixelDiff + angle/math.Pi)
		n++
	}
	if n == 0 {
		return 0
	}
	return float32(sum / float64(n))
}

func inBounds(img *field.Image, idx raster.Index) bool {
	return idx.Row >= 0 && idx.Row < img.H && idx.Col >= 0 && idx.Col < img.W
}
