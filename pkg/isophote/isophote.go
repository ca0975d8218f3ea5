// Package isophote computes the 90-degree-rotated gradient of
// masked-blurred luminance, i.e. the direction tangent to the image's
// level sets ("isophotes") at every valid pixel. This is the signal
// the priority engine's data term measures against the boundary
// normal.
//
// Unlike pkg/filters (generic, non-mask-aware blur/derivative), the blur
// here is a masked convolution: at each tap, the kernel weight is
// renormalised by the sum of weights landing on VALID pixels, so hole
// pixels never contaminate the result. That renormalisation has no
// equivalent in the retrieval pack's filter libraries (gift blurs the
// whole image uniformly), so it is hand-written as a separable,
// goroutine-per-row convolution.
package isophote

import (
	"math"
	"sync"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/filters"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// DefaultSigma is the blur scale used if the caller does not specify one.
const DefaultSigma = 1.0

// Luminance extracts Rec. 709 luminance from img. Images with fewer than
// three channels are treated as already-grayscale (channel 0 is used).
func Luminance(img *field.Image) *field.Scalar {
	out := field.NewScalar(img.W, img.H)
	for row := 0; row < img.H; row++ {
		for col := 0; col < img.W; col++ {
			idx := raster.Index{Row: row, Col: col}
			px := img.At(idx)
			var lum float32
			if img.C >= 3 {
				lum = 0.2126*px[0] + 0.7152*px[1] + 0.0722*px[2]
			} else {
				lum = px[0]
			}
			out.Set(idx, lum)
		}
	}
	return out
}

// gaussianKernel1D generates a normalized 1-D Gaussian kernel for the
// given sigma and returns it with its half-width radius.
func gaussianKernel1D(sigma float64) ([]float64, int) {
	if sigma <= 0 {
		return []float64{1.0}, 0
	}
	radius := int(math.Ceil(3 * sigma))
	kern := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kern[i+radius] = v
		sum += v
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern, radius
}

// MaskedBlur applies a separable Gaussian blur to src, renormalising each
// tap's kernel weight by how much of its support falls on VALID pixels
// under m. A pixel with zero valid support in its window blurs to 0.
func MaskedBlur(src *field.Scalar, m *mask.Mask, sigma float64) *field.Scalar {
	kern, radius := gaussianKernel1D(sigma)
	w, h := src.W, src.H
	tmp := field.NewScalar(w, h)
	out := field.NewScalar(w, h)

	var wg sync.WaitGroup
	for row := 0; row < h; row++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			for col := 0; col < w; col++ {
				sum, wsum := 0.0, 0.0
				for k := -radius; k <= radius; k++ {
					c := col + k
					if c < 0 || c >= w {
						continue
					}
					idx := raster.Index{Row: row, Col: c}
					if !m.IsValid(idx) {
						continue
					}
					wgt := kern[k+radius]
					sum += float64(src.At(idx)) * wgt
					wsum += wgt
				}
				var v float64
				if wsum > 0 {
					v = sum / wsum
				}
				tmp.Set(raster.Index{Row: row, Col: col}, float32(v))
			}
		}(row)
	}
	wg.Wait()

	for col := 0; col < w; col++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			for row := 0; row < h; row++ {
				sum, wsum := 0.0, 0.0
				for k := -radius; k <= radius; k++ {
					r := row + k
					if r < 0 || r >= h {
						continue
					}
					idx := raster.Index{Row: r, Col: col}
					if !m.IsValid(idx) {
						continue
					}
					wgt := kern[k+radius]
					sum += float64(tmp.At(idx)) * wgt
					wsum += wgt
				}
				var v float64
				if wsum > 0 {
					v = sum / wsum
				}
				out.Set(raster.Index{Row: row, Col: col}, float32(v))
			}
		}(col)
	}
	wg.Wait()
	return out
}

// Compute builds the isophote field for img under m: luminance, masked
// blur, Sobel gradient, rotated 90 degrees. Meaningful only at VALID
// pixels; HOLE pixels are left at the zero vector until a patch copy
// transports real values over them.
func Compute(img *field.Image, m *mask.Mask, sigma float64) *field.Vector {
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	lum := Luminance(img)
	blurred := MaskedBlur(lum, m, sigma)
	grad := filters.Derivative(blurred)

	out := field.NewVector(img.W, img.H)
	for row := 0; row < img.H; row++ {
		for col := 0; col < img.W; col++ {
			idx := raster.Index{Row: row, Col: col}
			if !m.IsValid(idx) {
				continue
			}
			out.Set(idx, grad.At(idx).Rotate90())
		}
	}
	return out
}
