// Package filters implements the PixelFilters collaborator: Gaussian
// blur, derivative (Sobel gradient), and dilation, as pure functions
// over field.Scalar. These are deliberately NOT mask-aware — the
// masked, renormalised convolution the isophote field needs is
// domain-specific and lives in pkg/isophote instead.
//
// Blur and derivative are backed by github.com/disintegration/gift, the
// same convolution-filter library used for mask post-processing in the
// retrieval pack's WaterColorMap project. Dilation has no equivalent in
// that library (it ships photographic filters, not morphology), so it is
// a small hand-written structuring-element pass, grounded in the
// teacher's own clamped-neighbourhood convolution loops.
package filters

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// scalarImage adapts a *field.Scalar to image.Image/draw.Image so gift
// filters (which operate on the standard image interfaces) can run over
// it. Values are treated as 0..255 gray levels; values outside that
// range are clamped on the way out, exactly the clamp-to-uint8 idiom the
// teacher's stdlib image engine uses at every convolution boundary.
type scalarImage struct {
	s *field.Scalar
}

func (a scalarImage) ColorModel() color.Model { return color.Gray16Model }

func (a scalarImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, a.s.W, a.s.H)
}

func (a scalarImage) At(x, y int) color.Color {
	v := a.s.At(raster.Index{Row: y, Col: x})
	return color.Gray16{Y: clampTo16(v)}
}

func (a scalarImage) Set(x, y int, c color.Color) {
	g := color.Gray16Model.Convert(c).(color.Gray16)
	a.s.Set(raster.Index{Row: y, Col: x}, float32(g.Y)/257.0)
}

func clampTo16(v float32) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint16(v * 257.0)
}

// GaussianBlur returns a new scalar field blurred with the given sigma
// (in pixels), via gift.GaussianBlur.
func GaussianBlur(s *field.Scalar, sigma float64) *field.Scalar {
	if sigma <= 0 {
		return s.Clone()
	}
	g := gift.New(gift.GaussianBlur(float32(sigma)))
	out := field.NewScalar(s.W, s.H)
	dst := scalarImage{s: out}
	g.Draw(dst, scalarImage{s: s})
	return out
}

// sobelGx and sobelGy are the standard 3x3 Sobel kernels, row-major.
var (
	sobelGx = []float32{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelGy = []float32{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// Derivative computes the Sobel gradient of s, returning a vector field
// of (d/drow, d/dcol) at every pixel.
func Derivative(s *field.Scalar) *field.Vector {
	gx := gift.New(gift.Convolution(sobelGx, false, false, false, 0))
	gy := gift.New(gift.Convolution(sobelGy, false, false, false, 0))

	dstX := field.NewScalar(s.W, s.H)
	dstY := field.NewScalar(s.W, s.H)
	gx.Draw(scalarImage{s: dstX}, scalarImage{s: s})
	gy.Draw(scalarImage{s: dstY}, scalarImage{s: s})

	out := field.NewVector(s.W, s.H)
	for row := 0; row < s.H; row++ {
		for col := 0; col < s.W; col++ {
			idx := raster.Index{Row: row, Col: col}
			out.Set(idx, raster.Vec2{Row: float64(dstY.At(idx)), Col: float64(dstX.At(idx))})
		}
	}
	return out
}

// Dilate grows the set of "on" pixels (value != 0) in b by radius,
// using a square structuring element, and returns the result as a new
// byte field (1 = on, 0 = off). There is no morphology filter in the
// retrieval pack's image libraries, so this is a direct,
// clamped-window neighbourhood scan.
func Dilate(b *field.Byte, radius int) *field.Byte {
	out := field.NewByte(b.W, b.H)
	for row := 0; row < b.H; row++ {
		for col := 0; col < b.W; col++ {
			on := byte(0)
		scan:
			for dr := -radius; dr <= radius; dr++ {
				ny := row + dr
				if ny < 0 || ny >= b.H {
					continue
				}
				for dc := -radius; dc <= radius; dc++ {
					nx := col + dc
					if nx < 0 || nx >= b.W {
						continue
					}
					if b.At(raster.Index{Row: ny, Col: nx}) != 0 {
						on = 1
						break scan
					}
				}
			}
			out.Set(raster.Index{Row: row, Col: col}, on)
		}
	}
	return out
}
