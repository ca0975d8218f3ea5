// Package overlay draws debug annotations — the target/source rectangle
// pair and iteration number of each accepted patch copy — onto a PNG
// snapshot of the working image, using the basic bitmap font since
// debug frames are inspected on-screen, not typeset.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Fepozopo/inpaint/pkg/rasterio"
	"github.com/Fepozopo/inpaint/pkg/raster"
	"github.com/Fepozopo/inpaint/pkg/field"
)

// TargetColor and SourceColor are the default rectangle colors.
var (
	TargetColor = color.NRGBA{R: 255, G: 32, B: 32, A: 255}
	SourceColor = color.NRGBA{R: 32, G: 220, B: 32, A: 255}
	LabelColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// DrawPatchPair renders target and source rectangles plus an "iteration
// N" label onto a fresh NRGBA copy of img; img itself is untouched.
func DrawPatchPair(img *field.Image, iteration int, target, source raster.Region) *image.NRGBA {
	out := rasterio.ToNRGBA(img)
	drawRect(out, target, TargetColor)
	drawRect(out, source, SourceColor)
	drawLabel(out, fmt.Sprintf("iter %d", iteration), target.Origin.Col, target.Origin.Row-2)
	return out
}

func drawRect(img *image.NRGBA, r raster.Region, col color.Color) {
	x0, y0 := r.Origin.Col, r.Origin.Row
	x1, y1 := x0+r.W-1, y0+r.H-1
	for x := x0; x <= x1; x++ {
		setIfInBounds(img, x, y0, col)
		setIfInBounds(img, x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		setIfInBounds(img, x0, y, col)
		setIfInBounds(img, x1, y, col)
	}
}

func setIfInBounds(img *image.NRGBA, x, y int, col color.Color) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	img.Set(x, y, col)
}

func drawLabel(img *image.NRGBA, text string, x, y int) {
	if y < 10 {
		y = 10
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(LabelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// ParseHexColor accepts #rgb, #rgba, #rrggbb and #rrggbbaa forms for
// CLI-configurable overlay colors.
func ParseHexColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '#' {
		return nil, fmt.Errorf("overlay: unsupported color format: %q", s)
	}
	hex := s[1:]
	expand := func(c byte) (uint8, error) {
		v, err := strconv.ParseUint(string(c)+string(c), 16, 8)
		return uint8(v), err
	}
	pair := func(h string) (uint8, error) {
		v, err := strconv.ParseUint(h, 16, 8)
		return uint8(v), err
	}
	switch len(hex) {
	case 3, 4:
		r, err := expand(hex[0])
		if err != nil {
			return nil, err
		}
		g, err := expand(hex[1])
		if err != nil {
			return nil, err
		}
		b, err := expand(hex[2])
		if err != nil {
			return nil, err
		}
		a := uint8(0xff)
		if len(hex) == 4 {
			if a, err = expand(hex[3]); err != nil {
				return nil, err
			}
		}
		return color.NRGBA{R: r, G: g, B: b, A: a}, nil
	case 6, 8:
		r, err := pair(hex[0:2])
		if err != nil {
			return nil, err
		}
		g, err := pair(hex[2:4])
		if err != nil {
			return nil, err
		}
		b, err := pair(hex[4:6])
		if err != nil {
			return nil, err
		}
		a := uint8(0xff)
		if len(hex) == 8 {
			if a, err = pair(hex[6:8]); err != nil {
				return nil, err
			}
		}
		return color.NRGBA{R: r, G: g, B: b, A: a}, nil
	default:
		return nil, fmt.Errorf("overlay: unsupported hex color length: %d", len(hex))
	}
}
