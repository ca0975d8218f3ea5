// Package rasterio converts between on-disk image formats and the
// engine's strongly-typed field.Image / mask.Mask buffers. Format
// dispatch and the PNG/JPEG/GIF encode path mirror pkg/cli's
// SaveImage; BMP, TIFF, and WebP support add broader decode/encode
// coverage for inpainting source material beyond those three formats.
package rasterio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
)

// ReadImage decodes the file at path into a 3-channel (RGB) field.Image
// with channel values scaled 0..255.
func ReadImage(path string) (*field.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: read %s: %w", path, err)
	}

	var img image.Image
	switch detectFormat(path, b) {
	case "bmp":
		img, err = bmp.Decode(bytes.NewReader(b))
	case "tiff":
		img, err = tiff.Decode(bytes.NewReader(b))
	case "webp":
		img, err = nativewebp.Decode(bytes.NewReader(b))
	default:
		img, _, err = image.Decode(bytes.NewReader(b))
	}
	if err != nil {
		return nil, fmt.Errorf("rasterio: decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// WriteImage encodes img to path, choosing the codec from the file
// extension and defaulting to PNG when the extension is unrecognised.
func WriteImage(path string, img *field.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rasterio: create %s: %w", path, err)
	}
	defer f.Close()

	std := ToNRGBA(img)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(f, std)
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, std, &jpeg.Options{Quality: 92})
	case ".gif":
		return gif.Encode(f, std, nil)
	case ".bmp":
		return bmp.Encode(f, std)
	case ".tif", ".tiff":
		return tiff.Encode(f, std, nil)
	case ".webp":
		return nativewebp.Encode(f, std, nil)
	default:
		return png.Encode(f, std)
	}
}

// ReadMask decodes path as a grayscale status map: 0 is HOLE, 255 is
// VALID, anything else is IGNORED.
func ReadMask(path string) (*mask.Mask, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: read mask %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("rasterio: decode mask %s: %w", path, err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	raw := make([]byte, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			gray := color.GrayModel.Convert(img.At(bounds.Min.X+col, bounds.Min.Y+row)).(color.Gray)
			raw[row*w+col] = gray.Y
		}
	}
	return mask.FromStatusBytes(w, h, raw), nil
}

// WriteMask encodes m as an 8-bit grayscale PNG using the same wire
// convention ReadMask expects (HOLE=0, VALID=255, IGNORED=128).
func WriteMask(path string, m *mask.Mask) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rasterio: create mask %s: %w", path, err)
	}
	defer f.Close()

	out := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			idx := raster.Index{Row: row, Col: col}
			var v byte
			switch m.StatusAt(idx) {
			case mask.Hole:
				v = 0
			case mask.Valid:
				v = 255
			default:
				v = 128
			}
			out.SetGray(col, row, color.Gray{Y: v})
		}
	}
	return png.Encode(f, out)
}

// FromImage converts a decoded image.Image into a 3-channel field.Image.
func FromImage(img image.Image) *field.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := field.NewImage(w, h, 3)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			r, g, b, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			out.Set(raster.Index{Row: row, Col: col}, []float32{
				float32(r>>8), float32(g>>8), float32(b>>8),
			})
		}
	}
	return out
}

// ToNRGBA converts a field.Image back to a standard library image,
// clamping every channel to [0,255].
func ToNRGBA(img *field.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.W, img.H))
	for row := 0; row < img.H; row++ {
		for col := 0; col < img.W; col++ {
			px := img.At(raster.Index{Row: row, Col: col})
			var r, g, b float32
			r = px[0]
			if img.C >= 3 {
				g, b = px[1], px[2]
			} else {
				g, b = r, r
			}
			out.SetNRGBA(col, row, color.NRGBA{
				R: clampByte(r), G: clampByte(g), B: clampByte(b), A: 255,
			})
		}
	}
	return out
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func detectFormat(path string, b []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	if len(b) >= 2 && b[0] == 'B' && b[1] == 'M' {
		return "bmp"
	}
	if len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")) {
		return "webp"
	}
	return ""
}
