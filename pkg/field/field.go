// Package field implements the strongly typed 2-D raster buffers shared
// by the inpainting engine: a multi-channel float image, a scalar float
// field, a 2-vector field, and a byte field. All four share the same
// row-major flat-slice layout as *image.NRGBA, so region iteration,
// fill, and copy read the same way.
package field

import "github.com/Fepozopo/inpaint/pkg/raster"

// Bounds returns the region covering the whole field, for use with
// Region.Crop by callers that only have a width/height pair.
func Bounds(w, h int) raster.Region {
	return raster.Region{Origin: raster.Index{Row: 0, Col: 0}, W: w, H: h}
}

// Image is a W x H grid of C-channel float32 pixels, addressed in
// row-major order: Pix[(row*W+col)*C + channel].
type Image struct {
	W, H, C int
	Pix     []float32
}

// NewImage allocates a zeroed image of the given size.
func NewImage(w, h, c int) *Image {
	return &Image{W: w, H: h, C: c, Pix: make([]float32, w*h*c)}
}

// Bounds returns the region covering the whole image.
func (im *Image) Bounds() raster.Region { return Bounds(im.W, im.H) }

// offset returns the flat Pix index of (row, col)'s first channel.
func (im *Image) offset(idx raster.Index) int {
	return (idx.Row*im.W + idx.Col) * im.C
}

// At returns the channel values at idx, sharing the backing array —
// callers that need to retain the value past the next mutation should copy.
func (im *Image) At(idx raster.Index) []float32 {
	o := im.offset(idx)
	return im.Pix[o : o+im.C]
}

// Set writes v (len(v) == im.C) at idx.
func (im *Image) Set(idx raster.Index, v []float32) {
	copy(im.At(idx), v)
}

// Fill sets every pixel in region (cropped to bounds) to v.
func (im *Image) Fill(region raster.Region, v []float32) {
	region = region.Crop(im.Bounds())
	for dr := 0; dr < region.H; dr++ {
		row := region.Origin.Row + dr
		for dc := 0; dc < region.W; dc++ {
			im.Set(raster.Index{Row: row, Col: region.Origin.Col + dc}, v)
		}
	}
}

// CopyRegion copies src[srcRegion] into im[dstRegion]. The two regions
// must have equal W/H. Overlapping copies on the same buffer are only
// well-defined when the source and destination ranges do not intersect,
// which is always true for patch copies (source is VALID, destination is
// HOLE, and the two statuses are disjoint by construction).
func (im *Image) CopyRegion(dstRegion raster.Region, src *Image, srcRegion raster.Region) {
	for dr := 0; dr < dstRegion.H; dr++ {
		for dc := 0; dc < dstRegion.W; dc++ {
			s := src.At(raster.Index{Row: srcRegion.Origin.Row + dr, Col: srcRegion.Origin.Col + dc})
			im.Set(raster.Index{Row: dstRegion.Origin.Row + dr, Col: dstRegion.Origin.Col + dc}, s)
		}
	}
}

// Clone returns a deep copy of im.
func (im *Image) Clone() *Image {
	out := &Image{W: im.W, H: im.H, C: im.C, Pix: make([]float32, len(im.Pix))}
	copy(out.Pix, im.Pix)
	return out
}

// Scalar is a W x H grid of float32 values.
type Scalar struct {
	W, H int
	Pix  []float32
}

// NewScalar allocates a zeroed scalar field.
func NewScalar(w, h int) *Scalar { return &Scalar{W: w, H: h, Pix: make([]float32, w*h)} }

// Bounds returns the region covering the whole field.
func (s *Scalar) Bounds() raster.Region { return Bounds(s.W, s.H) }

// At returns the value at idx.
func (s *Scalar) At(idx raster.Index) float32 { return s.Pix[idx.Row*s.W+idx.Col] }

// Set writes v at idx.
func (s *Scalar) Set(idx raster.Index, v float32) { s.Pix[idx.Row*s.W+idx.Col] = v }

// Fill sets every pixel in region (cropped to bounds) to v.
func (s *Scalar) Fill(region raster.Region, v float32) {
	region = region.Crop(s.Bounds())
	for dr := 0; dr < region.H; dr++ {
		row := region.Origin.Row + dr
		base := row * s.W
		for dc := 0; dc < region.W; dc++ {
			s.Pix[base+region.Origin.Col+dc] = v
		}
	}
}

// Clone returns a deep copy of s.
func (s *Scalar) Clone() *Scalar {
	out := &Scalar{W: s.W, H: s.H, Pix: make([]float32, len(s.Pix))}
	copy(out.Pix, s.Pix)
	return out
}

// Vector is a W x H grid of raster.Vec2 values.
type Vector struct {
	W, H int
	Pix  []raster.Vec2
}

// NewVector allocates a zeroed vector field.
func NewVector(w, h int) *Vector { return &Vector{W: w, H: h, Pix: make([]raster.Vec2, w*h)} }

// Bounds returns the region covering the whole field.
func (v *Vector) Bounds() raster.Region { return Bounds(v.W, v.H) }

// At returns the vector at idx.
func (v *Vector) At(idx raster.Index) raster.Vec2 { return v.Pix[idx.Row*v.W+idx.Col] }

// Set writes val at idx.
func (v *Vector) Set(idx raster.Index, val raster.Vec2) { v.Pix[idx.Row*v.W+idx.Col] = val }

// CopyRegion copies src[srcRegion] into v[dstRegion], same contract as Image.CopyRegion.
func (v *Vector) CopyRegion(dstRegion raster.Region, src *Vector, srcRegion raster.Region) {
	for dr := 0; dr < dstRegion.H; dr++ {
		for dc := 0; dc < dstRegion.W; dc++ {
			val := src.At(raster.Index{Row: srcRegion.Origin.Row + dr, Col: srcRegion.Origin.Col + dc})
			v.Set(raster.Index{Row: dstRegion.Origin.Row + dr, Col: dstRegion.Origin.Col + dc}, val)
		}
	}
}

// Byte is a W x H grid of byte values, used for masks and boundary maps.
type Byte struct {
	W, H int
	Pix  []byte
}

// NewByte allocates a zeroed byte field.
func NewByte(w, h int) *Byte { return &Byte{W: w, H: h, Pix: make([]byte, w*h)} }

// Bounds returns the region covering the whole field.
func (b *Byte) Bounds() raster.Region { return Bounds(b.W, b.H) }

// At returns the value at idx.
func (b *Byte) At(idx raster.Index) byte { return b.Pix[idx.Row*b.W+idx.Col] }

// Set writes v at idx.
func (b *Byte) Set(idx raster.Index, v byte) { b.Pix[idx.Row*b.W+idx.Col] = v }

// InBounds reports whether idx lies within the field.
func (b *Byte) InBounds(idx raster.Index) bool {
	return idx.Row >= 0 && idx.Row < b.H && idx.Col >= 0 && idx.Col < b.W
}
