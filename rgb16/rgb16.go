// package rgb16 contains an image.Image implementation of a 16-bit
// RGB image, stored in the byte order the panel expects on the wire.
package rgb16

import (
	"image"
	"image/color"
	"image/draw"
)

type Image struct {
	Pix    []RGB565
	Stride int
	Rect   image.Rectangle
}

// RGB565 is a pixel with the high byte first.
type RGB565 [2]byte

func New(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]RGB565, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Image) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = colorToRGB565(c)
}

func (p *Image) PixOffset(x, y int) int {
	off := image.Pt(x, y).Sub(p.Rect.Min)
	return off.Y*p.Stride + off.X
}

func (p *Image) At(x, y int) color.Color {
	return p.RGBA64At(x, y)
}

func (p *Image) SetRGBA64(x, y int, c color.RGBA64) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = rgb888ToRGB565(uint8(c.R>>8), uint8(c.G>>8), uint8(c.B>>8))
}

func (p *Image) RGBA64At(x, y int) color.RGBA64 {
	if !(image.Point{x, y}).In(p.Rect) {
		return color.RGBA64{}
	}
	r, g, b := rgb565ToRGB888(p.Pix[p.PixOffset(x, y)])
	return color.RGBA64{
		R: uint16(r) | uint16(r)<<8,
		G: uint16(g) | uint16(g)<<8,
		B: uint16(b) | uint16(b)<<8,
		A: 0xffff,
	}
}

// Row returns the pixels of row y between x0 and x1 as bytes,
// ready to be sent to the panel.
func (p *Image) Row(y, x0, x1 int) []byte {
	start := p.PixOffset(x0, y)
	n := x1 - x0
	b := make([]byte, 0, 2*n)
	for _, px := range p.Pix[start : start+n] {
		b = append(b, px[0], px[1])
	}
	return b
}

// Fill sets every pixel in r to c.
func (p *Image) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(p.Rect)
	px := colorToRGB565(c)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := p.Pix[p.PixOffset(r.Min.X, y):p.PixOffset(r.Max.X, y)]
		for i := range row {
			row[i] = px
		}
	}
}

var _ draw.RGBA64Image = (*Image)(nil)

func colorToRGB565(c color.Color) RGB565 {
	r, g, b, _ := c.RGBA()
	return rgb888ToRGB565(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func rgb888ToRGB565(r, g, b uint8) RGB565 {
	u16 := uint16(b)>>3 | uint16(g&0xFC)<<3 | uint16(r&0xF8)<<8
	return RGB565{byte(u16 >> 8), byte(u16)}
}

func rgb565ToRGB888(rgb RGB565) (r, g, b uint8) {
	c := uint16(rgb[0])<<8 | uint16(rgb[1])
	r = uint8(c>>8) & 0xf8
	r |= r >> 5
	g = uint8(c>>3) & 0xfc
	g |= g >> 6
	b = uint8(c << 3)
	b |= b >> 5
	return
}
