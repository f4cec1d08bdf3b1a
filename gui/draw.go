package gui

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type Colors struct {
	Background color.NRGBA
	Text       color.NRGBA
	Primary    color.NRGBA
	OnPrimary  color.NRGBA
	Track      color.NRGBA
	Knob       color.NRGBA
	LED        color.NRGBA
}

var theme = Colors{
	Background: rgb(0xffffff),
	Text:       rgb(0x212121),
	Primary:    rgb(0x2196f3),
	OnPrimary:  rgb(0xffffff),
	Track:      rgb(0xe0e0e0),
	Knob:       rgb(0xffffff),
	LED:        rgb(0x8bc34a),
}

const (
	knobRadius = 10
	// ledOffBrightness is the brightness of a dark LED, out
	// of 255.
	ledOffBrightness = 80
)

func rgb(c uint32) color.NRGBA {
	return color.NRGBA{A: 0xff, R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c)}
}

// dim mixes c with black.
func dim(c color.NRGBA, brightness uint8) color.NRGBA {
	b := uint32(brightness)
	return color.NRGBA{
		R: uint8(uint32(c.R) * b / 255),
		G: uint8(uint32(c.G) * b / 255),
		B: uint8(uint32(c.B) * b / 255),
		A: c.A,
	}
}

// canvas draws shapes and text onto an image.
type canvas struct {
	dst     draw.Image
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	face    font.Face
}

func newCanvas(dst draw.Image, face font.Face) *canvas {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	return &canvas{
		dst:     dst,
		scanner: scanner,
		filler:  rasterx.NewFiller(b.Dx(), b.Dy(), scanner),
		face:    face,
	}
}

func (c *canvas) roundRect(r image.Rectangle, radius float64, col color.Color) {
	c.scanner.SetColor(col)
	rasterx.AddRoundRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y),
		radius, radius, 0, rasterx.RoundGap, c.filler)
	c.filler.Draw()
	c.filler.Clear()
}

func (c *canvas) circle(center image.Point, radius float64, col color.Color) {
	c.scanner.SetColor(col)
	rasterx.AddCircle(float64(center.X), float64(center.Y), radius, c.filler)
	c.filler.Draw()
	c.filler.Clear()
}

// text draws a line centered horizontally in r, with its top
// edge at top.
func (c *canvas) text(r image.Rectangle, top int, col color.Color, txt string) {
	adv := font.MeasureString(c.face, txt)
	x := fixed.I(r.Min.X+r.Dx()/2) - adv/2
	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: x, Y: fixed.I(top) + c.face.Metrics().Ascent},
	}
	d.DrawString(txt)
}

// Draw renders the screen onto dst, which must cover the
// logical screen, and returns the region that changed since
// the previous Draw.
func (s *Screen) Draw(dst draw.Image) image.Rectangle {
	dirty := s.dirty
	s.dirty = image.Rectangle{}
	if dirty.Empty() {
		return dirty
	}
	c := newCanvas(dst, s.face)
	// Shapes are blended over the background; repaint all of it
	// so edges are not blended twice.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(theme.Background), image.Point{}, draw.Src)

	// Title.
	title := s.bounds[titleWidget]
	lineHeight := s.face.Metrics().Height.Ceil()
	for i, line := range s.title {
		c.text(title, title.Min.Y+i*lineHeight, theme.Text, line)
	}

	// Switch.
	sw := s.bounds[switchWidget]
	r := float64(sw.Dy()) / 2
	track := theme.Track
	knob := image.Pt(sw.Min.X+sw.Dy()/2, sw.Min.Y+sw.Dy()/2)
	if s.state.Enabled {
		track = theme.Primary
		knob.X = sw.Max.X - sw.Dy()/2
	}
	c.roundRect(sw, r, track)
	c.circle(knob, r-3, theme.Knob)

	// Toggle button.
	btn := s.bounds[buttonWidget]
	c.roundRect(btn, 6, theme.Primary)
	lineTop := btn.Min.Y + (btn.Dy()-lineHeight)/2
	c.text(btn, lineTop, theme.OnPrimary, s.state.ButtonLabel())

	// LEDs.
	left, right := s.state.LEDs()
	for _, led := range []struct {
		w  widgetID
		on bool
	}{
		{leftLEDWidget, left},
		{rightLEDWidget, right},
	} {
		col := theme.LED
		if !led.on {
			col = dim(col, ledOffBrightness)
		}
		b := s.bounds[led.w]
		center := b.Min.Add(b.Size().Div(2))
		c.circle(center, float64(b.Dx())/2, col)
	}

	// Slider.
	sl := s.bounds[sliderWidget]
	c.roundRect(sl, float64(sl.Dy())/2, theme.Track)
	pos := sl.Min.X + sl.Dx()*(s.state.Slider-sliderMin)/(sliderMax-sliderMin)
	if pos > sl.Min.X {
		filled := sl
		filled.Max.X = max(pos, sl.Min.X+sl.Dy())
		c.roundRect(filled, float64(sl.Dy())/2, theme.Primary)
	}
	c.circle(image.Pt(pos, sl.Min.Y+sl.Dy()/2), knobRadius, theme.Primary)

	lbl := s.bounds[sliderLabelWidget]
	c.text(lbl, lbl.Min.Y, theme.Text, s.state.SliderLabel())
	return dirty
}
