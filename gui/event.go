package gui

import (
	"fmt"
	"image"
)

// PointerEvent is a touch in panel coordinates.
type PointerEvent struct {
	Pressed bool
	Pos     image.Point
}

func (e PointerEvent) String() string {
	return fmt.Sprintf("PointerEvent{Pressed:%v Pos:%v}", e.Pressed, e.Pos)
}

// Rotation is the clockwise rotation of the logical screen
// relative to the panel.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Size returns the logical screen size of a panel.
func (r Rotation) Size(panel image.Point) image.Point {
	switch r {
	case Rotate90, Rotate270:
		return image.Pt(panel.Y, panel.X)
	default:
		return panel
	}
}

// Apply maps a point from panel to logical coordinates.
func (r Rotation) Apply(p, panel image.Point) image.Point {
	w, h := panel.X, panel.Y
	switch r {
	case Rotate90:
		return image.Pt(h-1-p.Y, p.X)
	case Rotate180:
		return image.Pt(w-1-p.X, h-1-p.Y)
	case Rotate270:
		return image.Pt(p.Y, w-1-p.X)
	default:
		return p
	}
}

type widgetID int

const (
	noWidget widgetID = iota
	titleWidget
	switchWidget
	buttonWidget
	leftLEDWidget
	rightLEDWidget
	sliderWidget
	sliderLabelWidget
	nwidgets
)

// pointerState tracks the widget that captured the pointer
// when it was pressed.
type pointerState struct {
	pressed  bool
	captured widgetID
}

// Event routes a pointer event. A press captures the widget
// under it; the slider follows the pointer while captured and
// a release inside the captured switch or button clicks it.
func (s *Screen) Event(e PointerEvent) {
	pos := s.rot.Apply(e.Pos, s.panel)
	pos.X = min(max(pos.X, 0), s.size.X-1)
	pos.Y = min(max(pos.Y, 0), s.size.Y-1)
	p := &s.pointer
	if e.Pressed {
		if !p.pressed {
			p.pressed = true
			p.captured = s.hit(pos)
		}
		if p.captured == sliderWidget {
			s.dragSlider(pos.X)
		}
		return
	}
	if !p.pressed {
		return
	}
	w := p.captured
	*p = pointerState{}
	if !pos.In(s.hitBounds(w)) {
		return
	}
	switch w {
	case switchWidget:
		s.state.SetEnabled(!s.state.Enabled)
		s.invalidate(switchWidget, leftLEDWidget, rightLEDWidget)
	case buttonWidget:
		if s.state.Toggle() {
			s.invalidate(buttonWidget, leftLEDWidget, rightLEDWidget)
		}
	}
}

func (s *Screen) hit(pos image.Point) widgetID {
	for _, w := range []widgetID{switchWidget, buttonWidget, sliderWidget} {
		if pos.In(s.hitBounds(w)) {
			return w
		}
	}
	return noWidget
}

func (s *Screen) dragSlider(x int) {
	track := s.bounds[sliderWidget]
	v := sliderMin
	if track.Dx() > 0 {
		v = sliderMin + (x-track.Min.X)*(sliderMax-sliderMin)/track.Dx()
	}
	old := s.state.Slider
	s.state.SetSlider(v)
	if s.state.Slider != old {
		s.invalidate(sliderWidget, sliderLabelWidget)
	}
}
