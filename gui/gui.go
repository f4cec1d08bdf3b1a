// package gui implements the panel user interface: a title, a
// switch, a toggle button, two indicator LEDs and a slider.
package gui

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Screen is the widget tree for one display. It is not safe
// for concurrent use.
type Screen struct {
	state   State
	title   []string
	panel   image.Point
	size    image.Point
	rot     Rotation
	face    font.Face
	bounds  [nwidgets]image.Rectangle
	pointer pointerState
	dirty   image.Rectangle
}

// Widget sizes and offsets from the screen center.
const (
	titleWidth  = 150
	titleOffset = -90

	switchWidth  = 60
	switchHeight = 30
	switchOffset = -60

	buttonWidth  = 80
	buttonHeight = 36

	ledSize   = 40
	ledOffset = 100

	sliderWidth  = 150
	sliderHeight = 10
	sliderOffset = 60
	// sliderSlop extends the slider hit area vertically.
	sliderSlop = 12
	// sliderLabelGap is the space between slider and label.
	sliderLabelGap = 10
)

// NewScreen lays out the widgets for a panel of the given size
// viewed through rotation rot.
func NewScreen(panel image.Point, rot Rotation, title string) *Screen {
	s := &Screen{
		state: DefaultState(),
		panel: panel,
		size:  rot.Size(panel),
		rot:   rot,
		face:  basicfont.Face7x13,
	}
	s.title = wrap(s.face, title, titleWidth)
	s.layout()
	s.dirty = image.Rectangle{Max: s.size}
	return s
}

func (s *Screen) layout() {
	c := s.size.Div(2)
	centered := func(dx, dy, w, h int) image.Rectangle {
		o := c.Add(image.Pt(dx-w/2, dy-h/2))
		return image.Rectangle{Min: o, Max: o.Add(image.Pt(w, h))}
	}
	lineHeight := s.face.Metrics().Height.Ceil()
	s.bounds[titleWidget] = centered(0, titleOffset, titleWidth, lineHeight*len(s.title))
	s.bounds[switchWidget] = centered(0, switchOffset, switchWidth, switchHeight)
	s.bounds[buttonWidget] = centered(0, 0, buttonWidth, buttonHeight)
	s.bounds[leftLEDWidget] = centered(-ledOffset, 0, ledSize, ledSize)
	s.bounds[rightLEDWidget] = centered(ledOffset, 0, ledSize, ledSize)
	slider := centered(0, sliderOffset, sliderWidth, sliderHeight)
	s.bounds[sliderWidget] = slider
	// Wide enough for "100%".
	labelWidth := font.MeasureString(s.face, "100%").Ceil()
	s.bounds[sliderLabelWidget] = image.Rect(
		c.X-labelWidth/2, slider.Max.Y+sliderLabelGap,
		c.X-labelWidth/2+labelWidth, slider.Max.Y+sliderLabelGap+lineHeight,
	)
}

func (s *Screen) hitBounds(w widgetID) image.Rectangle {
	b := s.bounds[w]
	switch w {
	case noWidget:
		return image.Rectangle{}
	case sliderWidget:
		// Include the knob and some slop.
		b.Min.X -= sliderSlop
		b.Max.X += sliderSlop
		b.Min.Y -= sliderSlop
		b.Max.Y += sliderSlop
	}
	return b
}

// State returns the current UI state.
func (s *Screen) State() State {
	return s.state
}

// SetState replaces the UI state and redraws what changed.
func (s *Screen) SetState(st State) {
	st.SetSlider(st.Slider)
	old := s.state
	s.state = st
	if old.Enabled != st.Enabled {
		s.invalidate(switchWidget)
	}
	if old.RightLED != st.RightLED {
		s.invalidate(buttonWidget)
	}
	ol, or := old.LEDs()
	nl, nr := st.LEDs()
	if ol != nl || or != nr {
		s.invalidate(leftLEDWidget, rightLEDWidget)
	}
	if old.Slider != st.Slider {
		s.invalidate(sliderWidget, sliderLabelWidget)
	}
}

// Size returns the logical screen size.
func (s *Screen) Size() image.Point {
	return s.size
}

func (s *Screen) invalidate(ws ...widgetID) {
	for _, w := range ws {
		b := s.bounds[w]
		if w == sliderWidget {
			// The knob overhangs the track.
			b = b.Inset(-knobRadius - 1)
		}
		s.dirty = s.dirty.Union(b.Inset(-1))
	}
	s.dirty = s.dirty.Intersect(image.Rectangle{Max: s.size})
}

// Dirty returns the region changed since the last Draw.
func (s *Screen) Dirty() image.Rectangle {
	return s.dirty
}

// wrap breaks txt into lines no wider than width.
func wrap(face font.Face, txt string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(txt) {
		cand := word
		if line != "" {
			cand = line + " " + word
		}
		if line != "" && font.MeasureString(face, cand).Ceil() > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line = cand
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
