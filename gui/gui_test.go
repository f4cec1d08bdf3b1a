package gui

import (
	"image"
	"image/color"
	"testing"
)

var panel = image.Pt(240, 320)

// tap presses and releases at the logical point p.
func tap(s *Screen, p image.Point) {
	pp := toPanel(s, p)
	s.Event(PointerEvent{Pressed: true, Pos: pp})
	s.Event(PointerEvent{Pressed: false, Pos: pp})
}

// toPanel inverts the Rotate270 mapping.
func toPanel(s *Screen, p image.Point) image.Point {
	return image.Pt(s.panel.X-1-p.Y, p.X)
}

// near reports whether c1 and c2 differ by at most 1 in
// every 8-bit channel.
func near(c1, c2 color.Color) bool {
	r1, g1, b1, a1 := c1.RGBA()
	r2, g2, b2, a2 := c2.RGBA()
	for _, d := range []int{int(r1) - int(r2), int(g1) - int(g2), int(b1) - int(b2), int(a1) - int(a2)} {
		if d < -0x101 || d > 0x101 {
			return false
		}
	}
	return true
}

func center(r image.Rectangle) image.Point {
	return r.Min.Add(r.Size().Div(2))
}

func TestRotation(t *testing.T) {
	tests := []struct {
		rot  Rotation
		in   image.Point
		want image.Point
		size image.Point
	}{
		{Rotate0, image.Pt(10, 20), image.Pt(10, 20), image.Pt(240, 320)},
		{Rotate90, image.Pt(10, 20), image.Pt(299, 10), image.Pt(320, 240)},
		{Rotate180, image.Pt(10, 20), image.Pt(229, 299), image.Pt(240, 320)},
		{Rotate270, image.Pt(10, 20), image.Pt(20, 229), image.Pt(320, 240)},
		{Rotate270, image.Pt(0, 0), image.Pt(0, 239), image.Pt(320, 240)},
	}
	for _, test := range tests {
		if got := test.rot.Apply(test.in, panel); got != test.want {
			t.Errorf("rotation %d: Apply(%v) = %v, want %v", test.rot, test.in, got, test.want)
		}
		if got := test.rot.Size(panel); got != test.size {
			t.Errorf("rotation %d: Size = %v, want %v", test.rot, got, test.size)
		}
	}
}

func TestInitialState(t *testing.T) {
	s := NewScreen(panel, Rotate270, "Hello, world!")
	st := s.State()
	if st != DefaultState() {
		t.Errorf("initial state %+v, want %+v", st, DefaultState())
	}
	if left, right := st.LEDs(); left || !right {
		t.Errorf("LEDs %v, %v; want right lit", left, right)
	}
	if got := st.ButtonLabel(); got != "Left" {
		t.Errorf("button label %q, want %q", got, "Left")
	}
	if got := st.SliderLabel(); got != "0%" {
		t.Errorf("slider label %q, want %q", got, "0%")
	}
	if got, want := s.Size(), image.Pt(320, 240); got != want {
		t.Errorf("size %v, want %v", got, want)
	}
	if got, want := s.Dirty(), image.Rect(0, 0, 320, 240); got != want {
		t.Errorf("initial dirty %v, want %v", got, want)
	}
}

func TestLayout(t *testing.T) {
	s := NewScreen(panel, Rotate270, "Hello, world!")
	tests := []struct {
		w    widgetID
		want image.Point
	}{
		{switchWidget, image.Pt(160, 60)},
		{buttonWidget, image.Pt(160, 120)},
		{leftLEDWidget, image.Pt(60, 120)},
		{rightLEDWidget, image.Pt(260, 120)},
		{sliderWidget, image.Pt(160, 180)},
	}
	for _, test := range tests {
		if got := center(s.bounds[test.w]); got != test.want {
			t.Errorf("widget %d centered at %v, want %v", test.w, got, test.want)
		}
	}
	for w := titleWidget; w < nwidgets; w++ {
		if b := s.bounds[w]; !b.In(image.Rectangle{Max: s.Size()}) {
			t.Errorf("widget %d at %v is off screen", w, b)
		}
	}
}

func TestSwitch(t *testing.T) {
	s := NewScreen(panel, Rotate270, "")
	sw := center(s.bounds[switchWidget])
	tap(s, sw)
	st := s.State()
	if st.Enabled {
		t.Fatal("switch still on after tap")
	}
	if left, right := st.LEDs(); left || right {
		t.Errorf("LEDs %v, %v with switch off", left, right)
	}
	// The button is inert while the switch is off.
	tap(s, center(s.bounds[buttonWidget]))
	if s.State().RightLED != true {
		t.Error("button toggled with switch off")
	}
	tap(s, sw)
	if left, right := s.State().LEDs(); left || !right {
		t.Errorf("LEDs %v, %v after switching on; want right lit", left, right)
	}
}

func TestButton(t *testing.T) {
	s := NewScreen(panel, Rotate270, "")
	btn := center(s.bounds[buttonWidget])
	tap(s, btn)
	st := s.State()
	if left, right := st.LEDs(); !left || right {
		t.Errorf("LEDs %v, %v after toggle; want left lit", left, right)
	}
	if got := st.ButtonLabel(); got != "Right" {
		t.Errorf("button label %q, want %q", got, "Right")
	}
	tap(s, btn)
	if left, right := s.State().LEDs(); left || !right {
		t.Errorf("LEDs %v, %v after second toggle; want right lit", left, right)
	}
}

func TestReleaseOutside(t *testing.T) {
	s := NewScreen(panel, Rotate270, "")
	btn := s.bounds[buttonWidget]
	s.Event(PointerEvent{Pressed: true, Pos: toPanel(s, center(btn))})
	// Drag off the button before releasing.
	out := image.Pt(center(btn).X, btn.Max.Y+20)
	s.Event(PointerEvent{Pressed: true, Pos: toPanel(s, out)})
	s.Event(PointerEvent{Pressed: false, Pos: toPanel(s, out)})
	if !s.State().RightLED {
		t.Error("button clicked by a release outside it")
	}
}

func TestCapture(t *testing.T) {
	s := NewScreen(panel, Rotate270, "")
	// Press on empty space and slide onto the button.
	s.Event(PointerEvent{Pressed: true, Pos: toPanel(s, image.Pt(5, 5))})
	btn := center(s.bounds[buttonWidget])
	s.Event(PointerEvent{Pressed: true, Pos: toPanel(s, btn)})
	s.Event(PointerEvent{Pressed: false, Pos: toPanel(s, btn)})
	if !s.State().RightLED {
		t.Error("button clicked by a press that started elsewhere")
	}
}

func TestSlider(t *testing.T) {
	s := NewScreen(panel, Rotate270, "")
	sl := s.bounds[sliderWidget]
	y := center(sl).Y
	s.Draw(image.NewRGBA(image.Rectangle{Max: s.Size()}))
	tests := []struct {
		x    int
		want int
	}{
		{sl.Min.X, 0},
		{center(sl).X, 50},
		{sl.Max.X, 100},
		// Beyond the ends while captured.
		{sl.Max.X + 50, 100},
		{0, 0},
	}
	s.Event(PointerEvent{Pressed: true, Pos: toPanel(s, image.Pt(center(sl).X, y))})
	for _, test := range tests {
		s.Event(PointerEvent{Pressed: true, Pos: toPanel(s, image.Pt(test.x, y))})
		if got := s.State().Slider; got != test.want {
			t.Errorf("slider at x=%d: got %d, want %d", test.x, got, test.want)
		}
	}
	s.Event(PointerEvent{Pressed: false, Pos: toPanel(s, image.Pt(0, y))})
	if d := s.Dirty(); !d.Overlaps(s.bounds[sliderLabelWidget]) {
		t.Errorf("dirty region %v misses the slider label", d)
	}
	if got := s.State().SliderLabel(); got != "0%" {
		t.Errorf("label %q, want %q", got, "0%")
	}
}

func TestSetState(t *testing.T) {
	s := NewScreen(panel, Rotate270, "")
	s.Draw(image.NewRGBA(image.Rectangle{Max: s.Size()}))
	s.SetState(State{Enabled: true, RightLED: true, Slider: 150})
	if got := s.State().Slider; got != 100 {
		t.Errorf("slider %d, want 100", got)
	}
	d := s.Dirty()
	if !d.Overlaps(s.bounds[sliderWidget]) || d.Overlaps(s.bounds[switchWidget]) {
		t.Errorf("dirty region %v", d)
	}
}

func TestDraw(t *testing.T) {
	s := NewScreen(panel, Rotate270, "Hello, world!")
	img := image.NewRGBA(image.Rectangle{Max: s.Size()})
	if d := s.Draw(img); d != img.Bounds() {
		t.Errorf("first draw covered %v, want %v", d, img.Bounds())
	}
	if d := s.Draw(img); !d.Empty() {
		t.Errorf("redraw without changes covered %v", d)
	}
	lit := color.RGBAModel.Convert(theme.LED)
	dark := color.RGBAModel.Convert(dim(theme.LED, ledOffBrightness))
	left, right := center(s.bounds[leftLEDWidget]), center(s.bounds[rightLEDWidget])
	if got := img.At(right.X, right.Y); !near(got, lit) {
		t.Errorf("right LED color %v, want %v", got, lit)
	}
	if got := img.At(left.X, left.Y); !near(got, dark) {
		t.Errorf("left LED color %v, want %v", got, dark)
	}
	tap(s, center(s.bounds[buttonWidget]))
	d := s.Draw(img)
	if !left.In(d) || !right.In(d) {
		t.Errorf("dirty region %v misses the LEDs", d)
	}
	if got := img.At(left.X, left.Y); !near(got, lit) {
		t.Errorf("left LED color %v after toggle, want %v", got, lit)
	}
	bg := color.RGBAModel.Convert(theme.Background)
	if got := img.At(2, 2); !near(got, bg) {
		t.Errorf("background %v, want %v", got, bg)
	}
}

func TestWrap(t *testing.T) {
	s := NewScreen(panel, Rotate0, "")
	lines := wrap(s.face, "a quick brown fox jumps over the lazy dog twice", 70)
	for _, l := range lines {
		if w := len(l) * 7; w > 70 {
			t.Errorf("line %q is %d px wide", l, w)
		}
	}
	if len(lines) < 2 {
		t.Errorf("got %d lines, want wrapping", len(lines))
	}
}
