package main

import (
	"errors"
	"image"
	"os"
	"testing"
	"time"

	"cydpanel.org/driver/xpt2046"
	"cydpanel.org/gui"
	"cydpanel.org/input"
	"cydpanel.org/rgb16"
)

// script is a touch source that replays samples, then signals
// stop and reports no touch.
type script struct {
	samples []*xpt2046.Sample
	stop    chan os.Signal
}

func (s *script) Read() (xpt2046.Sample, error) {
	if len(s.samples) == 0 {
		select {
		case s.stop <- os.Interrupt:
		default:
		}
		return xpt2046.Sample{}, xpt2046.ErrNotPressed
	}
	next := s.samples[0]
	s.samples = s.samples[1:]
	if next == nil {
		return xpt2046.Sample{}, xpt2046.ErrNotPressed
	}
	return *next, nil
}

type recorder struct {
	rects []image.Rectangle
	err   error
}

func (r *recorder) Draw(img *rgb16.Image, sr image.Rectangle) error {
	r.rects = append(r.rects, sr)
	return r.err
}

// identity maps raw readings straight to panel coordinates.
var identity = input.Calibration{XMax: 240, YMax: 320, Width: 240, Height: 320}

func ticks() <-chan time.Time {
	c := make(chan time.Time)
	close(c)
	return c
}

func TestLoop(t *testing.T) {
	screen := gui.NewScreen(image.Pt(240, 320), gui.Rotate270, "test")
	fb := rgb16.New(image.Rectangle{Max: screen.Size()})
	// The toggle button is centered at (160, 120) on screen, which
	// is (119, 160) on the panel.
	press := &xpt2046.Sample{X: 119, Y: 160, Z: 500}
	src := &script{
		samples: []*xpt2046.Sample{nil, press, press, nil},
		stop:    make(chan os.Signal, 1),
	}
	disp := new(recorder)
	ptr := input.NewPointer(src, identity)
	if err := loop(screen, fb, disp, ptr, ticks(), src.stop); err != nil {
		t.Fatal(err)
	}
	if len(disp.rects) < 2 {
		t.Fatalf("got %d flushes, want at least 2", len(disp.rects))
	}
	if got, want := disp.rects[0], fb.Bounds(); got != want {
		t.Errorf("first flush %v, want %v", got, want)
	}
	if left, right := screen.State().LEDs(); !left || right {
		t.Errorf("LEDs %v, %v after tapping the button; want left lit", left, right)
	}
}

func TestLoopDrawError(t *testing.T) {
	screen := gui.NewScreen(image.Pt(240, 320), gui.Rotate270, "")
	fb := rgb16.New(image.Rectangle{Max: screen.Size()})
	fail := errors.New("bus fault")
	src := &script{stop: make(chan os.Signal, 1)}
	err := loop(screen, fb, &recorder{err: fail}, input.NewPointer(src, identity), ticks(), src.stop)
	if !errors.Is(err, fail) {
		t.Errorf("loop returned %v, want %v", err, fail)
	}
}

func TestNoTouch(t *testing.T) {
	ptr := input.NewPointer(noTouch{}, identity)
	if _, ok := ptr.Poll(); ok {
		t.Error("event without a touch controller")
	}
	if n, _ := ptr.TakeErr(); n != 0 {
		t.Errorf("%d errors counted for a missing controller", n)
	}
}
