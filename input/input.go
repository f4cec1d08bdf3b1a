// package input turns touch controller samples into pointer
// events for the GUI.
package input

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"cydpanel.org/driver/xpt2046"
	"cydpanel.org/gui"
)

// Source is a polled touch controller.
type Source interface {
	Read() (xpt2046.Sample, error)
}

// Pointer polls a Source once per call to Poll and reports
// changes to the touch state.
type Pointer struct {
	src Source
	cal atomic.Pointer[Calibration]

	pressed bool
	pos     image.Point
	// last is the most recent raw sample, for diagnostics.
	last xpt2046.Sample

	mu      sync.Mutex
	errs    int
	lastErr error
}

func NewPointer(src Source, cal Calibration) *Pointer {
	p := &Pointer{src: src}
	p.cal.Store(&cal)
	return p
}

// SetCalibration replaces the calibration. It is safe to call
// concurrently with Poll.
func (p *Pointer) SetCalibration(c Calibration) {
	p.cal.Store(&c)
}

func (p *Pointer) Calibration() Calibration {
	return *p.cal.Load()
}

// Poll samples the source. It returns an event when the
// pointer is pressed, moves while pressed or is released.
// Every failure to read a touch counts as a release.
func (p *Pointer) Poll() (gui.PointerEvent, bool) {
	s, err := p.src.Read()
	if err != nil {
		if !xpt2046.IsNoTouch(err) && !errors.Is(err, xpt2046.ErrNotReady) {
			p.mu.Lock()
			p.errs++
			p.lastErr = err
			p.mu.Unlock()
		}
		if !p.pressed {
			return gui.PointerEvent{}, false
		}
		p.pressed = false
		return gui.PointerEvent{Pos: p.pos}, true
	}
	p.last = s
	pos := p.cal.Load().Map(int(s.X), int(s.Y))
	if p.pressed && pos == p.pos {
		return gui.PointerEvent{}, false
	}
	p.pressed = true
	p.pos = pos
	return gui.PointerEvent{Pressed: true, Pos: pos}, true
}

// Last returns the most recent successful sample.
func (p *Pointer) Last() xpt2046.Sample {
	return p.last
}

// TakeErr returns the number of bus failures since the last
// call and the most recent of them.
func (p *Pointer) TakeErr() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.errs, p.lastErr
	p.errs, p.lastErr = 0, nil
	return n, err
}
