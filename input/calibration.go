package input

import (
	"errors"
	"fmt"
	"image"
)

// Calibration maps raw touch readings to panel pixels. The
// raw ranges depend on the pairing of panel and touch film
// and vary from unit to unit.
type Calibration struct {
	XMin, XMax int
	YMin, YMax int
	// Width and Height are the panel size in pixels.
	Width, Height int
	// InvertX maps XMax to the left edge.
	InvertX bool
	// InvertY maps YMax to the top edge.
	InvertY bool
}

// DefaultCalibration matches the 240x320 panels with the touch film
// mounted mirrored along the short axis.
var DefaultCalibration = Calibration{
	XMin: 200, XMax: 3700,
	YMin: 240, YMax: 3800,
	Width: 240, Height: 320,
	InvertX: true,
}

func (c Calibration) Validate() error {
	if c.XMax <= c.XMin {
		return fmt.Errorf("input: empty x range [%d,%d]", c.XMin, c.XMax)
	}
	if c.YMax <= c.YMin {
		return fmt.Errorf("input: empty y range [%d,%d]", c.YMin, c.YMax)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("input: non-positive panel size")
	}
	return nil
}

// Map converts a raw reading to panel coordinates, clamped to
// [0, Width] and [0, Height].
func (c Calibration) Map(rawX, rawY int) image.Point {
	return image.Point{
		X: scale(rawX, c.XMin, c.XMax, c.Width, c.InvertX),
		Y: scale(rawY, c.YMin, c.YMax, c.Height, c.InvertY),
	}
}

func scale(raw, lo, hi, size int, invert bool) int {
	span := hi - lo
	if span <= 0 {
		return 0
	}
	var v int
	if invert {
		v = (hi - raw) * size / span
	} else {
		v = (raw - lo) * size / span
	}
	return min(max(v, 0), size)
}
