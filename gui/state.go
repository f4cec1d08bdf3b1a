package gui

import "fmt"

// State is the user visible state of the panel. It is owned by
// the Screen and changed only through its methods.
type State struct {
	// Enabled is the position of the switch. The LEDs are dark
	// while it is off.
	Enabled bool
	// RightLED selects which of the two LEDs is lit.
	RightLED bool
	// Slider is the slider value in [0, 100].
	Slider int
}

const (
	sliderMin = 0
	sliderMax = 100
)

func DefaultState() State {
	return State{
		Enabled:  true,
		RightLED: true,
	}
}

// LEDs returns whether the left and right LED are lit.
func (s State) LEDs() (left, right bool) {
	if !s.Enabled {
		return false, false
	}
	return !s.RightLED, s.RightLED
}

// ButtonLabel names the side a button click moves the light to.
func (s State) ButtonLabel() string {
	if s.RightLED {
		return "Left"
	}
	return "Right"
}

func (s State) SliderLabel() string {
	return fmt.Sprintf("%d%%", s.Slider)
}

// SetEnabled flips the switch.
func (s *State) SetEnabled(on bool) {
	s.Enabled = on
}

// Toggle moves the light to the other LED. It does nothing
// and returns false while the switch is off.
func (s *State) Toggle() bool {
	if !s.Enabled {
		return false
	}
	s.RightLED = !s.RightLED
	return true
}

// SetSlider sets the slider value, clamped to its range.
func (s *State) SetSlider(v int) {
	s.Slider = min(max(v, sliderMin), sliderMax)
}
