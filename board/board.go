// package board opens the touch controller and display named in
// a configuration, resolving SPI ports and pins through the periph
// registries.
package board

import (
	"errors"
	"fmt"

	"cydpanel.org/config"
	"cydpanel.org/driver/xpt2046"
	"cydpanel.org/lcd"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Init loads the host drivers that populate the registries.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	return nil
}

// Touch is a touch controller together with the port it owns.
type Touch struct {
	*xpt2046.Device
	port spi.PortCloser
}

// OpenTouch constructs the touch controller. It is left
// uninitialized; call Init on the result.
func OpenTouch(c *config.Config) (*Touch, error) {
	irq := gpioreg.ByName(c.Touch.IRQ)
	if irq == nil {
		return nil, fmt.Errorf("board: touch: unknown irq pin %q", c.Touch.IRQ)
	}
	cs, err := optionalPin(c.Touch.CS)
	if err != nil {
		return nil, fmt.Errorf("board: touch: %w", err)
	}
	port, err := spireg.Open(c.Touch.Port)
	if err != nil {
		return nil, fmt.Errorf("board: touch: %w", err)
	}
	return &Touch{
		Device: xpt2046.New(port, cs, irq, c.TouchOptions()),
		port:   port,
	}, nil
}

// Close closes the controller and then its port, unless an
// exchange is still using the port.
func (t *Touch) Close() error {
	if err := t.Device.Close(); err != nil {
		if errors.Is(err, xpt2046.ErrBusy) {
			return fmt.Errorf("board: touch: %w", err)
		}
		return errors.Join(err, t.port.Close())
	}
	return t.port.Close()
}

// Display is a panel together with the port it owns.
type Display struct {
	*lcd.LCD
	port spi.PortCloser
}

func OpenDisplay(c *config.Config) (*Display, error) {
	dc := gpioreg.ByName(c.Display.DC)
	if dc == nil {
		return nil, fmt.Errorf("board: display: unknown dc pin %q", c.Display.DC)
	}
	rst, err := optionalPin(c.Display.RST)
	if err != nil {
		return nil, fmt.Errorf("board: display: %w", err)
	}
	bl, err := optionalPin(c.Display.BL)
	if err != nil {
		return nil, fmt.Errorf("board: display: %w", err)
	}
	port, err := spireg.Open(c.Display.Port)
	if err != nil {
		return nil, fmt.Errorf("board: display: %w", err)
	}
	l, err := lcd.Open(port, lcd.Pins{DC: dc, RST: rst, BL: bl})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("board: display: %w", err)
	}
	return &Display{LCD: l, port: port}, nil
}

func (d *Display) Close() error {
	return errors.Join(d.LCD.Close(), d.port.Close())
}

// optionalPin resolves name, returning a nil interface for
// an empty name.
func optionalPin(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}
