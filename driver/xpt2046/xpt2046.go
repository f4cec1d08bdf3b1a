// package xpt2046 implements a polled driver for the [XPT2046]
// resistive touch screen controller.
//
// The controller shares an SPI bus with other devices. Its PENIRQ output
// is used as a cheap presence check before any bus traffic; the
// pressure channel then confirms the touch before the position channels
// are read.
//
// [XPT2046]: https://grobotronics.com/images/datasheets/xpt2046-datasheet.pdf
package xpt2046

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type Device struct {
	port spi.Port
	// cs is nil when the port drives chip select.
	cs   gpio.PinOut
	irq  gpio.PinIn
	opts Options

	mu    sync.Mutex
	state State
	conn  spi.Conn
	// pending is the completion of an exchange abandoned
	// after a timeout. The scratch buffers belong to it
	// until it completes.
	pending chan error
	scratch [2 * frameSize]byte
}

// Options tune the driver for a particular board.
type Options struct {
	// Frequency is the SPI clock. Zero means DefaultFrequency.
	Frequency physic.Frequency
	// NoiseFloor is the minimum pressure reading of a touch.
	// Zero means DefaultNoiseFloor.
	NoiseFloor uint16
	// Timeout bounds every bus exchange. Zero disables the
	// deadline and exchanges block for as long as the port does.
	Timeout time.Duration
}

// Sample is a raw reading in controller units.
type Sample struct {
	X, Y uint16
	// Z is the pressure reading.
	Z uint16
}

type State int

const (
	Unready State = iota
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case Unready:
		return "unready"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// DefaultFrequency is slow enough for long unshielded
	// wiring between the board and the panel.
	DefaultFrequency = 2500 * physic.KiloHertz
	// DefaultNoiseFloor rejects marginal contact at the edge
	// of detection.
	DefaultNoiseFloor = 10
)

// Control bytes: start bit, channel select, 12-bit mode,
// differential reference, power down between conversions.
const (
	cmdZ1 = 0xb0
	cmdX  = 0xd0
	cmdY  = 0x90
)

// closeWait is the least time Close waits for an abandoned
// exchange.
const closeWait = 250 * time.Millisecond

// frameSize is the length of one exchange: the control byte
// followed by two bytes clocking out the conversion.
const frameSize = 3

var (
	// ErrNotReady is returned by reads from a device that
	// failed or never ran Init, or was closed.
	ErrNotReady = errors.New("xpt2046: device not ready")
	// ErrNotPressed is returned when the presence line is
	// not asserted.
	ErrNotPressed = errors.New("xpt2046: not pressed")
	// ErrNoise is returned when the pressure reading is below
	// the noise floor.
	ErrNoise = errors.New("xpt2046: pressure below noise floor")
	// ErrTimeout is returned when an exchange exceeds
	// Options.Timeout.
	ErrTimeout = errors.New("xpt2046: bus exchange timed out")
	// ErrBusy is returned while an exchange that timed out
	// is still holding the bus.
	ErrBusy = errors.New("xpt2046: bus exchange in flight")
)

// TxError is a failed bus exchange.
type TxError struct {
	Channel string
	Err     error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("xpt2046: %s exchange: %v", e.Channel, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// IsNoTouch reports whether err is one of the conditions
// that simply mean nothing valid is touching the panel.
func IsNoTouch(err error) bool {
	return errors.Is(err, ErrNotPressed) || errors.Is(err, ErrNoise)
}

// New returns an unready device. No I/O is done until Init.
// cs may be nil if the port asserts chip select itself.
func New(port spi.Port, cs gpio.PinOut, irq gpio.PinIn, opts *Options) *Device {
	d := &Device{
		port: port,
		cs:   cs,
		irq:  irq,
	}
	if opts != nil {
		d.opts = *opts
	}
	if d.opts.Frequency == 0 {
		d.opts.Frequency = DefaultFrequency
	}
	if d.opts.NoiseFloor == 0 {
		d.opts.NoiseFloor = DefaultNoiseFloor
	}
	return d
}

// Init configures the presence line and connects to the
// bus. A failed Init leaves the device permanently unready.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Unready {
		return fmt.Errorf("xpt2046: init: device is %v", d.state)
	}
	// The presence line has an external pull-up and is
	// sampled, never waited on.
	if err := d.irq.In(gpio.Float, gpio.NoEdge); err != nil {
		return fmt.Errorf("xpt2046: presence pin: %w", err)
	}
	if d.cs != nil {
		if err := d.cs.Out(gpio.High); err != nil {
			return fmt.Errorf("xpt2046: chip select: %w", err)
		}
	}
	c, err := d.port.Connect(d.opts.Frequency, spi.Mode0, 8)
	if err != nil {
		return fmt.Errorf("xpt2046: connect: %w", err)
	}
	d.conn = c
	d.state = Ready
	return nil
}

// State returns the lifecycle state of the device.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Pressed reports whether the presence line is asserted.
func (d *Device) Pressed() bool {
	return d.irq.Read() == gpio.Low
}

// Read samples the controller. It returns ErrNotReady, ErrNotPressed or
// ErrNoise without a reading, or a *TxError, ErrTimeout or ErrBusy
// if the bus failed.
func (d *Device) Read() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return Sample{}, ErrNotReady
	}
	if !d.Pressed() {
		return Sample{}, ErrNotPressed
	}
	z, err := d.exchange("pressure", cmdZ1)
	if err != nil {
		return Sample{}, err
	}
	if z < d.opts.NoiseFloor {
		return Sample{}, ErrNoise
	}
	x, err := d.exchange("x", cmdX)
	if err != nil {
		return Sample{}, err
	}
	y, err := d.exchange("y", cmdY)
	if err != nil {
		return Sample{}, err
	}
	return Sample{X: x, Y: y, Z: z}, nil
}

// ReadRaw is like Read but reports every failure as no touch.
func (d *Device) ReadRaw() (Sample, bool) {
	s, err := d.Read()
	return s, err == nil
}

// Close releases the bus connection. Reads after Close
// fail with ErrNotReady. If an exchange that timed out is still
// running, Close waits a bounded time for it and otherwise
// returns ErrBusy; the port must then outlive the exchange.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Closed {
		return nil
	}
	c := d.conn
	d.conn = nil
	d.state = Closed
	if d.pending != nil {
		t := time.NewTimer(max(4*d.opts.Timeout, closeWait))
		defer t.Stop()
		select {
		case <-d.pending:
			d.pending = nil
		case <-t.C:
			return fmt.Errorf("xpt2046: close: %w", ErrBusy)
		}
	}
	if d.cs != nil {
		d.cs.Out(gpio.High)
	}
	if cl, ok := c.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// exchange sends a control byte and decodes the 12-bit
// conversion clocked out in the following two bytes.
func (d *Device) exchange(channel string, cmd byte) (uint16, error) {
	if d.pending != nil {
		select {
		case <-d.pending:
			d.pending = nil
		default:
			return 0, ErrBusy
		}
	}
	w := d.scratch[:frameSize]
	r := d.scratch[frameSize:]
	w[0], w[1], w[2] = cmd, 0, 0
	var err error
	c := d.conn
	if d.opts.Timeout <= 0 {
		err = d.tx(c, w, r)
	} else {
		done := make(chan error, 1)
		go func() {
			done <- d.tx(c, w, r)
		}()
		t := time.NewTimer(d.opts.Timeout)
		select {
		case err = <-done:
			t.Stop()
		case <-t.C:
			d.pending = done
			return 0, ErrTimeout
		}
	}
	if err != nil {
		return 0, &TxError{Channel: channel, Err: err}
	}
	return decode(r), nil
}

func (d *Device) tx(c spi.Conn, w, r []byte) error {
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return err
		}
		defer d.cs.Out(gpio.High)
	}
	return c.Tx(w, r)
}

// decode extracts the conversion from a reply frame. The
// result is left aligned in bytes 1-2 with 3 bits of padding.
func decode(frame []byte) uint16 {
	return (uint16(frame[1])<<8 | uint16(frame[2])) >> 3
}
