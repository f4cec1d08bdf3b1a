// package lcd implements a driver for ST7789 SPI panels such as the
// 240x320 display on ESP32 "cheap yellow display" boards.
package lcd

import (
	"errors"
	"fmt"
	"image"
	"time"

	"cydpanel.org/rgb16"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type LCD struct {
	dims      image.Point
	conn      spi.Conn
	pins      Pins
	window    image.Rectangle
	maxTx     int
	backlight bool
}

// Pins are the control lines besides the SPI bus. RST and BL
// may be nil if they are not wired.
type Pins struct {
	DC  gpio.PinOut
	RST gpio.PinOut
	BL  gpio.PinOut
}

const (
	panelWidth  = 240
	panelHeight = 320

	// Frequency is the pixel clock used for the panel.
	Frequency = 40 * physic.MegaHertz
)

// Open connects to the panel on port and initializes it for
// landscape scanout: 320x240, mirrored to match the touch film.
func Open(port spi.Port, pins Pins) (*LCD, error) {
	if pins.DC == nil {
		return nil, errors.New("lcd: missing DC pin")
	}
	c, err := port.Connect(Frequency, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("lcd: %w", err)
	}
	l := &LCD{
		dims:  image.Pt(panelHeight, panelWidth),
		conn:  c,
		pins:  pins,
		maxTx: 4096,
	}
	if lim, ok := c.(conn.Limits); ok && lim.MaxTxSize() > 0 {
		l.maxTx = lim.MaxTxSize()
	}
	if err := l.setup(); err != nil {
		return nil, err
	}
	return l, nil
}

// Close turns off the backlight and releases the connection.
func (l *LCD) Close() error {
	if l.pins.BL != nil {
		l.pins.BL.Out(gpio.Low)
	}
	l.backlight = false
	l.conn = nil
	return nil
}

func (l *LCD) sendCommand(cmd byte, data ...byte) error {
	if err := l.pins.DC.Out(gpio.Low); err != nil {
		return err
	}
	if err := l.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) > 0 {
		if err := l.pins.DC.Out(gpio.High); err != nil {
			return err
		}
		if err := l.conn.Tx(data, nil); err != nil {
			return err
		}
	}
	return nil
}

// MADCTL bits.
const (
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlBGR = 0x08
)

func (l *LCD) setup() error {
	if err := l.pins.DC.Out(gpio.High); err != nil {
		return fmt.Errorf("lcd: %w", err)
	}

	// Turn off backlight during setup.
	if l.pins.BL != nil {
		l.pins.BL.Out(gpio.Low)
	}

	if rst := l.pins.RST; rst != nil {
		rst.Out(gpio.High)
		time.Sleep(10 * time.Millisecond)
		rst.Out(gpio.Low)
		time.Sleep(10 * time.Millisecond)
		rst.Out(gpio.High)
		time.Sleep(120 * time.Millisecond)
	}

	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = l.sendCommand(cmd, data...)
	}
	if l.pins.RST == nil {
		sendCommand(0x01 /*SWRESET*/)
		time.Sleep(150 * time.Millisecond)
	}
	sendCommand(0x11 /*SLPOUT*/)
	time.Sleep(120 * time.Millisecond)
	// Landscape: swap the axes, mirror horizontally, BGR panel.
	sendCommand(0x36 /*MADCTL*/, madctlMV|madctlMX|madctlBGR)
	sendCommand(0x3a /*COLMOD*/, 0x55 /* 16-bit */)
	sendCommand(0xb2 /*PORCTRL*/, 0x0c, 0x0c, 0x00, 0x33, 0x33)
	sendCommand(0xb7 /*GCTRL*/, 0x35)
	sendCommand(0xbb /*VCOMS*/, 0x19)
	sendCommand(0xc0 /*LCMCTRL*/, 0x2c)
	sendCommand(0xc2 /*VDVVRHEN*/, 0x01)
	sendCommand(0xc3 /*VRHS*/, 0x12)
	sendCommand(0xc4 /*VDVS*/, 0x20)
	sendCommand(0xc6 /*FRCTRL2*/, 0x0f)
	sendCommand(0xd0 /*PWCTRL1*/, 0xa4, 0xa1)
	// The panels ship with inverted color.
	sendCommand(0x21 /*INVON*/)
	sendCommand(0x13 /*NORON*/)
	sendCommand(0x29 /*DISPON*/)
	if cmdErr != nil {
		return fmt.Errorf("lcd: SPI command: %w", cmdErr)
	}
	return nil
}

// Dims returns the landscape panel size.
func (l *LCD) Dims() image.Point {
	return l.dims
}

// Draw sends the pixels of img inside sr to the panel.
func (l *LCD) Draw(img *rgb16.Image, sr image.Rectangle) error {
	if l.conn == nil {
		return errors.New("lcd: closed")
	}
	sr = sr.Intersect(img.Bounds()).Intersect(image.Rectangle{Max: l.dims})
	if sr.Empty() {
		return nil
	}
	if err := l.setWindow(sr); err != nil {
		return fmt.Errorf("lcd: %w", err)
	}
	if err := l.pins.DC.Out(gpio.High); err != nil {
		return fmt.Errorf("lcd: %w", err)
	}

	rowBytes := sr.Dx() * 2
	rowsPerTx := max(l.maxTx/rowBytes, 1)
	buf := make([]byte, 0, rowsPerTx*rowBytes)
	for y := sr.Min.Y; y < sr.Max.Y; y++ {
		buf = append(buf, img.Row(y, sr.Min.X, sr.Max.X)...)
		if len(buf)+rowBytes > cap(buf) || y == sr.Max.Y-1 {
			// A single row may exceed the transfer limit.
			for chunk := buf; len(chunk) > 0; {
				n := min(len(chunk), l.maxTx)
				if err := l.conn.Tx(chunk[:n], nil); err != nil {
					return fmt.Errorf("lcd: blit: %w", err)
				}
				chunk = chunk[n:]
			}
			buf = buf[:0]
		}
	}

	// Turn on backlight after the first frame.
	if !l.backlight && l.pins.BL != nil {
		l.pins.BL.Out(gpio.High)
	}
	l.backlight = true
	return nil
}

func (l *LCD) setWindow(r image.Rectangle) error {
	var cmdErr error
	sendCommand := func(cmd byte, data ...byte) {
		if cmdErr != nil {
			return
		}
		cmdErr = l.sendCommand(cmd, data...)
	}
	if l.window != r {
		sendCommand(0x2a /* CASET */, byte(r.Min.X>>8), byte(r.Min.X), byte((r.Max.X-1)>>8), byte(r.Max.X-1))
		sendCommand(0x2b /* RASET */, byte(r.Min.Y>>8), byte(r.Min.Y), byte((r.Max.Y-1)>>8), byte(r.Max.Y-1))
		if cmdErr == nil {
			l.window = r
		}
	}
	sendCommand(0x2c /* RAMWR */)
	return cmdErr
}
