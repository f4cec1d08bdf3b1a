package lcd

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"cydpanel.org/rgb16"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
)

func open(t *testing.T) (*LCD, *spitest.Record, Pins) {
	t.Helper()
	port := new(spitest.Record)
	pins := Pins{
		DC:  &gpiotest.Pin{N: "DC"},
		RST: &gpiotest.Pin{N: "RST"},
		BL:  &gpiotest.Pin{N: "BL"},
	}
	l, err := Open(port, pins)
	if err != nil {
		t.Fatal(err)
	}
	return l, port, pins
}

func TestSetup(t *testing.T) {
	l, port, pins := open(t)
	if got, want := l.Dims(), image.Pt(320, 240); got != want {
		t.Errorf("dims %v, want %v", got, want)
	}
	var madctl []byte
	for i, op := range port.Ops {
		if bytes.Equal(op.W, []byte{0x36}) && i+1 < len(port.Ops) {
			madctl = port.Ops[i+1].W
		}
	}
	if want := []byte{madctlMV | madctlMX | madctlBGR}; !bytes.Equal(madctl, want) {
		t.Errorf("MADCTL %x, want %x", madctl, want)
	}
	if last := port.Ops[len(port.Ops)-1].W; !bytes.Equal(last, []byte{0x29}) {
		t.Errorf("last command %x, want DISPON", last)
	}
	if pins.BL.(gpio.PinIO).Read() != gpio.Low {
		t.Error("backlight on before the first frame")
	}
}

func TestDraw(t *testing.T) {
	l, port, pins := open(t)
	img := rgb16.New(image.Rect(0, 0, 320, 240))
	img.Fill(image.Rect(10, 20, 12, 22), color.RGBA{R: 0xff, A: 0xff})
	port.Ops = nil
	if err := l.Draw(img, image.Rect(10, 20, 12, 22)); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x2a}, {0x00, 10, 0x00, 11},
		{0x2b}, {0x00, 20, 0x00, 21},
		{0x2c},
		{0xf8, 0x00, 0xf8, 0x00, 0xf8, 0x00, 0xf8, 0x00},
	}
	if len(port.Ops) != len(want) {
		t.Fatalf("got %d writes, want %d", len(port.Ops), len(want))
	}
	for i, w := range want {
		if got := port.Ops[i].W; !bytes.Equal(got, w) {
			t.Errorf("write %d: got %x, want %x", i, got, w)
		}
	}
	if pins.BL.(gpio.PinIO).Read() != gpio.High {
		t.Error("backlight off after the first frame")
	}

	// Same window: only RAMWR and pixels.
	port.Ops = nil
	if err := l.Draw(img, image.Rect(10, 20, 12, 22)); err != nil {
		t.Fatal(err)
	}
	if len(port.Ops) != 2 || !bytes.Equal(port.Ops[0].W, []byte{0x2c}) {
		t.Errorf("redraw writes %v", port.Ops)
	}
}

func TestDrawChunks(t *testing.T) {
	l, port, _ := open(t)
	l.maxTx = 100
	img := rgb16.New(image.Rect(0, 0, 320, 240))
	port.Ops = nil
	// 30 pixels per row is 60 bytes: one row per write.
	if err := l.Draw(img, image.Rect(0, 0, 30, 3)); err != nil {
		t.Fatal(err)
	}
	pixels := port.Ops[5:]
	if len(pixels) != 3 {
		t.Fatalf("got %d pixel writes, want 3", len(pixels))
	}
	for _, op := range pixels {
		if len(op.W) != 60 {
			t.Errorf("pixel write of %d bytes, want 60", len(op.W))
		}
	}
}

func TestDrawWideRows(t *testing.T) {
	l, port, _ := open(t)
	l.maxTx = 100
	img := rgb16.New(image.Rect(0, 0, 320, 240))
	port.Ops = nil
	// 80 pixels per row is 160 bytes, more than one transfer.
	if err := l.Draw(img, image.Rect(0, 0, 80, 2)); err != nil {
		t.Fatal(err)
	}
	pixels := port.Ops[5:]
	want := []int{100, 60, 100, 60}
	if len(pixels) != len(want) {
		t.Fatalf("got %d pixel writes, want %d", len(pixels), len(want))
	}
	total := 0
	for i, op := range pixels {
		if len(op.W) != want[i] {
			t.Errorf("pixel write %d of %d bytes, want %d", i, len(op.W), want[i])
		}
		total += len(op.W)
	}
	if total != 80*2*2 {
		t.Errorf("sent %d pixel bytes, want %d", total, 80*2*2)
	}
}

func TestDrawClipped(t *testing.T) {
	l, port, _ := open(t)
	img := rgb16.New(image.Rect(0, 0, 320, 240))
	port.Ops = nil
	if err := l.Draw(img, image.Rect(400, 0, 500, 10)); err != nil {
		t.Fatal(err)
	}
	if len(port.Ops) != 0 {
		t.Errorf("%d writes for an off screen region", len(port.Ops))
	}
	l.Close()
	if err := l.Draw(img, image.Rect(0, 0, 1, 1)); err == nil {
		t.Error("Draw succeeded after Close")
	}
}

func TestMissingDC(t *testing.T) {
	if _, err := Open(new(spitest.Record), Pins{}); err == nil {
		t.Error("Open succeeded without a DC pin")
	}
}
