// command controller runs the demo screen on an SPI panel with a
// resistive touch film.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"time"

	"cydpanel.org/board"
	"cydpanel.org/config"
	"cydpanel.org/driver/xpt2046"
	"cydpanel.org/gui"
	"cydpanel.org/input"
	"cydpanel.org/rgb16"
)

// Version is set by the Go linker with -ldflags='-X main.Version=...'.
var Version string

var configPath = flag.String("config", "/etc/cydpanel.toml", "configuration file")

// errInterval is the minimum time between reports of failed
// touch reads.
const errInterval = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "controller: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	flag.Parse()
	if Version != "" {
		log.Printf("controller %s", Version)
	}
	stopDebug, err := dbgInit()
	if err != nil {
		log.Printf("debug: %v", err)
	}
	defer stopDebug()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := board.Init(); err != nil {
		return err
	}
	disp, err := board.OpenDisplay(cfg)
	if err != nil {
		return err
	}
	defer disp.Close()
	ptr, closeTouch := openPointer(cfg)
	defer closeTouch()

	w, err := config.Watch(*configPath, func(c *config.Config, err error) {
		if err != nil {
			log.Printf("config: %v", err)
			return
		}
		ptr.SetCalibration(c.Calibration.Input())
		log.Printf("config: calibration reloaded")
	})
	if err != nil {
		log.Printf("config: %v", err)
	} else {
		defer w.Close()
	}

	cal := cfg.Calibration.Input()
	screen := gui.NewScreen(image.Pt(cal.Width, cal.Height), cfg.Rotation(), cfg.Title)
	if s, d := screen.Size(), disp.Dims(); s != d {
		return fmt.Errorf("screen size %v doesn't match display %v", s, d)
	}
	fb := rgb16.New(image.Rectangle{Max: screen.Size()})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, stopSignals...)
	defer signal.Stop(stop)
	tick := time.NewTicker(cfg.PollInterval)
	defer tick.Stop()
	return loop(screen, fb, disp, ptr, tick.C, stop)
}

// openPointer opens the touch controller. Failures are logged and
// leave the screen without input.
func openPointer(cfg *config.Config) (*input.Pointer, func()) {
	cal := cfg.Calibration.Input()
	t, err := board.OpenTouch(cfg)
	if err != nil {
		log.Printf("touch: %v", err)
		return input.NewPointer(noTouch{}, cal), func() {}
	}
	if err := t.Init(); err != nil {
		log.Printf("touch: %v", err)
	}
	return input.NewPointer(t, cal), func() { t.Close() }
}

type noTouch struct{}

func (noTouch) Read() (xpt2046.Sample, error) {
	return xpt2046.Sample{}, xpt2046.ErrNotReady
}

type display interface {
	Draw(img *rgb16.Image, sr image.Rectangle) error
}

// loop polls the pointer, updates the screen and flushes changes
// to the display once per tick until stop fires.
func loop(screen *gui.Screen, fb *rgb16.Image, disp display, ptr *input.Pointer, tick <-chan time.Time, stop <-chan os.Signal) error {
	lastReport := time.Now()
	for {
		if e, ok := ptr.Poll(); ok {
			dbgEvent(ptr, e)
			screen.Event(e)
		}
		if d := screen.Draw(fb); !d.Empty() {
			if err := disp.Draw(fb, d); err != nil {
				return err
			}
		}
		if now := time.Now(); now.Sub(lastReport) >= errInterval {
			lastReport = now
			if n, err := ptr.TakeErr(); n > 0 {
				log.Printf("touch: %d failed reads, last: %v", n, err)
			}
		}
		select {
		case <-stop:
			return nil
		case <-tick:
		}
	}
}
