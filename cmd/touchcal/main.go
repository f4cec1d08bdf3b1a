// Command touchcal measures the raw range of a touch film and
// suggests a calibration for it.
//
// Run it and stroke the stylus along all four edges of the
// panel until the sampling period ends, then paste the printed
// table into the configuration file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cydpanel.org/board"
	"cydpanel.org/config"
	"cydpanel.org/driver/xpt2046"
	"cydpanel.org/input"
	"github.com/BurntSushi/toml"
)

var (
	configPath = flag.String("config", "/etc/cydpanel.toml", "configuration file")
	duration   = flag.Duration("duration", 15*time.Second, "sampling period")
	interval   = flag.Duration("interval", 10*time.Millisecond, "time between samples")
	verbose    = flag.Bool("v", false, "print every sample")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "touchcal: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := board.Init(); err != nil {
		return err
	}
	t, err := board.OpenTouch(cfg)
	if err != nil {
		return err
	}
	defer t.Close()
	if err := t.Init(); err != nil {
		return err
	}

	fmt.Printf("stroke along the panel edges for %v\n", *duration)
	var r ranges
	tick := time.NewTicker(*interval)
	defer tick.Stop()
	deadline := time.After(*duration)
sampling:
	for {
		select {
		case <-deadline:
			break sampling
		case <-tick.C:
		}
		s, err := t.Read()
		if err != nil {
			if !xpt2046.IsNoTouch(err) {
				log.Printf("touch: %v", err)
			}
			continue
		}
		r.add(s)
		if *verbose {
			fmt.Printf("x=%d y=%d z=%d\n", s.X, s.Y, s.Z)
		}
	}

	cal, err := r.calibration(cfg.Calibration.Input())
	if err != nil {
		return err
	}
	fmt.Printf("%d samples\n\n[calibration]\n", r.n)
	enc := toml.NewEncoder(os.Stdout)
	enc.Indent = ""
	return enc.Encode(configCalibration(cal))
}

// ranges tracks the extremes of the raw samples.
type ranges struct {
	n                      int
	minX, maxX, minY, maxY int
}

func (r *ranges) add(s xpt2046.Sample) {
	x, y := int(s.X), int(s.Y)
	if r.n == 0 {
		r.minX, r.maxX, r.minY, r.maxY = x, x, y, y
	}
	r.n++
	r.minX = min(r.minX, x)
	r.maxX = max(r.maxX, x)
	r.minY = min(r.minY, y)
	r.maxY = max(r.maxY, y)
}

// calibration returns base with its ranges replaced by the
// measured ones. The panel size and axis inversion are kept.
func (r *ranges) calibration(base input.Calibration) (input.Calibration, error) {
	if r.n == 0 {
		return input.Calibration{}, errors.New("no touches recorded")
	}
	c := base
	c.XMin, c.XMax = r.minX, r.maxX
	c.YMin, c.YMax = r.minY, r.maxY
	if err := c.Validate(); err != nil {
		return input.Calibration{}, fmt.Errorf("measured range too small: %w", err)
	}
	return c, nil
}

func configCalibration(c input.Calibration) config.Calibration {
	return config.Calibration{
		XMin:    c.XMin,
		XMax:    c.XMax,
		YMin:    c.YMin,
		YMax:    c.YMax,
		Width:   c.Width,
		Height:  c.Height,
		InvertX: c.InvertX,
		InvertY: c.InvertY,
	}
}
