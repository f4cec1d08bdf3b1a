// package config loads the controller settings from a TOML file
// and watches it for changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cydpanel.org/driver/xpt2046"
	"cydpanel.org/gui"
	"cydpanel.org/input"
	"github.com/BurntSushi/toml"
	"periph.io/x/conn/v3/physic"
)

type Config struct {
	Title string `toml:"title"`
	// PollInterval is the period of the input and render loop.
	PollInterval time.Duration `toml:"poll_interval"`
	Touch        Touch         `toml:"touch"`
	Display      Display       `toml:"display"`
	Calibration  Calibration   `toml:"calibration"`
}

// Touch describes the wiring and tuning of the touch controller.
type Touch struct {
	// Port is the periph SPI port name. Empty selects the first
	// registered port.
	Port string `toml:"port"`
	// CS is an optional chip select pin, for buses where the
	// controller is not on a hardware chip select.
	CS         string        `toml:"cs"`
	IRQ        string        `toml:"irq"`
	Frequency  Frequency     `toml:"frequency"`
	NoiseFloor uint16        `toml:"noise_floor"`
	Timeout    time.Duration `toml:"timeout"`
}

type Display struct {
	Port string `toml:"port"`
	DC   string `toml:"dc"`
	RST  string `toml:"rst"`
	BL   string `toml:"bl"`
	// Rotation of the touch film relative to the logical screen,
	// in degrees clockwise.
	Rotation int `toml:"rotation"`
}

// Calibration is the raw range of the touch film. See
// input.Calibration.
type Calibration struct {
	XMin    int  `toml:"x_min"`
	XMax    int  `toml:"x_max"`
	YMin    int  `toml:"y_min"`
	YMax    int  `toml:"y_max"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
	InvertX bool `toml:"invert_x"`
	InvertY bool `toml:"invert_y"`
}

// Frequency is a periph frequency that encodes as text, such as
// "2.5MHz".
type Frequency physic.Frequency

func (f *Frequency) UnmarshalText(text []byte) error {
	var v physic.Frequency
	if err := v.Set(string(text)); err != nil {
		return err
	}
	*f = Frequency(v)
	return nil
}

func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(physic.Frequency(f).String()), nil
}

// Default returns the settings for an unmodified board.
func Default() *Config {
	cal := input.DefaultCalibration
	return &Config{
		Title:        "Hello, world!",
		PollInterval: 10 * time.Millisecond,
		Touch: Touch{
			Port:       "SPI1.0",
			IRQ:        "GPIO17",
			Frequency:  Frequency(xpt2046.DefaultFrequency),
			NoiseFloor: xpt2046.DefaultNoiseFloor,
			Timeout:    50 * time.Millisecond,
		},
		Display: Display{
			Port:     "SPI0.0",
			DC:       "GPIO25",
			RST:      "GPIO27",
			BL:       "GPIO18",
			Rotation: 270,
		},
		Calibration: Calibration{
			XMin:    cal.XMin,
			XMax:    cal.XMax,
			YMin:    cal.YMin,
			YMax:    cal.YMax,
			Width:   cal.Width,
			Height:  cal.Height,
			InvertX: cal.InvertX,
			InvertY: cal.InvertY,
		},
	}
}

// Input converts c to the form used by the pointer.
func (c Calibration) Input() input.Calibration {
	return input.Calibration{
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

// TouchOptions returns the driver options of c.
func (c *Config) TouchOptions() *xpt2046.Options {
	return &xpt2046.Options{
		Frequency:  physic.Frequency(c.Touch.Frequency),
		NoiseFloor: c.Touch.NoiseFloor,
		Timeout:    c.Touch.Timeout,
	}
}

// Rotation returns the display rotation.
func (c *Config) Rotation() gui.Rotation {
	return gui.Rotation(c.Display.Rotation / 90)
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.Touch.IRQ == "" {
		return errors.New("config: missing touch.irq pin")
	}
	if c.Touch.Frequency <= 0 {
		return fmt.Errorf("config: invalid touch.frequency %v", physic.Frequency(c.Touch.Frequency))
	}
	if c.Touch.Timeout < 0 {
		return fmt.Errorf("config: negative touch.timeout %v", c.Touch.Timeout)
	}
	if c.Display.DC == "" {
		return errors.New("config: missing display.dc pin")
	}
	switch c.Display.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("config: display.rotation must be 0, 90, 180 or 270, got %d", c.Display.Rotation)
	}
	if err := c.Calibration.Input().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads the configuration at path. A missing file is created
// with the default settings.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c := Default()
		if err := Save(path, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return decode(path)
}

// decode reads path over the defaults, rejecting unknown keys.
func decode(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		var keys []string
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes c to path, creating its directory if necessary.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return f.Close()
}
