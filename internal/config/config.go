package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"worms/internal/worm"
)

// Run modes.
const (
	ModeDesktop = "desktop"
	ModeTerm    = "term"
	ModeSSH     = "ssh"
)

// DefaultPath is read when no -config flag is given. A missing file there
// is not an error.
const DefaultPath = "worms.yaml"

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type SoundConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// TerminalConfig sizes worms in braille dots (two per cell across, four
// down).
type TerminalConfig struct {
	MoveSize float64 `yaml:"move_size"`
	FPS      int     `yaml:"fps"`
}

type SSHConfig struct {
	Address            string `yaml:"address"`
	HostKeyFile        string `yaml:"host_key_file"`
	Password           string `yaml:"password"`
	AuthorizedKeysFile string `yaml:"authorized_keys_file"`
}

type Config struct {
	Mode string `yaml:"mode"`

	// Worms is the number of worms; 0 means one per palette colour.
	Worms      int      `yaml:"worms"`
	Points     int      `yaml:"points"`
	MoveSize   float64  `yaml:"move_size"`
	GrowthRate float64  `yaml:"growth_rate"`
	Palette    string   `yaml:"palette"`
	Colors     []string `yaml:"colors"`
	// Seed 0 seeds from the clock.
	Seed       uint64 `yaml:"seed"`
	Background string `yaml:"background"`

	Window   WindowConfig   `yaml:"window"`
	Sound    SoundConfig    `yaml:"sound"`
	Terminal TerminalConfig `yaml:"terminal"`
	SSH      SSHConfig      `yaml:"ssh"`
}

func Default() Config {
	return Config{
		Mode:       ModeDesktop,
		Points:     worm.DefaultPoints,
		MoveSize:   worm.DefaultMoveSize,
		GrowthRate: worm.DefaultGrowthRate,
		Palette:    "pastel",
		Background: "#F0F0F0",
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
			Title:  "worms",
		},
		Sound: SoundConfig{
			Volume: 0.25,
		},
		Terminal: TerminalConfig{
			MoveSize: 4,
			FPS:      30,
		},
		SSH: SSHConfig{
			Address:     ":2222",
			HostKeyFile: "worms_host_key",
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// when the file exists. Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from WORMS_SEED, WORMS_COUNT, WORMS_PALETTE and
// WORMS_MODE.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("WORMS_SEED"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WORMS_SEED: %w", err)
		}
		c.Seed = n
	}
	if v, ok := os.LookupEnv("WORMS_COUNT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORMS_COUNT: %w", err)
		}
		c.Worms = n
	}
	if v, ok := os.LookupEnv("WORMS_PALETTE"); ok && v != "" {
		c.Palette = v
	}
	if v, ok := os.LookupEnv("WORMS_MODE"); ok && v != "" {
		c.Mode = strings.ToLower(v)
	}
	return nil
}

// Validate reports the first field that cannot drive a worm set.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeDesktop, ModeTerm, ModeSSH:
	default:
		return fmt.Errorf("mode %q: want %s, %s or %s", c.Mode, ModeDesktop, ModeTerm, ModeSSH)
	}
	if c.Worms < 0 {
		return fmt.Errorf("worms must be >= 0, got %d", c.Worms)
	}
	if c.Points < 2 {
		return fmt.Errorf("points must be >= 2, got %d", c.Points)
	}
	if !(c.MoveSize > 0) {
		return fmt.Errorf("move_size must be > 0, got %v", c.MoveSize)
	}
	if !(c.GrowthRate > 0) {
		return fmt.Errorf("growth_rate must be > 0, got %v", c.GrowthRate)
	}
	if len(c.Colors) > 0 {
		for _, s := range c.Colors {
			if _, err := worm.ParseHex(s); err != nil {
				return fmt.Errorf("colors: %w", err)
			}
		}
	} else if _, ok := worm.Palettes[c.Palette]; !ok && c.Palette != worm.PaletteRandom {
		return fmt.Errorf("unknown palette %q (have %s, %s)", c.Palette, strings.Join(worm.PaletteNames(), ", "), worm.PaletteRandom)
	}
	if _, err := worm.ParseHex(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		return fmt.Errorf("sound.volume must be in [0,1], got %v", c.Sound.Volume)
	}
	if !(c.Terminal.MoveSize > 0) {
		return fmt.Errorf("terminal.move_size must be > 0, got %v", c.Terminal.MoveSize)
	}
	if c.Terminal.FPS <= 0 {
		return fmt.Errorf("terminal.fps must be > 0, got %d", c.Terminal.FPS)
	}
	if c.Mode == ModeSSH && c.SSH.Address == "" {
		return errors.New("ssh.address is empty")
	}
	return nil
}

// ResolvePalette returns the custom colours when set, otherwise the named
// palette. r is only consulted for the random palette.
func (c Config) ResolvePalette(r *worm.Rand) ([]worm.RGB, error) {
	if len(c.Colors) == 0 {
		return worm.PickPalette(c.Palette, r)
	}
	out := make([]worm.RGB, 0, len(c.Colors))
	for _, s := range c.Colors {
		col, err := worm.ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("colors: %w", err)
		}
		out = append(out, col)
	}
	return out, nil
}

func (c Config) BackgroundColor() (worm.RGB, error) {
	return worm.ParseHex(c.Background)
}

// Params sizes a desktop worm set for a palette of n colours.
func (c Config) Params(n int) worm.Params {
	count := c.Worms
	if count == 0 {
		count = n
	}
	return worm.Params{
		Worms:      count,
		Points:     c.Points,
		MoveSize:   c.MoveSize,
		GrowthRate: c.GrowthRate,
	}
}

// TerminalParams is Params with the move size in braille dots.
func (c Config) TerminalParams(n int) worm.Params {
	p := c.Params(n)
	p.MoveSize = c.Terminal.MoveSize
	return p
}
