package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"worms/internal/worm"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeFile(t, "worms.yaml", `
mode: term
worms: 3
palette: grey
window:
  title: wiggle
terminal:
  fps: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeTerm || cfg.Worms != 3 || cfg.Palette != "grey" {
		t.Fatalf("top level = %+v", cfg)
	}
	if cfg.Window.Title != "wiggle" || cfg.Window.Width != 1280 {
		t.Fatalf("window = %+v, want title override and default width", cfg.Window)
	}
	if cfg.Terminal.FPS != 20 || cfg.Terminal.MoveSize != 4 {
		t.Fatalf("terminal = %+v", cfg.Terminal)
	}
	if cfg.MoveSize != worm.DefaultMoveSize {
		t.Fatalf("move_size = %v, want default", cfg.MoveSize)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
	bad := writeFile(t, "bad.yaml", "worms: [1, 2\n")
	if _, err := Load(bad); err == nil {
		t.Fatal("broken YAML accepted")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeDesktop {
		t.Fatalf("mode = %q, want default", cfg.Mode)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WORMS_SEED", "77")
	t.Setenv("WORMS_COUNT", "2")
	t.Setenv("WORMS_PALETTE", "random")
	t.Setenv("WORMS_MODE", "SSH")
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 77 || cfg.Worms != 2 || cfg.Palette != worm.PaletteRandom || cfg.Mode != ModeSSH {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("WORMS_SEED", "-1")
	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil || !strings.Contains(err.Error(), "WORMS_SEED") {
		t.Fatalf("err = %v, want a WORMS_SEED error", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env: %v", err)
	}
	t.Setenv("WORMS_COUNT", "")
	os.Unsetenv("WORMS_COUNT")
	path := writeFile(t, ".env", "WORMS_COUNT=6\n")
	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Worms != 6 {
		t.Fatalf("worms = %d, want 6 from .env", cfg.Worms)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"mode", func(c *Config) { c.Mode = "web" }, "mode"},
		{"worms", func(c *Config) { c.Worms = -1 }, "worms"},
		{"points", func(c *Config) { c.Points = 1 }, "points"},
		{"move size", func(c *Config) { c.MoveSize = 0 }, "move_size"},
		{"growth rate", func(c *Config) { c.GrowthRate = -0.5 }, "growth_rate"},
		{"palette", func(c *Config) { c.Palette = "neon" }, "palette"},
		{"colors", func(c *Config) { c.Colors = []string{"#12345"} }, "colors"},
		{"background", func(c *Config) { c.Background = "white" }, "background"},
		{"window", func(c *Config) { c.Window.Height = 0 }, "window"},
		{"volume", func(c *Config) { c.Sound.Volume = 2 }, "volume"},
		{"terminal fps", func(c *Config) { c.Terminal.FPS = 0 }, "fps"},
		{"ssh address", func(c *Config) { c.Mode = ModeSSH; c.SSH.Address = "" }, "ssh.address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestCustomColorsOverridePalette(t *testing.T) {
	cfg := Default()
	cfg.Palette = "neon"
	cfg.Colors = []string{"#102030", "405060"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	pal, err := cfg.ResolvePalette(worm.NewRand(1))
	if err != nil {
		t.Fatal(err)
	}
	want := []worm.RGB{{R: 0x10, G: 0x20, B: 0x30}, {R: 0x40, G: 0x50, B: 0x60}}
	if len(pal) != 2 || pal[0] != want[0] || pal[1] != want[1] {
		t.Fatalf("palette = %v, want %v", pal, want)
	}
}

func TestParamsDefaultsWormCountToPalette(t *testing.T) {
	cfg := Default()
	if p := cfg.Params(8); p.Worms != 8 || p.MoveSize != worm.DefaultMoveSize {
		t.Fatalf("Params = %+v", p)
	}
	cfg.Worms = 3
	if p := cfg.TerminalParams(8); p.Worms != 3 || p.MoveSize != cfg.Terminal.MoveSize {
		t.Fatalf("TerminalParams = %+v", p)
	}
}

func TestBackgroundColor(t *testing.T) {
	c, err := Default().BackgroundColor()
	if err != nil || c != (worm.RGB{R: 240, G: 240, B: 240}) {
		t.Fatalf("BackgroundColor() = %v, %v", c, err)
	}
}
