package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"worms/internal/config"
	"worms/internal/game"
	"worms/internal/logging"
	"worms/internal/term"
	"worms/internal/worm"
)

// GLFW must run on the main thread.
func init() { runtime.LockOSThread() }

var (
	configFlag  = flag.String("config", "", "YAML config file (default "+config.DefaultPath+" when present)")
	modeFlag    = flag.String("mode", "", "desktop, term or ssh")
	seedFlag    = flag.Uint64("seed", 0, "random seed, 0 seeds from the clock")
	wormsFlag   = flag.Int("worms", 0, "number of worms, 0 for one per palette colour")
	paletteFlag = flag.String("palette", "", "palette: pastel, grey or random")
	soundFlag   = flag.Bool("sound", false, "play a pluck when worms step (desktop)")
	addrFlag    = flag.String("addr", "", "ssh listen address")
	debugFlag   = flag.Bool("debug", false, "write a log to logs/worms.log in term mode")
)

func main() {
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.Mode {
	case config.ModeTerm:
		if f := logging.Setup(logging.LogDir, *debugFlag); f != nil {
			defer f.Close()
		}
		err = runTerm(cfg)
	case config.ModeSSH:
		err = runSSH(cfg, log.New(os.Stderr, "", log.LstdFlags))
	default:
		err = runDesktop(cfg, log.New(os.Stderr, "", log.LstdFlags))
	}
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig layers the config file, WORMS_* variables and set flags.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if *configFlag != "" {
		cfg, err = config.Load(*configFlag)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath)
	}
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *modeFlag
		case "seed":
			cfg.Seed = *seedFlag
		case "worms":
			cfg.Worms = *wormsFlag
		case "palette":
			cfg.Palette = *paletteFlag
			cfg.Colors = nil
		case "sound":
			cfg.Sound.Enabled = *soundFlag
		case "addr":
			cfg.SSH.Address = *addrFlag
		}
	})

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, cfg.Validate()
}

// colours resolves the palette and background shared by every mode.
func colours(cfg config.Config) ([]worm.RGB, worm.RGB, error) {
	pal, err := cfg.ResolvePalette(worm.NewRand(cfg.Seed ^ 0xC0105))
	if err != nil {
		return nil, worm.RGB{}, err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, worm.RGB{}, err
	}
	return pal, bg, nil
}

func termOptions(cfg config.Config, logger *log.Logger) (term.Options, error) {
	pal, bg, err := colours(cfg)
	if err != nil {
		return term.Options{}, err
	}
	return term.Options{
		Params:     cfg.TerminalParams(len(pal)),
		Palette:    pal,
		Background: bg,
		Seed:       cfg.Seed,
		FPS:        cfg.Terminal.FPS,
		Log:        logger,
	}, nil
}

func runDesktop(cfg config.Config, logger *log.Logger) error {
	pal, bg, err := colours(cfg)
	if err != nil {
		return err
	}
	return game.RunDesktop(game.Options{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Params:     cfg.Params(len(pal)),
		Palette:    pal,
		Background: bg,
		Seed:       cfg.Seed,
		Sound:      cfg.Sound.Enabled,
		Volume:     cfg.Sound.Volume,
		Log:        logger,
	})
}

func runTerm(cfg config.Config) error {
	opts, err := termOptions(cfg, log.Default())
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()

	// Restore the terminal before reporting a crash.
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\nworms crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Printf("term: seed %d", cfg.Seed)
	return term.Run(ctx, screen, opts)
}

func runSSH(cfg config.Config, logger *log.Logger) error {
	opts, err := termOptions(cfg, nil)
	if err != nil {
		return err
	}
	srv, err := term.NewServer(cfg.SSH, opts, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.SSH.Address)
}
