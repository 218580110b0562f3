// Command winloop opens a native window and traces the event stream it
// receives, exercising the loop modes, redraw requests and cursor handling.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	_ "image/png"

	"golang.org/x/term"

	"winloop"
	"winloop/internal/config"
)

func main() {
	fs := flag.NewFlagSet("winloop", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winloop [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a native window and log its event stream.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	cfgPath := fs.String("config", "", "Config file path (default: ~/.config/winloop/config.yaml)")
	title := fs.String("title", "", "Window title (overrides config)")
	width := fs.Int("width", 0, "Client-area width in pixels (overrides config)")
	height := fs.Int("height", 0, "Client-area height in pixels (overrides config)")
	mode := fs.String("mode", "", "Loop mode, wait or poll (overrides config)")
	trace := fs.Bool("trace", false, "Trace every dispatched event (default: only when stderr is a terminal)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	var cfg *config.Config
	var err error
	if *cfgPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromPath(*cfgPath)
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *title != "" {
		cfg.Title = *title
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *mode != "" {
		cfg.Mode = *mode
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid flags: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	// Tracing to a pipe just fills a buffer nobody reads.
	traceEvents := *trace || term.IsTerminal(int(os.Stderr.Fd()))

	loop, err := winloop.NewEventLoop()
	if err != nil {
		log.Fatalf("Failed to open native event source: %v", err)
	}
	loop.SetLogger(logger)

	win, err := winloop.NewWindow(loop, cfg.Width, cfg.Height)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	loop.Register(win)

	if err := win.SetTitle(cfg.Title); err != nil {
		log.Fatalf("Failed to set title: %v", err)
	}
	shape, err := winloop.ParseCursorShape(cfg.Cursor)
	if err != nil {
		log.Fatalf("Invalid cursor: %v", err)
	}
	if err := win.SetCursor(shape); err != nil {
		log.Fatalf("Failed to set cursor: %v", err)
	}
	if cfg.IconPath != "" {
		icon, err := loadIcon(cfg.IconPath)
		if err != nil {
			log.Fatalf("Failed to load icon: %v", err)
		}
		if err := win.SetIcon(icon); err != nil {
			log.Fatalf("Failed to set icon: %v", err)
		}
	}

	initialMode, err := winloop.ParseMode(cfg.Mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	log.Printf("Window %#x opened (%dx%d, %s mode)", uintptr(win.ID()), win.Width(), win.Height(), cfg.Mode)

	err = loop.Run(func(ev winloop.Event, mgr *winloop.EventManager) {
		switch e := ev.(type) {
		case winloop.CreateEvent:
			mgr.SetMode(initialMode)
		case winloop.ResizeEvent:
			logger.Info("resize", "width", e.Width, "height", e.Height)
		case winloop.MousePressEvent:
			logger.Info("press", "button", e.Button.String(), "x", e.X, "y", e.Y)
			mgr.RequestRedraw(e.Window)
		case winloop.CloseEvent:
			logger.Info("close requested")
			mgr.Close(e.Window)
			mgr.Exit()
		default:
			if traceEvents {
				logger.Debug("event", "type", fmt.Sprintf("%T", ev))
			}
		}
	})
	if err != nil {
		log.Fatalf("Event loop failed: %v", err)
	}
	if err := loop.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down event loop: %v", err)
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadIcon(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
