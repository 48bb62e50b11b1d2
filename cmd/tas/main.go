// Command tas runs the sandbox platformer with the input recorder attached.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tas/internal/application/command"
	"github.com/younwookim/tas/internal/application/game"
	"github.com/younwookim/tas/internal/application/playback"
	"github.com/younwookim/tas/internal/application/scene/sandbox"
	"github.com/younwookim/tas/internal/application/system"
	"github.com/younwookim/tas/internal/infrastructure/config"
)

// app is the wired program, ready to hand to ebiten
type app struct {
	game   *game.Game
	scene  *sandbox.Scene
	engine *playback.Engine
	width  int
	height int
}

func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.NewLoader(dir).LoadAll()
	}
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, fmt.Errorf("config subfs: %w", err)
	}
	return config.NewFSLoader(fsys, "configs").LoadAll()
}

// newApp wires the scene, the recorder and the hotkeys together
func newApp(cfg *config.Config, opts config.Options, logger *log.Logger) (*app, error) {
	sceneLogger := log.New(io.Discard, "", 0)
	if opts.Verbose {
		sceneLogger = logger
	}

	keyboard, err := system.NewKeyboard(cfg.TAS.Bindings, nil)
	if err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}
	router := system.NewRouter()

	// the HUD reads the engine, which does not exist yet
	var engine *playback.Engine
	status := func() string { return engine.Status().String() }

	sc, err := sandbox.New(cfg, keyboard, router, opts.Level,
		sandbox.WithStatus(status),
		sandbox.WithLogger(sceneLogger),
	)
	if err != nil {
		return nil, err
	}

	pb := cfg.TAS.Playback
	baseRate := pb.BaseRate
	if baseRate <= 0 {
		baseRate = playback.DefaultBaseRate
	}
	engine = playback.New(sc, router,
		playback.WithLogger(logger),
		playback.WithSpeeds(baseRate, pb.Speeds, pb.DefaultSpeedIndex),
		playback.WithWatchInterval(time.Duration(pb.WatchIntervalMs)*time.Millisecond),
	)
	sc.SetSignals(engine)

	hotkeys, err := command.NewHotkeys(cfg.TAS.Hotkeys)
	if err != nil {
		return nil, fmt.Errorf("hotkeys: %w", err)
	}
	path := cfg.TAS.Ledger
	if opts.Open != "" {
		path = opts.Open
	}
	if opts.Verbose {
		for _, b := range hotkeys.Bindings() {
			logger.Printf("hotkey %s: %s", b.Key, b.Kind)
		}
	}
	dispatcher := command.NewDispatcher(engine, path, logger)
	dispatcher.SetCheckpoint(opts.Checkpoint)
	ctrl := command.NewController(hotkeys, dispatcher, logger)

	if opts.Open != "" {
		if err := engine.Open(opts.Open); err != nil {
			return nil, err
		}
	}
	if opts.Record {
		if err := dispatcher.Dispatch(recordCommand(opts)); err != nil {
			return nil, err
		}
	}

	d := cfg.TAS.Display
	g := game.New(sc, d.ScreenWidth, d.ScreenHeight,
		game.WithFrameHooks(engine),
		game.WithController(ctrl),
		game.WithDT(1.0/float64(baseRate)),
	)

	return &app{
		game:   g,
		scene:  sc,
		engine: engine,
		width:  d.ScreenWidth * max(d.Scale, 1),
		height: d.ScreenHeight * max(d.Scale, 1),
	}, nil
}

// recordCommand picks how -record starts: from the level start unless a
// checkpoint was named
func recordCommand(opts config.Options) command.Kind {
	if opts.Checkpoint == playback.CheckpointCurrent {
		return command.StartRecording
	}
	return command.StartRecordingFromCheckpoint
}

func main() {
	opts, err := config.ParseOptions(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	flags := log.LstdFlags
	if opts.Verbose {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	logger := log.New(os.Stderr, "tas: ", flags)

	cfg, err := loadConfig(opts.ConfigDir)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	a, err := newApp(cfg, opts, logger)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}

	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle("TAS Sandbox")

	if err := ebiten.RunGame(a.game); err != nil {
		logger.Fatal(err)
	}
}
