// Package game provides the main game loop that runs a Scene and brackets
// every update with the recorder's frame hooks.
package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tas/internal/application/scene"
)

// FrameHooks are called around every update: BeginFrame before the scene
// runs and EndFrame after the controller.
type FrameHooks interface {
	BeginFrame()
	EndFrame()
}

// Controller runs once per update after the scene, e.g. to poll hotkeys
type Controller interface {
	Update() error
}

// Game implements ebiten.Game around a single Scene.
type Game struct {
	current    scene.Scene
	screenW    int
	screenH    int
	dt         float64
	hooks      FrameHooks
	controller Controller
}

// Option configures a Game
type Option func(*Game)

// WithFrameHooks brackets every update with h
func WithFrameHooks(h FrameHooks) Option {
	return func(g *Game) { g.hooks = h }
}

// WithController runs c after every scene update
func WithController(c Controller) Option {
	return func(g *Game) { g.controller = c }
}

// WithDT sets the fixed delta time passed to scenes
func WithDT(dt float64) Option {
	return func(g *Game) { g.dt = dt }
}

// New creates a new Game with the given initial scene.
// The initial scene's OnEnter is called immediately.
func New(initialScene scene.Scene, screenW, screenH int, opts ...Option) *Game {
	g := &Game{
		current: initialScene,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / 50.0, // one tick at the 1x rate
	}
	for _, opt := range opts {
		opt(g)
	}
	g.current.OnEnter()
	return g
}

// Update runs one frame: hooks, scene, controller, hooks.
// The simulation always advances by the fixed dt; speed changes alter how
// many updates run per second, not how far each one steps.
// Implements ebiten.Game interface.
func (g *Game) Update() error {
	if g.hooks != nil {
		g.hooks.BeginFrame()
	}

	if err := g.current.Update(g.dt); err != nil {
		return err
	}

	if g.controller != nil {
		if err := g.controller.Update(); err != nil {
			return err
		}
	}

	if g.hooks != nil {
		g.hooks.EndFrame()
	}
	return nil
}

// Draw renders the current scene.
// Implements ebiten.Game interface.
func (g *Game) Draw(screen *ebiten.Image) {
	g.current.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}
