// Package sandbox provides the platforming scene the recorder runs in.
package sandbox

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/tas/internal/application/system"
	"github.com/younwookim/tas/internal/domain/entity"
	"github.com/younwookim/tas/internal/infrastructure/config"
)

// Colors for rendering
var (
	colorBG         = color.RGBA{26, 26, 46, 255}
	colorPlatform   = color.RGBA{80, 80, 100, 255}
	colorPlayer     = color.RGBA{100, 200, 100, 255}
	colorFacing     = color.RGBA{230, 240, 230, 255}
	colorCheckpoint = color.RGBA{90, 120, 200, 160}
	colorReached    = color.RGBA{120, 200, 255, 220}
	colorGoal       = color.RGBA{255, 215, 0, 200}
)

const (
	playerWidth  = 8
	playerHeight = 12
)

// Device is a live input source that can be switched off. Poll samples it
// once per tick.
type Device interface {
	system.LiveInput
	Poll()
	SetEnabled(enabled bool)
}

// Signals receives the scene's level and simulation events
type Signals interface {
	LevelLoaded(level string)
	LevelUnloaded()
	SaveEvent(checkpoint int)
	StepSimulated()
}

type nopSignals struct{}

func (nopSignals) LevelLoaded(string) {}
func (nopSignals) LevelUnloaded()     {}
func (nopSignals) SaveEvent(int)      {}
func (nopSignals) StepSimulated()     {}

// Scene is a single player platformer. Every read of player input goes
// through the router, so recorded input drives it exactly like live input.
type Scene struct {
	tas    *config.TASConfig
	levels map[string]*entity.Level
	level  *entity.Level
	body   *entity.Body

	physics *system.PhysicsSystem
	input   *system.InputSystem

	device  Device
	routed  system.LiveInput
	signals Signals

	// checkpoint is the last reached checkpoint, or -1
	checkpoint int
	// pending is a level requested by LoadLevel; it loads on the next update
	pending string
	loading bool

	paused       bool
	lookX, lookY float64
	steps        int

	setTPS func(int)
	status func() string
	logger *log.Logger

	screenW int
	screenH int
}

// Option configures a Scene
type Option func(*Scene)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Scene) { s.logger = l }
}

// WithStatus sets the source of the HUD status line
func WithStatus(status func() string) Option {
	return func(s *Scene) { s.status = status }
}

// WithTPSSetter replaces ebiten.SetTPS as the target of SetTargetRate
func WithTPSSetter(set func(int)) Option {
	return func(s *Scene) { s.setTPS = set }
}

// New creates the scene with every configured level and loads start, or
// the first configured level when start is empty.
func New(cfg *config.Config, device Device, router *system.Router, start string, opts ...Option) (*Scene, error) {
	if len(cfg.TAS.Levels) == 0 {
		return nil, fmt.Errorf("no levels configured")
	}
	if start == "" {
		start = cfg.TAS.Levels[0]
	}

	levels := make(map[string]*entity.Level, len(cfg.Levels))
	for id, lc := range cfg.Levels {
		levels[id] = system.LoadLevel(lc)
	}
	if _, ok := levels[start]; !ok {
		return nil, fmt.Errorf("unknown level %q (have %v)", start, levelIDs(levels))
	}

	s := &Scene{
		tas:        cfg.TAS,
		levels:     levels,
		physics:    system.NewPhysicsSystem(&cfg.TAS.Physics, nil),
		input:      system.NewInputSystem(&cfg.TAS.Movement),
		device:     device,
		routed:     router.Intercept(device),
		signals:    nopSignals{},
		checkpoint: -1,
		setTPS:     ebiten.SetTPS,
		status:     func() string { return "" },
		logger:     log.New(io.Discard, "", 0),
		screenW:    cfg.TAS.Display.ScreenWidth,
		screenH:    cfg.TAS.Display.ScreenHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enter(levels[start])
	return s, nil
}

func levelIDs(levels map[string]*entity.Level) []string {
	ids := make([]string, 0, len(levels))
	for id := range levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetSignals sets the receiver of level and simulation events
func (s *Scene) SetSignals(sig Signals) {
	if sig == nil {
		sig = nopSignals{}
	}
	s.signals = sig
}

// enter makes level active with a fresh, unpaused player at its spawn
func (s *Scene) enter(level *entity.Level) {
	s.level = level
	s.paused = false
	s.body = entity.NewBody(level.SpawnX, level.SpawnY, playerWidth, playerHeight)
	s.checkpoint = -1
	s.physics.SetLevel(level)
}

// Body returns the player body
func (s *Scene) Body() *entity.Body {
	return s.body
}

// Paused reports whether the simulation is paused
func (s *Scene) Paused() bool {
	return s.paused
}

// CurrentLevel returns the id of the active level
func (s *Scene) CurrentLevel() string {
	return s.level.ID
}

// LoadLevel requests a level load. It completes at the start of the next
// update.
func (s *Scene) LoadLevel(id string) {
	if _, ok := s.levels[id]; !ok {
		s.logger.Printf("load level: unknown level %q", id)
		return
	}
	s.pending = id
	s.loading = true
}

// RestartLevel reloads the active level
func (s *Scene) RestartLevel() {
	s.LoadLevel(s.level.ID)
}

// ResetToCheckpoint puts the player at rest at the last reached checkpoint,
// or at the level spawn when none was reached
func (s *Scene) ResetToCheckpoint() {
	x, y := s.level.SpawnX, s.level.SpawnY
	if s.checkpoint >= 0 {
		cp := s.level.Checkpoints[s.checkpoint]
		x, y = cp.SpawnX, cp.SpawnY
	}
	s.body.SetPixelPos(x, y)
	s.body.Stop()
}

// TeleportToCheckpoint moves the player to a checkpoint and marks it reached
func (s *Scene) TeleportToCheckpoint(index int) {
	if index < 0 || index >= len(s.level.Checkpoints) {
		s.logger.Printf("teleport: level %s has no checkpoint %d", s.level.ID, index)
		return
	}
	s.checkpoint = index
	s.ResetToCheckpoint()
}

// CurrentCheckpointIndex returns the last reached checkpoint, or -1
func (s *Scene) CurrentCheckpointIndex() int {
	return s.checkpoint
}

// SetInputEnabled turns the live device on or off
func (s *Scene) SetInputEnabled(enabled bool) {
	s.device.SetEnabled(enabled)
}

// ZeroPlayerMotion stops the player
func (s *Scene) ZeroPlayerMotion() {
	s.body.Stop()
}

// SetTargetRate sets how many updates run per second
func (s *Scene) SetTargetRate(ticksPerSecond int) {
	s.setTPS(ticksPerSecond)
}

// Input returns the live device, not filtered by the router
func (s *Scene) Input() system.LiveInput {
	return s.device
}

// Update runs one tick (implements scene.Scene)
func (s *Scene) Update(dt float64) error {
	if s.loading {
		s.finishLoad()
	}
	s.device.Poll()

	if s.routed.ButtonDown(system.ActionPause) {
		s.paused = !s.paused
	}
	if s.paused {
		return nil
	}

	s.input.UpdateBody(s.body, s.routed)
	s.physics.Update(s.body, dt)
	s.lookX, s.lookY = s.input.LookOffset(s.routed)
	s.steps++
	s.signals.StepSimulated()

	s.checkTriggers()
	return nil
}

func (s *Scene) finishLoad() {
	id := s.pending
	s.loading = false
	s.pending = ""

	s.signals.LevelUnloaded()
	s.enter(s.levels[id])
	s.logger.Printf("level %s loaded", id)
	s.signals.LevelLoaded(id)
}

func (s *Scene) checkTriggers() {
	bounds := s.body.PixelBounds()

	if cp := s.level.CheckpointAt(bounds); cp >= 0 && cp != s.checkpoint {
		s.checkpoint = cp
		s.signals.SaveEvent(cp)
	}

	if !s.loading && s.level.ReachedGoal(bounds) {
		next := s.level.Next
		if next == "" {
			next = s.level.ID
		}
		s.LoadLevel(next)
	}
}

// Draw renders the level, the player and the HUD (implements scene.Scene)
func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	camX, camY := s.camera()

	for _, p := range s.level.Platforms {
		drawRect(screen, p, camX, camY, colorPlatform)
	}
	for i, cp := range s.level.Checkpoints {
		c := colorCheckpoint
		if i == s.checkpoint {
			c = colorReached
		}
		drawRect(screen, cp.Area, camX, camY, c)
	}
	drawRect(screen, s.level.Goal, camX, camY, colorGoal)

	player := s.body.PixelBounds()
	drawRect(screen, player, camX, camY, colorPlayer)
	eye := entity.Rect{X: player.X + 1, Y: player.Y + 2, W: 2, H: 2}
	if s.body.FacingRight {
		eye.X = player.X + player.W - 3
	}
	drawRect(screen, eye, camX, camY, colorFacing)

	hud := fmt.Sprintf("%s | %s cp %d | step %d", s.status(), s.level.Name, s.checkpoint, s.steps)
	if s.paused {
		hud += " | PAUSED"
	}
	ebitenutil.DebugPrint(screen, hud)
}

// camera centers on the player plus the look offset, clamped to the level
func (s *Scene) camera() (int, int) {
	x := s.body.PixelX() + playerWidth/2 - s.screenW/2 + int(s.lookX)
	y := s.body.PixelY() + playerHeight/2 - s.screenH/2 + int(s.lookY)
	x = max(0, min(x, s.level.Width-s.screenW))
	y = max(0, min(y, s.level.Height-s.screenH))
	return x, y
}

func drawRect(screen *ebiten.Image, r entity.Rect, camX, camY int, c color.Color) {
	ebitenutil.DrawRect(screen, float64(r.X-camX), float64(r.Y-camY), float64(r.W), float64(r.H), c)
}

// OnEnter implements scene.Scene
func (s *Scene) OnEnter() {
	s.logger.Printf("entered level %s", s.level.ID)
}
