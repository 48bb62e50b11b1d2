// Package playback records live input into a ledger and plays it back
// frame by frame.
//
// The engine is driven by the host loop once per frame:
//
//	BeginFrame()     poll the opened ledger file for edits
//	StepSimulated()  once per simulation step
//	EndFrame()       advance resets, record or play one frame
//
// Every session starts from a freshly reloaded level, so that the same
// inputs drive the simulation through the same states.
package playback

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/younwookim/tas/internal/application/replay"
	"github.com/younwookim/tas/internal/application/state"
	"github.com/younwookim/tas/internal/application/system"
)

// CheckpointCurrent asks StartRecordingFromCheckpoint to use the checkpoint
// the player last reached
const CheckpointCurrent = -2

// Engine owns the active ledger and the recording/playback state machine
type Engine struct {
	host   Host
	router *system.Router
	logger *log.Logger
	now    func() time.Time

	ledger *replay.Ledger
	mode   state.Mode

	// counter is the number of completed frames
	counter    int
	startFrame int
	// lastFrame keeps CurrentFrame meaningful once a session ended
	lastFrame int

	speed speedControl
	reset resetSequence

	// deferredPlayback waits for the ledger's level to finish loading
	deferredPlayback bool
	checkpointReset  bool
	lastSave         int

	// steps counts simulation steps since the last EndFrame
	steps      int
	justLoaded bool

	watch fileWatch
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the time source used to throttle file polling
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWatchInterval sets how often the opened ledger file is polled
func WithWatchInterval(d time.Duration) Option {
	return func(e *Engine) { e.watch.interval = d }
}

// WithSpeeds sets the speed table. baseRate is the rate of 1x in ticks per
// second, rates are the steppable rates and defaultIndex the one sessions
// start and stop at.
func WithSpeeds(baseRate int, rates []int, defaultIndex int) Option {
	return func(e *Engine) {
		e.speed = newSpeedControl(baseRate, rates, defaultIndex)
	}
}

// New creates a stopped engine with an empty ledger
func New(host Host, router *system.Router, opts ...Option) *Engine {
	e := &Engine{
		host:     host,
		router:   router,
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
		ledger:   replay.New(),
		speed:    newSpeedControl(DefaultBaseRate, DefaultSpeeds, DefaultSpeedIndex),
		lastSave: -1,
		watch:    fileWatch{interval: DefaultWatchInterval},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.applyRate()
	return e
}

// State returns the current mode
func (e *Engine) State() state.Mode {
	return e.mode
}

// CurrentFrame returns the session frame: the frame being recorded or
// played, or the last one of the previous session when stopped.
func (e *Engine) CurrentFrame() int {
	if e.mode.Active() {
		return e.counter - e.startFrame
	}
	return e.lastFrame
}

// TotalFrames returns the frame count of the active ledger
func (e *Engine) TotalFrames() int {
	return e.ledger.FrameCount()
}

// Ledger returns the active ledger. It is replaced, not mutated, by Open and
// by the start of a recording.
func (e *Engine) Ledger() *replay.Ledger {
	return e.ledger
}

// Resetting reports whether a reset sequence is in flight
func (e *Engine) Resetting() bool {
	return e.reset.active()
}

// BeginFrame runs the start of frame checks
func (e *Engine) BeginFrame() {
	e.checkFileChanged()
}

// StepSimulated is called once for every simulation step the host runs
func (e *Engine) StepSimulated() {
	e.steps++
}

// EndFrame runs the late per-frame logic and advances the frame counter
func (e *Engine) EndFrame() {
	steps := e.steps
	e.steps = 0
	justLoaded := e.justLoaded
	e.justLoaded = false

	defer func() { e.counter++ }()

	if e.reset.active() {
		e.advanceReset()
		return
	}

	// Under ebiten every Update is exactly one step, so in practice this
	// only fires on zero steps (a paused host). Hosts that step more than
	// once per frame are caught here too.
	if e.mode.Active() && !justLoaded && steps != 1 {
		e.logger.Printf("%v", fmt.Errorf("%s frame %d ran %d simulation steps: %w", e.mode, e.CurrentFrame(), steps, ErrDesync))
		e.stopSession()
		return
	}

	switch e.mode {
	case state.Recording:
		if err := e.ledger.RecordFrame(system.Snapshot(e.host.Input())); err != nil {
			e.logger.Printf("recording stopped: %v", err)
			e.stopSession()
		}
	case state.Playing:
		e.playFrame()
	}

	if e.checkpointReset {
		e.checkpointReset = false
		e.host.ResetToCheckpoint()
	}
}

func (e *Engine) playFrame() {
	frame := e.CurrentFrame()

	if e.ledger.CheckpointReset(frame) {
		e.logger.Printf("checkpoint reset on frame %d", frame)
		e.checkpointReset = true
	}

	if m, ok := e.ledger.Speed(frame); ok {
		e.speed.override(m)
		e.applyRate()
	} else if e.speed.clearOverride() {
		e.applyRate()
	}

	if frame+1 >= e.ledger.FrameCount() {
		e.logger.Printf("playback finished after %d frames", e.ledger.FrameCount())
		e.stopSession()
	}
}

// LevelLoaded is the host's signal that a level finished loading
func (e *Engine) LevelLoaded(level string) {
	e.justLoaded = true

	if e.mode == state.Playing && (e.ledger.LevelID == "" || level != e.ledger.LevelID) {
		frame := e.CurrentFrame()
		e.logger.Printf("level finished on frame %d with %d frames remaining", frame, e.ledger.FrameCount()-frame-1)
		e.stopSession()
	}

	e.completeReset()

	if e.deferredPlayback {
		e.deferredPlayback = false
		if level == e.ledger.LevelID {
			e.StartPlayback()
		} else {
			e.logger.Printf("playback cancelled: loaded %q, ledger needs %q", level, e.ledger.LevelID)
		}
	}

	e.applyRate()
}

// LevelUnloaded is the host's signal that the active level went away
func (e *Engine) LevelUnloaded() {
	e.lastSave = -1
}

// SaveEvent is the host's signal that the player reached a checkpoint
func (e *Engine) SaveEvent(checkpoint int) {
	e.lastSave = checkpoint
}

// StartRecording reloads the level and then records from its start
func (e *Engine) StartRecording() {
	if e.mode.Active() || e.reset.active() {
		return
	}
	e.deferredPlayback = false
	e.beginReset(func() { e.beginRecording(replay.CheckpointStart) })
}

// StartRecordingFromCheckpoint reloads the level, moves the player to the
// checkpoint and records from there. CheckpointCurrent selects the last
// reached checkpoint.
func (e *Engine) StartRecordingFromCheckpoint(checkpoint int) {
	if e.mode.Active() || e.reset.active() {
		return
	}
	if checkpoint == CheckpointCurrent {
		checkpoint = e.lastSave
		if checkpoint < 0 {
			checkpoint = e.host.CurrentCheckpointIndex()
		}
	}
	if checkpoint < 0 {
		checkpoint = replay.CheckpointStart
	}
	e.deferredPlayback = false
	e.beginReset(func() { e.beginRecording(checkpoint) })
}

func (e *Engine) beginRecording(checkpoint int) {
	if checkpoint >= 0 {
		e.host.TeleportToCheckpoint(checkpoint)
	}

	e.ledger = replay.New()
	e.ledger.LevelID = e.host.CurrentLevel()
	e.ledger.CheckpointID = checkpoint

	e.mode = state.Recording
	e.startFrame = e.counter
	e.router.SetDisablePause(true)
	e.router.StopPlayback()

	if checkpoint >= 0 {
		e.logger.Printf("recording %s from checkpoint %d", e.ledger.LevelID, checkpoint)
	} else {
		e.logger.Printf("recording %s", e.ledger.LevelID)
	}
}

// StopRecording ends a recording. It is ignored while not recording or
// while a reset is in flight.
func (e *Engine) StopRecording() {
	if e.mode != state.Recording || e.reset.active() {
		return
	}
	e.logger.Printf("recorded %d frames", e.ledger.FrameCount())
	e.stopSession()
}

// TriggerCheckpointReset puts the player back at the last checkpoint at the
// end of this frame. While recording the frame is marked so playback does
// the same.
func (e *Engine) TriggerCheckpointReset() {
	if e.reset.active() {
		return
	}
	e.checkpointReset = true

	if e.mode != state.Recording {
		return
	}
	frame := e.CurrentFrame()
	e.logger.Printf("checkpoint reset marked on frame %d", frame)
	e.ledger.SetCheckpointReset(frame, true)
}

// StartPlayback plays the ledger from its first frame. When the ledger
// belongs to another level, that level is loaded first and playback starts
// once it is active.
func (e *Engine) StartPlayback() {
	if e.ledger.FrameCount() < 1 || e.mode.Active() || e.reset.active() {
		return
	}

	if level := e.ledger.LevelID; level != "" && level != e.host.CurrentLevel() {
		e.logger.Printf("loading %s before playback", level)
		e.deferredPlayback = true
		e.host.LoadLevel(level)
		return
	}

	e.beginReset(e.beginPlayback)
}

func (e *Engine) beginPlayback() {
	if e.ledger.CheckpointID >= 0 {
		e.host.TeleportToCheckpoint(e.ledger.CheckpointID)
	}

	e.mode = state.Playing
	e.startFrame = e.counter
	e.router.SetDisablePause(true)
	e.router.StartPlayback(e)

	e.logger.Printf("playing %d frames", e.ledger.FrameCount())
}

// StopPlayback ends playback, or cancels one waiting for its level
func (e *Engine) StopPlayback() {
	e.deferredPlayback = false
	if e.mode != state.Playing || e.reset.active() {
		return
	}
	e.stopSession()
}

func (e *Engine) stopSession() {
	e.lastFrame = e.CurrentFrame()
	e.mode = state.Stopped
	e.checkpointReset = false

	e.speed.restoreDefault()
	e.applyRate()

	e.router.SetDisablePause(false)
	e.router.StopPlayback()
}

func (e *Engine) clampedFrame() int {
	frame := min(e.CurrentFrame(), e.ledger.FrameCount()-1)
	return max(frame, 0)
}

func (e *Engine) readable() bool {
	return e.ledger.FrameCount() > 0
}

// RecordedButton returns the recorded held state at the current frame
func (e *Engine) RecordedButton(b replay.Button) bool {
	return e.readable() && e.ledger.Button(b, e.clampedFrame())
}

// RecordedButtonDown returns the recorded press edge at the current frame
func (e *Engine) RecordedButtonDown(b replay.Button) bool {
	return e.readable() && e.ledger.ButtonDown(b, e.clampedFrame())
}

// RecordedButtonUp returns the recorded release edge at the current frame
func (e *Engine) RecordedButtonUp(b replay.Button) bool {
	return e.readable() && e.ledger.ButtonUp(b, e.clampedFrame())
}

// RecordedAxis returns the recorded axis value at the current frame
func (e *Engine) RecordedAxis(a replay.Axis) float32 {
	if !e.readable() {
		return 0
	}
	return e.ledger.Axis(a, e.clampedFrame())
}
