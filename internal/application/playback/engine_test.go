package playback

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tas/internal/application/replay"
	"github.com/younwookim/tas/internal/application/state"
	"github.com/younwookim/tas/internal/application/system"
)

// fakeInput is a LiveInput whose values the test sets directly
type fakeInput struct {
	held map[string]bool
	axes map[string]float32
}

func newFakeInput() *fakeInput {
	return &fakeInput{held: map[string]bool{}, axes: map[string]float32{}}
}

func (f *fakeInput) set(s replay.Sample) {
	for i, v := range s.Axes {
		f.axes[replay.Axis(i).String()] = v
	}
	for i, v := range s.Buttons {
		f.held[replay.Button(i).String()] = v
	}
}

func (f *fakeInput) Button(action string) bool     { return f.held[action] }
func (f *fakeInput) ButtonDown(action string) bool { return f.held[action] }
func (f *fakeInput) ButtonUp(action string) bool   { return false }
func (f *fakeInput) Axis(action string) float32    { return f.axes[action] }

// fakeHost records every call and defers level loads to the next frame
type fakeHost struct {
	level       string
	pendingLoad string
	loading     bool

	loadRequests     []string
	restarts         int
	checkpointResets int
	teleports        []int
	checkpoint       int
	inputEnabled     bool
	zeroed           int
	rate             int

	live *fakeInput
}

func newFakeHost(level string) *fakeHost {
	return &fakeHost{level: level, checkpoint: -1, inputEnabled: true, live: newFakeInput()}
}

func (h *fakeHost) CurrentLevel() string { return h.level }

func (h *fakeHost) LoadLevel(id string) {
	h.loadRequests = append(h.loadRequests, id)
	h.pendingLoad = id
	h.loading = true
}

func (h *fakeHost) RestartLevel() {
	h.restarts++
	h.pendingLoad = h.level
	h.loading = true
}

func (h *fakeHost) ResetToCheckpoint()               { h.checkpointResets++ }
func (h *fakeHost) TeleportToCheckpoint(index int)   { h.teleports = append(h.teleports, index) }
func (h *fakeHost) CurrentCheckpointIndex() int      { return h.checkpoint }
func (h *fakeHost) SetInputEnabled(enabled bool)     { h.inputEnabled = enabled }
func (h *fakeHost) ZeroPlayerMotion()                { h.zeroed++ }
func (h *fakeHost) SetTargetRate(ticksPerSecond int) { h.rate = ticksPerSecond }
func (h *fakeHost) Input() system.LiveInput          { return h.live }

type harness struct {
	t      *testing.T
	host   *fakeHost
	router *system.Router
	engine *Engine
	logs   *bytes.Buffer
	// steps is the number of simulation steps the next frame runs
	steps int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		host:   newFakeHost("hub"),
		router: system.NewRouter(),
		logs:   &bytes.Buffer{},
		steps:  1,
	}
	opts = append([]Option{WithLogger(log.New(h.logs, "", 0)), WithWatchInterval(0)}, opts...)
	h.engine = New(h.host, h.router, opts...)
	return h
}

// frame runs one host frame in game loop order. A requested level load
// lands during the update, then during runs as the scene would.
func (h *harness) frame(during func()) {
	e := h.engine
	e.BeginFrame()
	for i := 0; i < h.steps; i++ {
		e.StepSimulated()
	}
	if h.host.loading {
		h.host.loading = false
		h.host.level = h.host.pendingLoad
		e.LevelUnloaded()
		e.LevelLoaded(h.host.level)
	}
	if during != nil {
		during()
	}
	e.EndFrame()
}

// runUntil runs frames until the engine reaches mode, failing after limit
func (h *harness) runUntil(mode state.Mode, limit int) {
	h.t.Helper()
	for i := 0; i < limit; i++ {
		if h.engine.State() == mode && !h.engine.Resetting() {
			return
		}
		h.frame(nil)
	}
	require.Equal(h.t, mode, h.engine.State(), "mode after %d frames", limit)
}

// sampleAt builds a distinct sample for frame i
func sampleAt(i int) replay.Sample {
	var s replay.Sample
	s.Axes[replay.MoveHorizontal] = float32(i) / 4
	s.Axes[replay.LookVertical] = -float32(i)
	s.Buttons[replay.Jump] = i%2 == 1
	s.Buttons[replay.Rotate] = i == 3
	return s
}

// record runs a full recording of samples and stops it. The first sample
// lands in the frame the reloaded level becomes active.
func (h *harness) record(samples []replay.Sample) {
	h.t.Helper()
	h.frame(h.engine.StartRecording)
	h.frame(nil)
	for _, s := range samples {
		h.frame(func() { h.host.live.set(s) })
	}
	h.frame(h.engine.StopRecording)
}

func TestEngine_New(t *testing.T) {
	h := newHarness(t)
	e := h.engine

	assert.Equal(t, state.Stopped, e.State())
	assert.Equal(t, 0, e.CurrentFrame())
	assert.Equal(t, 0, e.TotalFrames())
	assert.Equal(t, 50, e.TargetRate())
	assert.Equal(t, 50, h.host.rate, "rate is pushed to the host")
	assert.True(t, h.router.Passthrough())
}

func TestEngine_StopWhileStopped(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	before := e.Ledger()

	e.StopRecording()
	e.StopPlayback()

	assert.Equal(t, state.Stopped, e.State())
	assert.Same(t, before, e.Ledger())
	assert.Equal(t, 0, h.host.zeroed)
}

func TestEngine_StartPlayback_EmptyLedger(t *testing.T) {
	h := newHarness(t)

	h.engine.StartPlayback()

	assert.Equal(t, state.Stopped, h.engine.State())
	assert.False(t, h.engine.Resetting())
	assert.False(t, h.router.BlockAll())
	assert.Equal(t, 0, h.host.zeroed)
}

func TestEngine_ResetSequence(t *testing.T) {
	h := newHarness(t)
	e := h.engine

	h.frame(e.StartRecording)

	assert.True(t, e.Resetting())
	assert.True(t, h.router.BlockAll(), "input blocked")
	assert.False(t, h.host.inputEnabled, "devices disabled")
	assert.Equal(t, 1, h.host.zeroed, "player at rest")
	assert.Equal(t, 0, h.host.restarts, "no reload in the starting frame")

	// exactly one simulation step settles before the reload
	h.frame(nil)
	assert.Equal(t, 1, h.host.restarts)
	assert.Equal(t, state.Stopped, e.State(), "continuation waits for the load")

	h.frame(nil)
	assert.False(t, e.Resetting())
	assert.False(t, h.router.BlockAll())
	assert.True(t, h.host.inputEnabled)
	assert.Equal(t, state.Recording, e.State())
	assert.True(t, h.router.PauseDisabled())
	assert.True(t, h.router.Passthrough(), "recording reads live input")
	assert.Equal(t, "hub", e.Ledger().LevelID)
	assert.Equal(t, replay.CheckpointStart, e.Ledger().CheckpointID)
}

func TestEngine_CommandsRejectedWhileResetting(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	h.frame(e.StartRecording)

	e.StopRecording()
	e.StopPlayback()
	e.StartRecordingFromCheckpoint(2)
	e.TriggerCheckpointReset()

	assert.True(t, e.Resetting())
	assert.True(t, h.router.BlockAll(), "block flag stays until the reset completes")

	h.runUntil(state.Recording, 5)
	assert.Empty(t, h.host.teleports)
	assert.Equal(t, 0, h.host.checkpointResets)

	e.StopRecording()
	assert.Equal(t, state.Stopped, e.State(), "stop accepted once the reset completed")
}

func TestEngine_RecordThenPlay(t *testing.T) {
	h := newHarness(t)
	e := h.engine

	samples := make([]replay.Sample, 5)
	for i := range samples {
		samples[i] = sampleAt(i)
	}
	h.record(samples)

	require.Equal(t, state.Stopped, e.State())
	require.Equal(t, 5, e.TotalFrames())
	for i, s := range samples {
		assert.Equal(t, s, e.Ledger().Frame(i), "recorded frame %d", i)
	}

	// live input must not leak into playback
	h.host.live.set(replay.Sample{Buttons: [replay.NumButtons]bool{true, true, true}})

	h.frame(e.StartPlayback)
	h.frame(nil)
	require.Equal(t, 2, h.host.restarts)

	var got []replay.Sample
	var frames []int
	ticks := 0
	for i := 0; i < 10; i++ {
		h.frame(func() {
			if e.State() != state.Playing {
				return
			}
			in := h.router.Intercept(h.host.live)
			got = append(got, system.Snapshot(in))
			frames = append(frames, e.CurrentFrame())
			ticks++
		})
	}

	assert.Equal(t, 5, ticks, "playback runs exactly one tick per recorded frame")
	assert.Equal(t, []int{0, 1, 2, 3, 4}, frames)
	assert.Equal(t, samples, got)
	assert.Equal(t, state.Stopped, e.State())
	assert.Equal(t, 4, e.CurrentFrame())
	assert.True(t, h.router.Passthrough())
	assert.False(t, h.router.PauseDisabled())
}

func TestEngine_PlaybackStartsOnLoadFrame(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	require.NoError(t, e.ledger.ReplaceAll(contentsOf(3, "hub")))

	h.frame(e.StartPlayback)
	h.frame(nil)

	var frames []int
	for i := 0; i < 3; i++ {
		h.frame(func() { frames = append(frames, e.CurrentFrame()) })
	}

	assert.Equal(t, []int{0, 1, 2}, frames)
	assert.Equal(t, state.Stopped, e.State())
	assert.Equal(t, 2, e.CurrentFrame())
}

func TestEngine_Clamping(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	require.NoError(t, e.ledger.ReplaceAll(contentsOf(3, "hub")))

	h.frame(e.StartPlayback)
	h.runUntil(state.Playing, 3)

	// one tick past the last recorded frame
	e.startFrame = e.counter - 3
	require.Equal(t, 3, e.CurrentFrame())

	assert.Equal(t, float32(2), e.RecordedAxis(replay.MoveHorizontal))
	assert.Equal(t, float32(2), h.router.Axis(replay.MoveHorizontal.String(), 99))
	assert.NotPanics(t, func() {
		e.RecordedButton(replay.Jump)
		e.RecordedButtonDown(replay.Jump)
		e.RecordedButtonUp(replay.Jump)
	})
}

func TestEngine_CheckpointResetMarkers(t *testing.T) {
	h := newHarness(t)
	e := h.engine

	h.frame(e.StartRecording)
	h.runUntil(state.Recording, 5)
	h.frame(nil)
	h.frame(e.TriggerCheckpointReset)

	assert.True(t, e.Ledger().CheckpointReset(2))
	assert.Equal(t, 1, h.host.checkpointResets, "reset happens at the end of the frame")

	h.frame(nil)
	h.frame(e.StopRecording)
	require.Equal(t, 4, e.TotalFrames())

	h.frame(e.StartPlayback)
	h.frame(nil)
	h.frame(nil) // load frame, playback frame 0
	h.frame(nil) // frame 1
	assert.Equal(t, 1, h.host.checkpointResets)
	h.frame(nil) // frame 2
	assert.Equal(t, 2, h.host.checkpointResets, "marker replayed on frame 2")
	assert.Equal(t, state.Playing, e.State(), "reset does not leave playback")
}

func TestEngine_TriggerCheckpointReset_Stopped(t *testing.T) {
	h := newHarness(t)

	h.frame(h.engine.TriggerCheckpointReset)

	assert.Equal(t, 1, h.host.checkpointResets)
	assert.False(t, h.engine.Ledger().HasCheckpointResets())
}

func TestEngine_SpeedOverride(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	c := contentsOf(4, "hub")
	c.Speeds = []float32{0, 8}
	require.NoError(t, e.ledger.ReplaceAll(c))

	e.IncreaseSpeed()
	require.Equal(t, 100, h.host.rate)

	h.frame(e.StartPlayback)
	h.frame(nil)
	h.frame(nil) // frame 0
	assert.Equal(t, 100, h.host.rate)

	h.frame(nil) // frame 1 overrides
	assert.Equal(t, 400, h.host.rate)
	assert.Equal(t, float32(8), e.SpeedMultiplier())

	h.frame(nil) // frame 2 falls back to the table
	assert.Equal(t, 100, h.host.rate)

	h.frame(nil) // frame 3 ends playback
	assert.Equal(t, state.Stopped, e.State())
	assert.Equal(t, 50, h.host.rate, "stop restores 1x")
}

func TestEngine_SpeedSteps(t *testing.T) {
	h := newHarness(t)
	e := h.engine

	e.DecreaseSpeed()
	e.DecreaseSpeed()
	assert.Equal(t, 10, h.host.rate)

	for i := 0; i < 20; i++ {
		e.IncreaseSpeed()
	}
	assert.Equal(t, 1000, h.host.rate, "clamped at the top")

	for i := 0; i < 20; i++ {
		e.DecreaseSpeed()
	}
	assert.Equal(t, 1, e.TargetRate(), "clamped at the bottom")
	assert.InDelta(t, 0.02, e.SpeedMultiplier(), 1e-6)
}

func TestEngine_WithSpeeds(t *testing.T) {
	h := newHarness(t, WithSpeeds(60, []int{30, 60, 120}, 1))

	assert.Equal(t, 60, h.host.rate)
	h.engine.IncreaseSpeed()
	assert.Equal(t, 120, h.host.rate)
}

func TestEngine_DeferredPlayback(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	require.NoError(t, e.ledger.ReplaceAll(contentsOf(3, "tower")))

	h.frame(e.StartPlayback)
	assert.Equal(t, []string{"tower"}, h.host.loadRequests)
	assert.False(t, e.Resetting(), "no reset before the level is active")
	assert.Equal(t, state.Stopped, e.State())

	h.frame(nil) // tower loads, playback re-enters through the reset
	assert.True(t, e.Resetting())

	h.runUntil(state.Playing, 5)
	assert.Equal(t, "tower", h.host.level)
}

func TestEngine_DeferredPlayback_Cancelled(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	require.NoError(t, e.ledger.ReplaceAll(contentsOf(3, "tower")))

	h.frame(e.StartPlayback)
	e.StopPlayback()
	h.frame(nil)

	assert.False(t, e.Resetting())
	assert.Equal(t, state.Stopped, e.State())
}

func TestEngine_LevelFinished(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	require.NoError(t, e.ledger.ReplaceAll(contentsOf(10, "hub")))

	h.frame(e.StartPlayback)
	h.runUntil(state.Playing, 5)
	h.frame(nil)

	h.host.LoadLevel("tower")
	h.frame(nil)

	assert.Equal(t, state.Stopped, e.State())
	assert.Contains(t, h.logs.String(), "frames remaining")
}

func TestEngine_Desync(t *testing.T) {
	for _, steps := range []int{0, 2} {
		h := newHarness(t)
		e := h.engine

		h.frame(e.StartRecording)
		h.runUntil(state.Recording, 5)
		h.frame(nil)
		recorded := e.TotalFrames()

		h.steps = steps
		h.frame(nil)

		assert.Equal(t, state.Stopped, e.State(), "%d steps", steps)
		assert.Equal(t, recorded, e.TotalFrames(), "desynced frame is not recorded")
		assert.Contains(t, h.logs.String(), ErrDesync.Error())
	}
}

func TestEngine_Desync_LoadFrameExempt(t *testing.T) {
	h := newHarness(t)
	e := h.engine

	h.frame(e.StartRecording)
	h.frame(nil)
	h.steps = 2
	h.frame(nil) // reload lands

	assert.Equal(t, state.Recording, e.State())
}

func TestEngine_StartRecordingFromCheckpoint(t *testing.T) {
	t.Run("last save event", func(t *testing.T) {
		h := newHarness(t)
		h.host.checkpoint = 0
		h.engine.SaveEvent(2)

		h.frame(func() { h.engine.StartRecordingFromCheckpoint(CheckpointCurrent) })
		h.runUntil(state.Recording, 5)

		assert.Equal(t, []int{2}, h.host.teleports)
		assert.Equal(t, 2, h.engine.Ledger().CheckpointID)
	})

	t.Run("host fallback", func(t *testing.T) {
		h := newHarness(t)
		h.host.checkpoint = 1

		h.frame(func() { h.engine.StartRecordingFromCheckpoint(CheckpointCurrent) })
		h.runUntil(state.Recording, 5)

		assert.Equal(t, []int{1}, h.host.teleports)
		assert.Equal(t, 1, h.engine.Ledger().CheckpointID)
	})

	t.Run("no checkpoint reached", func(t *testing.T) {
		h := newHarness(t)

		h.frame(func() { h.engine.StartRecordingFromCheckpoint(CheckpointCurrent) })
		h.runUntil(state.Recording, 5)

		assert.Empty(t, h.host.teleports)
		assert.Equal(t, replay.CheckpointStart, h.engine.Ledger().CheckpointID)
	})

	t.Run("playback teleports", func(t *testing.T) {
		h := newHarness(t)
		c := contentsOf(3, "hub")
		c.CheckpointID = 1
		require.NoError(t, h.engine.ledger.ReplaceAll(c))

		h.frame(h.engine.StartPlayback)
		h.runUntil(state.Playing, 5)

		assert.Equal(t, []int{1}, h.host.teleports)
	})
}

func TestEngine_LevelUnloadedClearsSaveEvent(t *testing.T) {
	h := newHarness(t)
	h.engine.SaveEvent(3)
	h.engine.LevelUnloaded()

	h.frame(func() { h.engine.StartRecordingFromCheckpoint(CheckpointCurrent) })
	h.runUntil(state.Recording, 5)

	assert.Empty(t, h.host.teleports)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "STOP 0/0 1x", Status{Mode: state.Stopped, Multiplier: 1}.String())
	assert.Equal(t, "REC 12 1x", Status{Mode: state.Recording, Frame: 12, Multiplier: 1}.String())
	assert.Equal(t, "PLAY 3/9 0.5x", Status{Mode: state.Playing, Frame: 3, Total: 9, Multiplier: 0.5}.String())
	assert.Equal(t, "RESET 2x", Status{Resetting: true, Multiplier: 2}.String())
}

// contentsOf builds ledger contents whose Move Horizontal axis equals the
// frame index
func contentsOf(n int, level string) replay.Contents {
	c := replay.Contents{LevelID: level, CheckpointID: replay.CheckpointStart}
	for i := range c.Axes {
		c.Axes[i] = make([]float32, n)
	}
	for i := range c.Buttons {
		c.Buttons[i] = make([]bool, n)
	}
	for f := 0; f < n; f++ {
		c.Axes[replay.MoveHorizontal][f] = float32(f)
		c.Buttons[replay.Jump][f] = f%2 == 0
	}
	return c
}
