package playback

// resetPhase tracks where a reset sequence is
type resetPhase int

const (
	resetIdle resetPhase = iota
	// resetSettling lets one simulation step run with input blocked and
	// the player at rest
	resetSettling
	// resetAwaitingLoad waits for the host to report the reloaded level
	resetAwaitingLoad
)

// resetSequence returns the simulation to a reproducible state before a
// session starts. then runs once the reloaded level is active.
type resetSequence struct {
	phase resetPhase
	// settleFrame is the frame the sequence started in
	settleFrame int
	then        func()
}

func (r *resetSequence) active() bool {
	return r.phase != resetIdle
}

func (e *Engine) beginReset(then func()) {
	if e.reset.active() {
		return
	}
	e.reset = resetSequence{phase: resetSettling, settleFrame: e.counter, then: then}

	e.router.SetBlockAll(true)
	e.host.SetInputEnabled(false)
	e.host.ZeroPlayerMotion()
}

// advanceReset runs from EndFrame. The reload is requested at the end of
// the first full frame after the sequence started.
func (e *Engine) advanceReset() {
	if e.reset.phase != resetSettling || e.counter <= e.reset.settleFrame {
		return
	}
	e.reset.phase = resetAwaitingLoad
	e.host.RestartLevel()
}

// completeReset runs from LevelLoaded
func (e *Engine) completeReset() {
	if e.reset.phase != resetAwaitingLoad {
		return
	}
	then := e.reset.then
	e.reset = resetSequence{}

	e.host.SetInputEnabled(true)
	e.router.SetBlockAll(false)

	if then != nil {
		then()
	}
}
