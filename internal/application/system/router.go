// Package system sits between host input queries and the simulation. The
// Router decides per query whether the host sees live or recorded input.
package system

import "github.com/younwookim/tas/internal/application/replay"

// LiveInput is the host's view of its input devices, queried by action name
type LiveInput interface {
	Button(action string) bool
	ButtonDown(action string) bool
	ButtonUp(action string) bool
	Axis(action string) float32
}

// RecordedSource serves recorded values for the current playback frame
type RecordedSource interface {
	RecordedButton(b replay.Button) bool
	RecordedButtonDown(b replay.Button) bool
	RecordedButtonUp(b replay.Button) bool
	RecordedAxis(a replay.Axis) float32
}

// Router filters every input query. Each query takes the live value so the
// router can hand it back unchanged in passthrough.
type Router struct {
	blockAll     bool
	disablePause bool
	// nil means passthrough
	source RecordedSource
}

// NewRouter creates a router in passthrough mode
func NewRouter() *Router {
	return &Router{}
}

// StartPlayback substitutes recorded values from src for recorded channels
func (r *Router) StartPlayback(src RecordedSource) {
	r.source = src
}

// StopPlayback drops the recorded source and returns to passthrough
func (r *Router) StopPlayback() {
	r.source = nil
}

// Passthrough reports whether live input reaches the host unchanged
func (r *Router) Passthrough() bool {
	return r.source == nil
}

// SetBlockAll makes every query return the neutral value
func (r *Router) SetBlockAll(block bool) {
	r.blockAll = block
}

// BlockAll reports whether input is blocked
func (r *Router) BlockAll() bool {
	return r.blockAll
}

// SetDisablePause makes queries for the pause action return false
func (r *Router) SetDisablePause(disable bool) {
	r.disablePause = disable
}

// PauseDisabled reports whether the pause action is suppressed
func (r *Router) PauseDisabled() bool {
	return r.disablePause
}

func (r *Router) filterButton(action string, live bool, recorded func(RecordedSource, replay.Button) bool) bool {
	if r.blockAll {
		return false
	}
	if r.disablePause && action == replay.PauseAction {
		return false
	}
	if r.source == nil {
		return live
	}
	b, ok := replay.LookupButton(action)
	if !ok {
		return live
	}
	return recorded(r.source, b)
}

// Button filters a held query
func (r *Router) Button(action string, live bool) bool {
	return r.filterButton(action, live, RecordedSource.RecordedButton)
}

// ButtonDown filters a press edge query
func (r *Router) ButtonDown(action string, live bool) bool {
	return r.filterButton(action, live, RecordedSource.RecordedButtonDown)
}

// ButtonUp filters a release edge query
func (r *Router) ButtonUp(action string, live bool) bool {
	return r.filterButton(action, live, RecordedSource.RecordedButtonUp)
}

// Axis filters an axis query
func (r *Router) Axis(action string, live float32) float32 {
	if r.blockAll {
		return 0
	}
	if r.source == nil {
		return live
	}
	a, ok := replay.LookupAxis(action)
	if !ok {
		return live
	}
	return r.source.RecordedAxis(a)
}

// Intercept wraps live so that every query goes through the router. Host
// code reads input only through the returned value.
func (r *Router) Intercept(live LiveInput) LiveInput {
	return &intercepted{router: r, live: live}
}

type intercepted struct {
	router *Router
	live   LiveInput
}

func (i *intercepted) Button(action string) bool {
	return i.router.Button(action, i.live.Button(action))
}

func (i *intercepted) ButtonDown(action string) bool {
	return i.router.ButtonDown(action, i.live.ButtonDown(action))
}

func (i *intercepted) ButtonUp(action string) bool {
	return i.router.ButtonUp(action, i.live.ButtonUp(action))
}

func (i *intercepted) Axis(action string) float32 {
	return i.router.Axis(action, i.live.Axis(action))
}

// Snapshot reads every recorded channel from live in one pass. It bypasses
// the router: recording captures what the devices report.
func Snapshot(live LiveInput) replay.Sample {
	var s replay.Sample
	for i := range s.Axes {
		s.Axes[i] = live.Axis(replay.Axis(i).String())
	}
	for i := range s.Buttons {
		s.Buttons[i] = live.Button(replay.Button(i).String())
	}
	return s
}
