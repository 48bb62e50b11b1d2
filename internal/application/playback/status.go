package playback

import (
	"fmt"
	"strconv"

	"github.com/younwookim/tas/internal/application/state"
)

// Status is a snapshot of the engine for display
type Status struct {
	Mode       state.Mode
	Frame      int
	Total      int
	Rate       int
	Multiplier float32
	Resetting  bool
}

// Status returns the current engine status
func (e *Engine) Status() Status {
	return Status{
		Mode:       e.mode,
		Frame:      e.CurrentFrame(),
		Total:      e.ledger.FrameCount(),
		Rate:       e.TargetRate(),
		Multiplier: e.speed.multiplier(),
		Resetting:  e.reset.active(),
	}
}

// String renders the status as a single HUD line
func (s Status) String() string {
	speed := strconv.FormatFloat(float64(s.Multiplier), 'g', 4, 32) + "x"
	switch {
	case s.Resetting:
		return fmt.Sprintf("RESET %s", speed)
	case s.Mode == state.Recording:
		return fmt.Sprintf("REC %d %s", s.Frame, speed)
	case s.Mode == state.Playing:
		return fmt.Sprintf("PLAY %d/%d %s", s.Frame, s.Total, speed)
	default:
		return fmt.Sprintf("STOP %d/%d %s", s.Frame, s.Total, speed)
	}
}
