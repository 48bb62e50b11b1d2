package replay

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ledger errors
var (
	// ErrInconsistent means channel lengths disagree. RecordFrame can only
	// report it if a ledger was corrupted outside ReplaceAll.
	ErrInconsistent = errors.New("inconsistent ledger channels")

	// ErrInvalidSpeed rejects speed multipliers that are not finite and positive
	ErrInvalidSpeed = errors.New("speed multiplier must be positive")

	// ErrInvalidMetadata rejects a level or checkpoint id that some ledger
	// format could not carry unchanged
	ErrInvalidMetadata = errors.New("invalid ledger metadata")
)

// Ledger is the frame-indexed record of every input captured for one run.
//
// Axis and button channels always share one length, FrameCount. Speed
// overrides and checkpoint resets are sparse: they may be shorter than
// FrameCount and missing entries read as "absent".
type Ledger struct {
	axes    [NumAxes][]float32
	buttons [NumButtons][]bool

	// 0 means no override for the frame
	speeds []float32
	resets []bool

	// LevelID is the level the ledger was recorded against; empty means any level
	LevelID string
	// CheckpointID is the checkpoint the run starts from, or CheckpointStart
	CheckpointID int
}

// Contents is the full set of channels and metadata of a ledger. It is the
// unit of bulk replacement: the codec builds one, then swaps it in whole.
type Contents struct {
	Axes         [NumAxes][]float32
	Buttons      [NumButtons][]bool
	Speeds       []float32
	Resets       []bool
	LevelID      string
	CheckpointID int
}

// New creates an empty ledger not bound to any level
func New() *Ledger {
	l := &Ledger{CheckpointID: CheckpointStart}
	for i := range l.axes {
		l.axes[i] = make([]float32, 0, 1024)
	}
	for i := range l.buttons {
		l.buttons[i] = make([]bool, 0, 1024)
	}
	return l
}

// FromContents builds a ledger from validated contents
func FromContents(c Contents) (*Ledger, error) {
	l := New()
	if err := l.ReplaceAll(c); err != nil {
		return nil, err
	}
	return l, nil
}

// FrameCount returns the number of recorded frames
func (l *Ledger) FrameCount() int {
	return len(l.axes[MoveHorizontal])
}

func (l *Ledger) consistent() bool {
	n := l.FrameCount()
	for _, ch := range l.axes {
		if len(ch) != n {
			return false
		}
	}
	for _, ch := range l.buttons {
		if len(ch) != n {
			return false
		}
	}
	return true
}

// RecordFrame appends one value to every channel
func (l *Ledger) RecordFrame(s Sample) error {
	if !l.consistent() {
		return fmt.Errorf("record frame %d: %w", l.FrameCount(), ErrInconsistent)
	}
	for i := range l.axes {
		l.axes[i] = append(l.axes[i], s.Axes[i])
	}
	for i := range l.buttons {
		l.buttons[i] = append(l.buttons[i], s.Buttons[i])
	}
	return nil
}

// Axis returns the recorded axis value. Like slice indexing, an out of
// range frame panics; callers clamp first.
func (l *Ledger) Axis(a Axis, frame int) float32 {
	return l.axes[a][frame]
}

// Button returns whether the button was held on the frame
func (l *Ledger) Button(b Button, frame int) bool {
	return l.buttons[b][frame]
}

// ButtonDown reports a press edge: held now and not held on the previous frame
func (l *Ledger) ButtonDown(b Button, frame int) bool {
	held := l.buttons[b]
	return held[frame] && (frame == 0 || !held[frame-1])
}

// ButtonUp reports a release edge: not held now but held on the previous frame
func (l *Ledger) ButtonUp(b Button, frame int) bool {
	held := l.buttons[b]
	return !held[frame] && frame > 0 && held[frame-1]
}

// Frame returns every channel of one frame as a sample
func (l *Ledger) Frame(frame int) Sample {
	var s Sample
	for i := range l.axes {
		s.Axes[i] = l.axes[i][frame]
	}
	for i := range l.buttons {
		s.Buttons[i] = l.buttons[i][frame]
	}
	return s
}

// Speed returns the speed override for the frame, if there is one
func (l *Ledger) Speed(frame int) (float32, bool) {
	if frame < 0 || frame >= len(l.speeds) || l.speeds[frame] == 0 {
		return 0, false
	}
	return l.speeds[frame], true
}

// SetSpeed sets a speed override, growing the sparse sequence as needed
func (l *Ledger) SetSpeed(frame int, multiplier float32) error {
	if !validSpeed(multiplier) {
		return fmt.Errorf("frame %d: %w: %v", frame, ErrInvalidSpeed, multiplier)
	}
	for len(l.speeds) <= frame {
		l.speeds = append(l.speeds, 0)
	}
	l.speeds[frame] = multiplier
	return nil
}

// HasSpeeds reports whether any frame carries a speed override
func (l *Ledger) HasSpeeds() bool {
	for _, s := range l.speeds {
		if s != 0 {
			return true
		}
	}
	return false
}

// CheckpointReset reports whether playback reloads the checkpoint on the frame
func (l *Ledger) CheckpointReset(frame int) bool {
	return frame >= 0 && frame < len(l.resets) && l.resets[frame]
}

// SetCheckpointReset marks or clears a checkpoint reset, padding with false
func (l *Ledger) SetCheckpointReset(frame int, reset bool) {
	if frame < 0 {
		return
	}
	for len(l.resets) <= frame {
		l.resets = append(l.resets, false)
	}
	l.resets[frame] = reset
}

// HasCheckpointResets reports whether any frame is marked for a checkpoint reset
func (l *Ledger) HasCheckpointResets() bool {
	for _, r := range l.resets {
		if r {
			return true
		}
	}
	return false
}

// Contents returns a deep copy of the ledger
func (l *Ledger) Contents() Contents {
	c := Contents{
		Speeds:       append([]float32(nil), l.speeds...),
		Resets:       append([]bool(nil), l.resets...),
		LevelID:      l.LevelID,
		CheckpointID: l.CheckpointID,
	}
	for i := range l.axes {
		c.Axes[i] = append([]float32(nil), l.axes[i]...)
	}
	for i := range l.buttons {
		c.Buttons[i] = append([]bool(nil), l.buttons[i]...)
	}
	return c
}

// ReplaceAll swaps every channel and all metadata for those in c. The slices
// in c are taken over, not copied. Validation runs first, so a failed call
// leaves the ledger as it was.
func (l *Ledger) ReplaceAll(c Contents) error {
	n := len(c.Axes[MoveHorizontal])
	for i, ch := range c.Axes {
		if len(ch) != n {
			return fmt.Errorf("%w: axis %q has %d frames, expected %d", ErrInconsistent, Axis(i), len(ch), n)
		}
	}
	for i, ch := range c.Buttons {
		if len(ch) != n {
			return fmt.Errorf("%w: button %q has %d frames, expected %d", ErrInconsistent, Button(i), len(ch), n)
		}
	}
	if len(c.Speeds) > n {
		return fmt.Errorf("%w: %d speed entries for %d frames", ErrInconsistent, len(c.Speeds), n)
	}
	if len(c.Resets) > n {
		return fmt.Errorf("%w: %d checkpoint resets for %d frames", ErrInconsistent, len(c.Resets), n)
	}
	for i, s := range c.Speeds {
		if s != 0 && !validSpeed(s) {
			return fmt.Errorf("frame %d: %w: %v", i, ErrInvalidSpeed, s)
		}
	}
	if err := ValidateLevelID(c.LevelID); err != nil {
		return err
	}
	if err := ValidateCheckpointID(c.CheckpointID); err != nil {
		return err
	}

	l.axes = c.Axes
	l.buttons = c.Buttons
	l.speeds = c.Speeds
	l.resets = c.Resets
	l.LevelID = c.LevelID
	l.CheckpointID = c.CheckpointID
	return nil
}

// ValidateLevelID accepts ids every ledger format stores verbatim: valid
// UTF-8 with no control characters and no leading or trailing whitespace.
// The empty id is valid.
func ValidateLevelID(id string) error {
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: level id %q is not valid UTF-8", ErrInvalidMetadata, id)
	}
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("%w: level id %q has surrounding whitespace", ErrInvalidMetadata, id)
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: level id %q has control characters", ErrInvalidMetadata, id)
	}
	return nil
}

// ValidateCheckpointID accepts CheckpointStart and any checkpoint index that
// fits the binary format's int32 field
func ValidateCheckpointID(id int) error {
	if id < CheckpointStart || id > math.MaxInt32 {
		return fmt.Errorf("%w: checkpoint id %d out of range [%d, %d]", ErrInvalidMetadata, id, CheckpointStart, math.MaxInt32)
	}
	return nil
}

func validSpeed(m float32) bool {
	f := float64(m)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func formatAxis(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
