// Package replay holds the frame-indexed input ledger that recording appends
// to and playback reads from.
package replay

import "strings"

// Axis identifies one analog input channel
type Axis int

const (
	MoveHorizontal Axis = iota
	MoveVertical
	LookHorizontal
	LookVertical

	// NumAxes is the number of recorded axis channels
	NumAxes
)

var axisNames = [NumAxes]string{
	MoveHorizontal: "Move Horizontal",
	MoveVertical:   "Move Vertical",
	LookHorizontal: "Look Horizontal",
	LookVertical:   "Look Vertical",
}

// String returns the action name the host uses for the axis
func (a Axis) String() string {
	if a < 0 || a >= NumAxes {
		return "Unknown"
	}
	return axisNames[a]
}

// Button identifies one digital input channel
type Button int

const (
	Jump Button = iota
	Grab
	Rotate

	// NumButtons is the number of recorded button channels
	NumButtons
)

var buttonNames = [NumButtons]string{
	Jump:   "Jump",
	Grab:   "Grab",
	Rotate: "Rotate",
}

// String returns the action name the host uses for the button
func (b Button) String() string {
	if b < 0 || b >= NumButtons {
		return "Unknown"
	}
	return buttonNames[b]
}

// PauseAction is the host action that playback suppresses
const PauseAction = "Pause"

// CheckpointStart is the checkpoint id of a recording that begins at the
// start of its level.
const CheckpointStart = -1

// LookupAxis resolves a host action name to a recorded axis.
// Matching is exact: action names are identifiers, not user text.
func LookupAxis(name string) (Axis, bool) {
	for i, n := range axisNames {
		if n == name {
			return Axis(i), true
		}
	}
	return 0, false
}

// LookupButton resolves a host action name to a recorded button.
func LookupButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), true
		}
	}
	return 0, false
}

// AxisNames returns the axis channel names in serialization order
func AxisNames() []string {
	return append([]string(nil), axisNames[:]...)
}

// ButtonNames returns the button channel names in serialization order
func ButtonNames() []string {
	return append([]string(nil), buttonNames[:]...)
}

// Sample is one frame of live input, read in a single pass so that every
// channel observes the same instant.
type Sample struct {
	Axes    [NumAxes]float32
	Buttons [NumButtons]bool
}

// String renders the sample compactly for log lines
func (s Sample) String() string {
	var sb strings.Builder
	for i, v := range s.Axes {
		if v == 0 {
			continue
		}
		sb.WriteString(axisNames[i])
		sb.WriteByte('=')
		sb.WriteString(formatAxis(v))
		sb.WriteByte(' ')
	}
	for i, held := range s.Buttons {
		if held {
			sb.WriteString(buttonNames[i])
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
