package state

// Mode represents what the playback engine is doing with input
type Mode int

const (
	Stopped Mode = iota
	Recording
	Playing
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case Stopped:
		return "Stopped"
	case Recording:
		return "Recording"
	case Playing:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Active reports whether a recording or playback session is running
func (m Mode) Active() bool {
	return m == Recording || m == Playing
}
