package playback

import "github.com/younwookim/tas/internal/application/system"

// Host is what the engine needs from the game it runs in. Level loads are
// asynchronous: LoadLevel and RestartLevel only request a load, and the host
// reports completion through Engine.LevelLoaded.
type Host interface {
	// CurrentLevel returns the id of the active level
	CurrentLevel() string
	LoadLevel(id string)
	RestartLevel()

	// ResetToCheckpoint puts the player back at the last reached checkpoint
	// without a level load
	ResetToCheckpoint()
	TeleportToCheckpoint(index int)
	// CurrentCheckpointIndex returns the last reached checkpoint, or -1
	CurrentCheckpointIndex() int

	// SetInputEnabled turns the live input devices on or off
	SetInputEnabled(enabled bool)
	// ZeroPlayerMotion stops the player so a reload starts from rest
	ZeroPlayerMotion()
	// SetTargetRate sets the simulation pace in ticks per second
	SetTargetRate(ticksPerSecond int)

	// Input returns the live devices, unfiltered by the router
	Input() system.LiveInput
}
