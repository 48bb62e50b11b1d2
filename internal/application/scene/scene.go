// Package scene defines the Scene interface for game screens.
//
// The game loop only talks to the interface; the sandbox level player is the
// screen it runs.
package scene

import "github.com/hajimehoshi/ebiten/v2"

// Scene represents a game screen
//
// The game loop delegates Update and Draw calls to the scene.
type Scene interface {
	// Update advances the scene by one fixed simulation step of dt seconds.
	// Returns an error to terminate the game.
	Update(dt float64) error

	// Draw renders the scene to the screen.
	Draw(screen *ebiten.Image)

	// OnEnter is called once when the game starts running the scene.
	OnEnter()
}
