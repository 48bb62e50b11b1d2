package config

// TASConfig is the root config for tas.json
type TASConfig struct {
	Display  DisplayConfig   `json:"display"`
	Physics  PhysicsSettings `json:"physics"`
	Movement MovementConfig  `json:"movement"`
	Playback PlaybackConfig  `json:"playback"`
	Bindings BindingsConfig  `json:"bindings"`
	// Hotkeys maps a key name to a command name
	Hotkeys map[string]string `json:"hotkeys"`
	// Levels lists level ids in play order; the first one is loaded at startup
	Levels []string `json:"levels"`
	// Ledger is the file Open and Save use when no path is given
	Ledger string `json:"ledger"`
}

type DisplayConfig struct {
	ScreenWidth  int `json:"screenWidth"`
	ScreenHeight int `json:"screenHeight"`
	Scale        int `json:"scale"`
}

type PhysicsSettings struct {
	Gravity      float64 `json:"gravity"`
	MaxFallSpeed float64 `json:"maxFallSpeed"`
}

type MovementConfig struct {
	MaxSpeed  float64 `json:"maxSpeed"`
	JumpForce float64 `json:"jumpForce"`
	// GrabDrag scales horizontal velocity each tick while Grab is held
	GrabDrag float64 `json:"grabDrag"`
	// LookRange is how far in pixels the look axes pan the camera
	LookRange float64 `json:"lookRange"`
}

// PlaybackConfig configures the simulation rate and the speed table
type PlaybackConfig struct {
	// BaseRate is the simulation rate of 1x, in ticks per second
	BaseRate int `json:"baseRate"`
	// Speeds are the steppable rates in ticks per second, ascending
	Speeds            []int `json:"speeds"`
	DefaultSpeedIndex int   `json:"defaultSpeedIndex"`
	// WatchIntervalMs is how often the opened ledger file is checked for edits
	WatchIntervalMs int `json:"watchIntervalMs"`
}

// BindingsConfig maps host action names to key names
type BindingsConfig struct {
	Buttons map[string][]string          `json:"buttons"`
	Axes    map[string]AxisBindingConfig `json:"axes"`
}

type AxisBindingConfig struct {
	Negative []string `json:"negative"`
	Positive []string `json:"positive"`
}
