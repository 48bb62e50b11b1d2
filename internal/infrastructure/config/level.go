package config

// LevelConfig is the root config for level JSON files
type LevelConfig struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Size        SizeConfig         `json:"size"`
	Spawn       PositionConfig     `json:"spawn"`
	Goal        RectConfig         `json:"goal"`
	Next        string             `json:"next"`
	Platforms   []RectConfig       `json:"platforms"`
	Checkpoints []CheckpointConfig `json:"checkpoints"`
}

type SizeConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type PositionConfig struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type RectConfig struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// CheckpointConfig is a trigger area that saves progress when entered.
// Checkpoints are indexed in file order.
type CheckpointConfig struct {
	Area  RectConfig     `json:"area"`
	Spawn PositionConfig `json:"spawn"`
}
