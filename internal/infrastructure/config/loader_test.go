package config

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configDir = "../../../cmd/tas/configs"

func TestLoader_LoadTAS(t *testing.T) {
	loader := NewLoader(configDir)

	cfg, err := loader.LoadTAS()
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Display.ScreenWidth)
	assert.Equal(t, 240, cfg.Display.ScreenHeight)
	assert.Equal(t, 50, cfg.Playback.BaseRate)
	assert.Equal(t, []int{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}, cfg.Playback.Speeds)
	assert.Equal(t, 5, cfg.Playback.DefaultSpeedIndex)
	assert.Equal(t, []string{"Space", "W"}, cfg.Bindings.Buttons["Jump"])
	assert.Equal(t, []string{"A"}, cfg.Bindings.Axes["Move Horizontal"].Negative)
	assert.Equal(t, "StartPlayback", cfg.Hotkeys["F5"])
	assert.Equal(t, []string{"hub", "tower"}, cfg.Levels)
}

func TestLoader_LoadLevel(t *testing.T) {
	loader := NewLoader(configDir)

	cfg, err := loader.LoadLevel("hub")
	require.NoError(t, err)

	assert.Equal(t, "hub", cfg.ID)
	assert.Equal(t, 640, cfg.Size.Width)
	assert.Equal(t, 32, cfg.Spawn.X)
	assert.Equal(t, "tower", cfg.Next)
	assert.Len(t, cfg.Checkpoints, 2)
	assert.Equal(t, 296, cfg.Checkpoints[0].Spawn.X)
}

func TestLoader_LoadLevel_NotFound(t *testing.T) {
	loader := NewLoader(configDir)

	_, err := loader.LoadLevel("nonexistent")
	assert.Error(t, err)
}

func TestLoader_LoadLevel_IDMismatch(t *testing.T) {
	fsys := fstest.MapFS{
		"levels/a.json": {Data: []byte(`{"id": "b", "size": {"width": 1, "height": 1}}`)},
	}
	loader := NewFSLoader(fsys, ".")

	_, err := loader.LoadLevel("a")
	assert.ErrorContains(t, err, `declares id "b"`)
}

func TestLoader_LoadAll(t *testing.T) {
	loader := NewLoader(configDir)

	cfg, err := loader.LoadAll()
	require.NoError(t, err)

	require.NotNil(t, cfg.TAS)
	assert.Len(t, cfg.Levels, 2)
	assert.Equal(t, "Tower", cfg.Levels["tower"].Name)
}

func TestLoader_NewFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"tas.json": {Data: []byte(`{
			"playback": {"baseRate": 60, "speeds": [30, 60], "defaultSpeedIndex": 1},
			"levels": ["only"]
		}`)},
		"levels/only.json": {Data: []byte(`{"id": "only", "size": {"width": 100, "height": 50}}`)},
	}
	loader := NewFSLoader(fsys, "mem")

	cfg, err := loader.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.TAS.Playback.BaseRate)
	assert.Equal(t, 100, cfg.Levels["only"].Size.Width)
}

func TestLoader_InvalidJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"tas.json": {Data: []byte(`{"playback": `)},
	}
	loader := NewFSLoader(fsys, "mem")

	_, err := loader.LoadTAS()
	assert.ErrorContains(t, err, "failed to parse tas.json")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TAS: &TASConfig{
				Playback: PlaybackConfig{BaseRate: 50, Speeds: []int{25, 50, 100}, DefaultSpeedIndex: 1},
				Levels:   []string{"a"},
			},
			Levels: map[string]*LevelConfig{
				"a": {ID: "a", Size: SizeConfig{Width: 10, Height: 10}},
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero base rate", func(c *Config) { c.TAS.Playback.BaseRate = 0 }, "baseRate"},
		{"no speeds", func(c *Config) { c.TAS.Playback.Speeds = nil }, "speeds is empty"},
		{"negative speed", func(c *Config) { c.TAS.Playback.Speeds[0] = -1 }, "speeds[0]"},
		{"unsorted speeds", func(c *Config) { c.TAS.Playback.Speeds = []int{50, 25, 100} }, "ascending"},
		{"default out of range", func(c *Config) { c.TAS.Playback.DefaultSpeedIndex = 3 }, "defaultSpeedIndex"},
		{"negative watch interval", func(c *Config) { c.TAS.Playback.WatchIntervalMs = -1 }, "watchIntervalMs"},
		{"no levels", func(c *Config) { c.TAS.Levels = nil }, "no levels"},
		{"empty level", func(c *Config) { c.Levels["a"].Size.Width = 0 }, "size must be positive"},
		{"dangling next", func(c *Config) { c.Levels["a"].Next = "z" }, `next level "z"`},
		{"padded level id", func(c *Config) { c.Levels[" a"] = c.Levels["a"] }, "surrounding whitespace"},
		{"control character in level id", func(c *Config) { c.Levels["a\tb"] = c.Levels["a"] }, "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
