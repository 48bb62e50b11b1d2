package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/younwookim/tas/internal/application/replay"
)

// Config holds all loaded configurations
type Config struct {
	TAS    *TASConfig
	Levels map[string]*LevelConfig
}

// Loader loads configuration from JSON files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// LoadTAS loads tas.json
func (l *Loader) LoadTAS() (*TASConfig, error) {
	data, err := fs.ReadFile(l.fsys, "tas.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read tas.json: %w", err)
	}

	var cfg TASConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tas.json: %w", err)
	}

	return &cfg, nil
}

// LoadLevel loads a level JSON file
func (l *Loader) LoadLevel(id string) (*LevelConfig, error) {
	path := "levels/" + id + ".json"
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level %s: %w", id, err)
	}

	var cfg LevelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse level %s: %w", id, err)
	}
	if cfg.ID != id {
		return nil, fmt.Errorf("level %s: file declares id %q", id, cfg.ID)
	}

	return &cfg, nil
}

// LoadAll loads tas.json and every level it lists, then validates the result
func (l *Loader) LoadAll() (*Config, error) {
	tas, err := l.LoadTAS()
	if err != nil {
		return nil, err
	}

	cfg := &Config{TAS: tas, Levels: make(map[string]*LevelConfig, len(tas.Levels))}
	for _, id := range tas.Levels {
		level, err := l.LoadLevel(id)
		if err != nil {
			return nil, err
		}
		cfg.Levels[id] = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values the engine cannot run with
func (c *Config) Validate() error {
	var errs []error

	p := c.TAS.Playback
	if p.BaseRate <= 0 {
		errs = append(errs, fmt.Errorf("playback.baseRate must be positive, got %d", p.BaseRate))
	}
	if len(p.Speeds) == 0 {
		errs = append(errs, errors.New("playback.speeds is empty"))
	}
	for i, s := range p.Speeds {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("playback.speeds[%d] must be positive, got %d", i, s))
		}
		if i > 0 && s <= p.Speeds[i-1] {
			errs = append(errs, fmt.Errorf("playback.speeds must be ascending at index %d", i))
		}
	}
	if p.DefaultSpeedIndex < 0 || p.DefaultSpeedIndex >= len(p.Speeds) {
		errs = append(errs, fmt.Errorf("playback.defaultSpeedIndex %d out of range", p.DefaultSpeedIndex))
	}
	if p.WatchIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("playback.watchIntervalMs must not be negative, got %d", p.WatchIntervalMs))
	}

	if len(c.TAS.Levels) == 0 {
		errs = append(errs, errors.New("no levels configured"))
	}
	for id, level := range c.Levels {
		// recordings carry the level id, so it must be one every ledger format stores
		if err := replay.ValidateLevelID(id); err != nil {
			errs = append(errs, fmt.Errorf("level %q: %w", id, err))
		}
		if level.Size.Width <= 0 || level.Size.Height <= 0 {
			errs = append(errs, fmt.Errorf("level %s: size must be positive", id))
		}
		if level.Next != "" {
			if _, ok := c.Levels[level.Next]; !ok {
				errs = append(errs, fmt.Errorf("level %s: next level %q is not configured", id, level.Next))
			}
		}
	}

	return errors.Join(errs...)
}
