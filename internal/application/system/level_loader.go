package system

import (
	"github.com/younwookim/tas/internal/domain/entity"
	"github.com/younwookim/tas/internal/infrastructure/config"
)

// LoadLevel converts a LevelConfig into a Level entity
func LoadLevel(cfg *config.LevelConfig) *entity.Level {
	platforms := make([]entity.Rect, len(cfg.Platforms))
	for i, p := range cfg.Platforms {
		platforms[i] = toRect(p)
	}

	checkpoints := make([]entity.Checkpoint, len(cfg.Checkpoints))
	for i, cp := range cfg.Checkpoints {
		checkpoints[i] = entity.Checkpoint{
			Area:   toRect(cp.Area),
			SpawnX: cp.Spawn.X,
			SpawnY: cp.Spawn.Y,
		}
	}

	return &entity.Level{
		ID:          cfg.ID,
		Name:        cfg.Name,
		Width:       cfg.Size.Width,
		Height:      cfg.Size.Height,
		SpawnX:      cfg.Spawn.X,
		SpawnY:      cfg.Spawn.Y,
		Goal:        toRect(cfg.Goal),
		Next:        cfg.Next,
		Platforms:   platforms,
		Checkpoints: checkpoints,
	}
}

func toRect(r config.RectConfig) entity.Rect {
	return entity.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}
