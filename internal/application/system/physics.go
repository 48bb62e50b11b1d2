package system

import (
	"github.com/younwookim/tas/internal/domain/entity"
	"github.com/younwookim/tas/internal/infrastructure/config"
)

// PhysicsSystem moves the player body through the level with gravity
type PhysicsSystem struct {
	config *config.PhysicsSettings
	level  *entity.Level
}

// NewPhysicsSystem creates a new physics system
func NewPhysicsSystem(cfg *config.PhysicsSettings, level *entity.Level) *PhysicsSystem {
	return &PhysicsSystem{
		config: cfg,
		level:  level,
	}
}

// SetLevel switches the level collisions are resolved against
func (s *PhysicsSystem) SetLevel(level *entity.Level) {
	s.level = level
}

// Update applies one fixed step of physics to the body
func (s *PhysicsSystem) Update(body *entity.Body, dt float64) {
	s.applyGravity(body, dt)

	dx, dy := body.ApplyVelocity(dt)

	body.OnGround = false
	body.OnCeiling = false
	body.OnWallLeft = false
	body.OnWallRight = false

	s.moveX(body, dx)
	s.moveY(body, dy)

	// resting bodies report ground even when gravity moved them zero units
	if !body.OnGround && body.VY >= 0 && s.blocked(body, 0, 1) {
		body.OnGround = true
	}
}

// applyGravity applies gravity acceleration to the body
func (s *PhysicsSystem) applyGravity(body *entity.Body, dt float64) {
	body.VY += s.config.Gravity * entity.PositionScale * dt

	// Clamp to max fall speed
	if maxFall := s.config.MaxFallSpeed * entity.PositionScale; maxFall > 0 && body.VY > maxFall {
		body.VY = maxFall
	}
}

// moveX moves the body horizontally in one pixel substeps
func (s *PhysicsSystem) moveX(body *entity.Body, dx int) {
	for dx != 0 {
		step := substep(dx)
		if s.blocked(body, step, 0) {
			// Hit wall: slide up to contact one unit at a time
			unit := sign(step)
			for i := 0; i < abs(step) && !s.blocked(body, unit, 0); i++ {
				body.X += unit
			}
			body.VX = 0
			if step > 0 {
				body.OnWallRight = true
			} else {
				body.OnWallLeft = true
			}
			return
		}
		body.X += step
		dx -= step
	}
}

// moveY moves the body vertically in one pixel substeps
func (s *PhysicsSystem) moveY(body *entity.Body, dy int) {
	for dy != 0 {
		step := substep(dy)
		if s.blocked(body, 0, step) {
			unit := sign(step)
			for i := 0; i < abs(step) && !s.blocked(body, 0, unit); i++ {
				body.Y += unit
			}
			body.VY = 0
			if step > 0 {
				// Hit ground
				body.OnGround = true
			} else {
				// Hit ceiling
				body.OnCeiling = true
			}
			return
		}
		body.Y += step
		dy -= step
	}
}

func (s *PhysicsSystem) blocked(body *entity.Body, dx, dy int) bool {
	if s.level == nil {
		return false
	}
	return s.level.IsSolid(body.Bounds().Offset(dx, dy))
}

// substep limits a move to at most one pixel
func substep(d int) int {
	if d > entity.PositionScale {
		return entity.PositionScale
	}
	if d < -entity.PositionScale {
		return -entity.PositionScale
	}
	return d
}

// Helper functions
func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
