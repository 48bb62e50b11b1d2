package entity

// PositionScale is the internal position scale factor.
// 1 pixel = 100 internal units. This provides 0.01 pixel precision.
const PositionScale = 100

// Body represents the physical body of the player
// Position is stored at 100x scale for sub-pixel precision without floats.
// Velocity is stored as float in 100x scale units per second.
type Body struct {
	X, Y   int     // 100x scaled position of the top-left corner
	VX, VY float64 // 100x scaled velocity (units per second)

	// Width and Height are in pixels
	Width  int
	Height int

	OnGround    bool
	OnCeiling   bool
	OnWallLeft  bool
	OnWallRight bool
	FacingRight bool
}

// NewBody creates a body at rest facing right.
// x, y are pixel coordinates which are internally stored at 100x scale.
func NewBody(x, y, width, height int) *Body {
	return &Body{
		X:           x * PositionScale,
		Y:           y * PositionScale,
		Width:       width,
		Height:      height,
		FacingRight: true,
	}
}

// PixelX returns the pixel X position (internal X / PositionScale)
func (b *Body) PixelX() int {
	return b.X / PositionScale
}

// PixelY returns the pixel Y position (internal Y / PositionScale)
func (b *Body) PixelY() int {
	return b.Y / PositionScale
}

// SetPixelPos sets the position from pixel coordinates (converts to 100x scale)
func (b *Body) SetPixelPos(x, y int) {
	b.X = x * PositionScale
	b.Y = y * PositionScale
}

// Bounds returns the body rect in internal units
func (b *Body) Bounds() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.Width * PositionScale, H: b.Height * PositionScale}
}

// PixelBounds returns the body rect in pixels, for drawing and triggers
func (b *Body) PixelBounds() Rect {
	return Rect{X: b.PixelX(), Y: b.PixelY(), W: b.Width, H: b.Height}
}

// ApplyVelocity applies velocity to position, returning integer units to move.
// With 100x scale, no remainder accumulation is needed as precision is built-in.
func (b *Body) ApplyVelocity(dt float64) (dx, dy int) {
	dx = int(b.VX * dt)
	dy = int(b.VY * dt)
	return dx, dy
}

// Stop zeroes velocity and clears the contact flags
func (b *Body) Stop() {
	b.VX = 0
	b.VY = 0
	b.OnGround = false
	b.OnCeiling = false
	b.OnWallLeft = false
	b.OnWallRight = false
}

// Turn flips the facing direction
func (b *Body) Turn() {
	b.FacingRight = !b.FacingRight
}
