package entity

// Rect is an axis aligned rectangle. The right and bottom edges are exclusive.
type Rect struct {
	X, Y int
	W, H int
}

// Intersects reports whether the two rects share any area
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Offset returns the rect moved by dx, dy
func (r Rect) Offset(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Scale returns the rect with every coordinate multiplied by s
func (r Rect) Scale(s int) Rect {
	return Rect{X: r.X * s, Y: r.Y * s, W: r.W * s, H: r.H * s}
}

// Checkpoint is a trigger area; entering it saves the spawn position
type Checkpoint struct {
	Area   Rect
	SpawnX int
	SpawnY int
}

// Level represents the active level's geometry. Coordinates are in pixels.
type Level struct {
	ID     string
	Name   string
	Width  int
	Height int
	SpawnX int
	SpawnY int
	Goal   Rect
	// Next is the level the goal leads to; empty restarts this one
	Next        string
	Platforms   []Rect
	Checkpoints []Checkpoint
}

// IsSolid reports whether r, in internal units, overlaps a platform or
// leaves the level bounds
func (l *Level) IsSolid(r Rect) bool {
	if r.X < 0 || r.Y < 0 ||
		r.X+r.W > l.Width*PositionScale || r.Y+r.H > l.Height*PositionScale {
		return true
	}
	for _, p := range l.Platforms {
		if r.Intersects(p.Scale(PositionScale)) {
			return true
		}
	}
	return false
}

// CheckpointAt returns the index of the checkpoint whose area r, in pixels,
// overlaps, or -1
func (l *Level) CheckpointAt(r Rect) int {
	for i, cp := range l.Checkpoints {
		if r.Intersects(cp.Area) {
			return i
		}
	}
	return -1
}

// ReachedGoal reports whether r, in pixels, overlaps the goal
func (l *Level) ReachedGoal(r Rect) bool {
	return l.Goal.W > 0 && l.Goal.H > 0 && r.Intersects(l.Goal)
}
