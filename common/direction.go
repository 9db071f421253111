package common

import (
	"fmt"
	"math"
)

// Direction is one of 8 compass directions in screen space (y grows down),
// numbered clockwise from right. None is used when an entity has no speed.
type Direction int8

const (
	None Direction = iota - 1
	Right
	DownRight
	Down
	DownLeft
	Left
	UpLeft
	Up
	UpRight
)

var directionNames = [...]string{
	Right:     "right",
	DownRight: "down_right",
	Down:      "down",
	DownLeft:  "down_left",
	Left:      "left",
	UpLeft:    "up_left",
	Up:        "up",
	UpRight:   "up_right",
}

// AllDirections lists the 8 valid directions in index order.
var AllDirections = []Direction{Right, DownRight, Down, DownLeft, Left, UpLeft, Up, UpRight}

func (d Direction) Valid() bool {
	return d >= Right && d <= UpRight
}

// String returns the animation key for the direction ("down_left", ...).
func (d Direction) String() string {
	if !d.Valid() {
		return "none"
	}
	return directionNames[d]
}

func (d Direction) IsDiagonal() bool {
	return d.Valid() && d&1 == 1
}

func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return None
	}
	return (d + 4) & 7
}

// Vector returns the unit tile step for the direction.
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case Right:
		return 1, 0
	case DownRight:
		return 1, 1
	case Down:
		return 0, 1
	case DownLeft:
		return -1, 1
	case Left:
		return -1, 0
	case UpLeft:
		return -1, -1
	case Up:
		return 0, -1
	case UpRight:
		return 1, -1
	}
	return 0, 0
}

// Split returns the direction followed by its cardinal components when it
// is a diagonal.
func (d Direction) Split() []Direction {
	if !d.IsDiagonal() {
		return []Direction{d}
	}
	return []Direction{d, (d - 1) & 7, (d + 1) & 7}
}

// ParseDirection maps an animation key back to its direction.
func ParseDirection(name string) (Direction, error) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return None, fmt.Errorf("common: unknown direction %q", name)
}

// DirectionFromVector snaps a velocity vector to the nearest of the 8
// directions. A zero vector yields None.
func DirectionFromVector(vx, vy float64) Direction {
	if vx == 0 && vy == 0 {
		return None
	}
	angle := Range360(math.Atan2(vy, vx))
	return Direction((1 + int(math.Floor((angle-Degree45Half)/Degree45))) & 7)
}

// TransitionStep moves current one 45° step toward target along the shorter
// arc. Opposite directions turn toward increasing index.
func TransitionStep(current, target Direction) Direction {
	if current == target || !current.Valid() {
		return target
	}
	if !target.Valid() {
		return current
	}
	diff := (target - current) & 7
	if diff > 4 {
		return (current - 1) & 7
	}
	return (current + 1) & 7
}

// StepDistance is the number of 45° steps between two directions.
func StepDistance(a, b Direction) int {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	diff := int((b - a) & 7)
	if diff > 4 {
		return 8 - diff
	}
	return diff
}

// IsFacing reports whether target lies inside the cone of halfAngle radians
// around the observer's direction and within maxDistance.
func IsFacing(dir Direction, ox, oy, tx, ty, halfAngle, maxDistance float64) bool {
	if !dir.Valid() {
		return false
	}
	dx := tx - ox
	dy := ty - oy
	if dx*dx+dy*dy > maxDistance*maxDistance {
		return false
	}
	reference := float64(dir) * Degree45
	diff := Range360(math.Atan2(dy, dx) - reference)
	if diff > math.Pi {
		diff = Degree360 - diff
	}
	return diff <= halfAngle+1e-9
}

// Surrounding is a tile at a fixed distance from an origin.
type Surrounding struct {
	X, Y      int
	Diagonal  bool
	Direction Direction
}

// Surroundings enumerates the tiles shift steps away from (x, y) in the order
// left, right, up, down, then the diagonals when requested.
func Surroundings(x, y int, diagonals bool, shift int) []Surrounding {
	out := []Surrounding{
		{X: x - shift, Y: y, Direction: Left},
		{X: x + shift, Y: y, Direction: Right},
		{X: x, Y: y - shift, Direction: Up},
		{X: x, Y: y + shift, Direction: Down},
	}
	if diagonals {
		out = append(out,
			Surrounding{X: x - shift, Y: y - shift, Diagonal: true, Direction: UpLeft},
			Surrounding{X: x + shift, Y: y - shift, Diagonal: true, Direction: UpRight},
			Surrounding{X: x - shift, Y: y + shift, Diagonal: true, Direction: DownLeft},
			Surrounding{X: x + shift, Y: y + shift, Diagonal: true, Direction: DownRight},
		)
	}
	return out
}
