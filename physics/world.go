package physics

import (
	"log/slog"

	"github.com/jakecoffman/cp"
)

const (
	collisionTypeChar cp.CollisionType = iota + 1
	collisionTypeTile
	collisionTypeObject
)

// MaxLayers bounds collision layers to the bits of a shape filter.
const MaxLayers = 32

// World owns the chipmunk space. The overworld has no gravity; bodies only
// move by the velocities the movement core sets each tick.
type World struct {
	space  *cp.Space
	paused bool
	log    *slog.Logger

	bodies []*Body
}

func NewWorld(log *slog.Logger) *World {
	if log == nil {
		log = slog.Default()
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	return &World{space: space, log: log.With("component", "physics")}
}

func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// Step integrates dtMS milliseconds unless the world is paused.
func (w *World) Step(dtMS float64) {
	if w == nil || w.paused || dtMS <= 0 {
		return
	}
	w.space.Step(dtMS / 1000)
}

// Pause stops the simulation. It returns false, and leaves the world
// paused, when it already was.
func (w *World) Pause() bool {
	if w.paused {
		w.log.Warn("physics already paused")
		return false
	}
	w.paused = true
	return true
}

// Resume restarts the simulation. It returns false when it was not paused.
func (w *World) Resume() bool {
	if !w.paused {
		w.log.Warn("physics resumed while running")
		return false
	}
	w.paused = false
	return true
}

func (w *World) Paused() bool { return w.paused }

func layerFilter(layer int) cp.ShapeFilter {
	if layer < 0 {
		layer = 0
	}
	if layer >= MaxLayers {
		layer = MaxLayers - 1
	}
	bit := uint(1) << uint(layer)
	return cp.NewShapeFilter(cp.NO_GROUP, bit, bit)
}

// AddCircle adds a dynamic circle body for a character centered on (x, y).
func (w *World) AddCircle(x, y, radius float64, layer int) *Body {
	mass := 1.0
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(cp.Vector{X: x, Y: y})
	// Characters never spin on contact.
	body.SetMoment(cp.INFINITY)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(0)
	shape.SetElasticity(0)
	shape.SetCollisionType(collisionTypeChar)
	shape.SetFilter(layerFilter(layer))

	w.space.AddBody(body)
	w.space.AddShape(shape)

	b := &Body{world: w, body: body, shape: shape, layer: layer}
	w.bodies = append(w.bodies, b)
	return b
}

// AddBox adds a kinematic box body centered on (x, y). Kinematic bodies are
// moved by position only; pushable objects use them.
func (w *World) AddBox(x, y, width, height float64, layer int) *Body {
	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: x, Y: y})

	shape := cp.NewBox(body, width, height, 0)
	shape.SetCollisionType(collisionTypeObject)
	shape.SetFilter(layerFilter(layer))

	w.space.AddBody(body)
	w.space.AddShape(shape)

	b := &Body{world: w, body: body, shape: shape, layer: layer}
	w.bodies = append(w.bodies, b)
	return b
}

// AddStaticTile blocks the tile rectangle with top-left (x, y) on layer.
func (w *World) AddStaticTile(x, y, width, height float64, layer int) *cp.Shape {
	bb := cp.BB{L: x, B: y, R: x + width, T: y + height}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeTile)
	shape.SetFilter(layerFilter(layer))
	w.space.AddShape(shape)
	return shape
}

func (w *World) RemoveShape(shape *cp.Shape) {
	if shape == nil {
		return
	}
	w.space.RemoveShape(shape)
}

func (w *World) RemoveBody(b *Body) {
	if b == nil || b.world != w {
		return
	}
	w.space.RemoveShape(b.shape)
	w.space.RemoveBody(b.body)
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.world = nil
}

// Body is a chipmunk body plus its single shape.
type Body struct {
	world *World
	body  *cp.Body
	shape *cp.Shape
	layer int
}

func (b *Body) Position() (x, y float64) {
	p := b.body.Position()
	return p.X, p.Y
}

func (b *Body) SetPosition(x, y float64) {
	b.body.SetPosition(cp.Vector{X: x, Y: y})
}

func (b *Body) Velocity() (x, y float64) {
	v := b.body.Velocity()
	return v.X, v.Y
}

func (b *Body) SetVelocity(x, y float64) {
	b.body.SetVelocityVector(cp.Vector{X: x, Y: y})
}

func (b *Body) Layer() int { return b.layer }

// SetLayer moves the body's shape onto another collision layer.
func (b *Body) SetLayer(layer int) {
	b.layer = layer
	b.shape.SetFilter(layerFilter(layer))
}

func (b *Body) Filter() cp.ShapeFilter { return b.shape.Filter }
