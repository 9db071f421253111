package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/tween"
)

// ClockSystem advances timers and tweens by a fixed step. It runs first so
// every later system sees this tick's elapsed time.
type ClockSystem struct {
	clock *tween.Scheduler
	dt    float64
}

// NewClockSystem steps clock by dtMS milliseconds per update.
func NewClockSystem(clock *tween.Scheduler, dtMS float64) *ClockSystem {
	return &ClockSystem{clock: clock, dt: dtMS}
}

func (c *ClockSystem) Update(*ecs.World) {
	c.clock.Advance(c.dt)
}

// PhysicsSystem steps the physics world; a paused world stays put.
type PhysicsSystem struct {
	world *physics.World
	clock *tween.Scheduler
}

func NewPhysicsSystem(world *physics.World, clock *tween.Scheduler) *PhysicsSystem {
	return &PhysicsSystem{world: world, clock: clock}
}

func (p *PhysicsSystem) Update(*ecs.World) {
	p.world.Step(p.clock.Elapsed())
}
