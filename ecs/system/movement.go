package system

import (
	"math"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/tween"
)

// blockedRatio is the share of its intended travel a body must cover to
// count as moving freely.
const blockedRatio = 0.25

// MovementSystem feeds each actor's input into its state machine and
// notices bodies that stopped against something.
type MovementSystem struct {
	clock *tween.Scheduler
}

func NewMovementSystem(clock *tween.Scheduler) *MovementSystem {
	return &MovementSystem{clock: clock}
}

func (m *MovementSystem) Update(w *ecs.World) {
	dt := m.clock.Elapsed()
	ecs.ForEach3(w, component.ActorComponent.Kind(), component.InputComponent.Kind(), component.PhysicsBodyComponent.Kind(),
		func(e ecs.Entity, actor *component.Actor, input *component.Input, pb *component.PhysicsBody) {
			c := actor.Char
			if c == nil || pb.Body == nil || !c.Active() {
				return
			}

			x, y := pb.Body.Position()
			if pb.Tracked {
				c.StopByColliding = blocked(pb, x, y, dt)
			}
			if !c.InAction(true) {
				c.Steer(input.MoveX, input.MoveY, input.Dash)
				c.UpdateMovement(false)
			}

			pb.LastX, pb.LastY = x, y
			pb.LastVX, pb.LastVY = pb.Body.Velocity()
			pb.Tracked = true
		})
}

// blocked reports whether the body covered too little of the distance its
// last velocity asked for.
func blocked(pb *component.PhysicsBody, x, y, dt float64) bool {
	speed := math.Hypot(pb.LastVX, pb.LastVY)
	if speed == 0 || dt <= 0 {
		return false
	}
	want := speed * dt / 1000
	return math.Hypot(x-pb.LastX, y-pb.LastY) < want*blockedRatio
}
