package system

import (
	"math"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/tween"
)

// arriveDistance is how close, in pixels, an NPC must get to a patrol
// point's center to count as there.
const arriveDistance = 1.5

// PatrolSystem steers NPCs between their patrol points one axis at a time.
type PatrolSystem struct {
	clock *tween.Scheduler
	tileW float64
	tileH float64
}

func NewPatrolSystem(clock *tween.Scheduler, tileW, tileH float64) *PatrolSystem {
	return &PatrolSystem{clock: clock, tileW: tileW, tileH: tileH}
}

func (p *PatrolSystem) Update(w *ecs.World) {
	ecs.ForEach3(w, component.PatrolComponent.Kind(), component.ActorComponent.Kind(), component.InputComponent.Kind(),
		func(e ecs.Entity, patrol *component.Patrol, actor *component.Actor, input *component.Input) {
			*input = component.Input{}
			if len(patrol.Points) == 0 || actor.Char == nil || !actor.Char.Active() {
				return
			}
			if patrol.Next >= len(patrol.Points) {
				patrol.Next = 0
			}

			target := patrol.Points[patrol.Next]
			tx := (float64(target.X) + 0.5) * p.tileW
			ty := (float64(target.Y) + 0.5) * p.tileH
			x, y := actor.Char.Position()
			dx, dy := tx-x, ty-y

			switch {
			case math.Abs(dx) > arriveDistance:
				input.MoveX = math.Copysign(1, dx)
			case math.Abs(dy) > arriveDistance:
				input.MoveY = math.Copysign(1, dy)
			default:
				patrol.Waited += p.clock.Elapsed()
				if patrol.Waited >= patrol.Rest {
					patrol.Waited = 0
					patrol.Next = (patrol.Next + 1) % len(patrol.Points)
				}
			}
		})
}
