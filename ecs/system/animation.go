package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/tween"
)

// AnimationSystem advances every actor's sprite by the tick's elapsed time.
type AnimationSystem struct {
	clock *tween.Scheduler
}

func NewAnimationSystem(clock *tween.Scheduler) *AnimationSystem {
	return &AnimationSystem{clock: clock}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	dt := a.clock.Elapsed()
	ecs.ForEach(w, component.ActorComponent.Kind(), func(e ecs.Entity, actor *component.Actor) {
		if actor.Sprite != nil {
			actor.Sprite.Advance(dt)
		}
	})
}
