package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/interact"
	"github.com/milk9111/overworld/tileevent"
)

// InteractionSystem runs the object pusher and then the tile event manager,
// after movement has settled the hero's tile for this tick.
type InteractionSystem struct {
	pusher  *interact.Pusher
	manager *tileevent.Manager
}

func NewInteractionSystem(pusher *interact.Pusher, manager *tileevent.Manager) *InteractionSystem {
	return &InteractionSystem{pusher: pusher, manager: manager}
}

func (s *InteractionSystem) Update(*ecs.World) {
	if s.pusher != nil {
		s.pusher.Update()
	}
	if s.manager != nil {
		s.manager.Update()
	}
}
