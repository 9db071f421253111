package tileevent

import "github.com/milk9111/overworld/common"

type queued struct {
	event *Event
	fire  func()
}

// Queue collects the events found on one tile check. A climb event that is
// eligible for the current facing suppresses every queued jump event.
type Queue struct {
	climbPresent bool
	items        []queued
}

// Add runs fire now when immediate is set, otherwise queues it. The climb
// bit is raised either way.
func (q *Queue) Add(ev *Event, dir common.Direction, fire func(), immediate bool) {
	if ev.kind == Climb && ev.isSet && ev.HasDirection(dir) && ev.IsActive(dir) {
		q.climbPresent = true
	}
	if immediate {
		fire()
		return
	}
	q.items = append(q.items, queued{event: ev, fire: fire})
}

func (q *Queue) ClimbPresent() bool { return q.climbPresent }

func (q *Queue) Len() int { return len(q.items) }

// Process fires queued actions in insertion order and empties the queue.
func (q *Queue) Process() {
	items := q.items
	q.items = nil
	for _, it := range items {
		if q.climbPresent && it.event.kind == Jump {
			continue
		}
		it.fire()
	}
	q.climbPresent = false
}
