package tileevent

import (
	"slices"

	"github.com/milk9111/overworld/common"
)

// JumpRadius is the distance, in tiles, between a jump event and the jump
// event it lands on.
const JumpRadius = 2

type location struct{ x, y int }

// Index is the per-location event table of a map. Events at one location
// keep the order they were added in.
type Index struct {
	nextID ID
	byLoc  map[location][]*Event
	byID   map[ID]*Event
}

func NewIndex() *Index {
	return &Index{
		byLoc: map[location][]*Event{},
		byID:  map[ID]*Event{},
	}
}

// Add registers ev and assigns its ID.
func (ix *Index) Add(ev *Event) *Event {
	ix.nextID++
	ev.id = ix.nextID
	ix.byID[ev.id] = ev
	ix.insert(ev)
	return ev
}

func (ix *Index) insert(ev *Event) {
	key := location{ev.x, ev.y}
	ix.byLoc[key] = append(ix.byLoc[key], ev)
}

func (ix *Index) unlink(ev *Event) {
	key := location{ev.x, ev.y}
	list := slices.DeleteFunc(ix.byLoc[key], func(e *Event) bool { return e == ev })
	if len(list) == 0 {
		delete(ix.byLoc, key)
		return
	}
	ix.byLoc[key] = list
}

// Remove drops ev from the map.
func (ix *Index) Remove(ev *Event) {
	if _, ok := ix.byID[ev.id]; !ok {
		return
	}
	ix.unlink(ev)
	delete(ix.byID, ev.id)
}

// At returns the events at (x, y) in authoring order.
func (ix *Index) At(x, y int) []*Event {
	return slices.Clone(ix.byLoc[location{x, y}])
}

func (ix *Index) Has(x, y int) bool {
	return len(ix.byLoc[location{x, y}]) > 0
}

func (ix *Index) Get(id ID) (*Event, bool) {
	ev, ok := ix.byID[id]
	return ev, ok
}

func (ix *Index) Len() int { return len(ix.byID) }

// All returns every event in ID order.
func (ix *Index) All() []*Event {
	out := make([]*Event, 0, len(ix.byID))
	for _, ev := range ix.byID {
		out = append(out, ev)
	}
	slices.SortFunc(out, func(a, b *Event) int { return int(a.id - b.id) })
	return out
}

// Move rewrites ev's coordinates; it becomes the last event at its new
// location.
func (ix *Index) Move(ev *Event, x, y int) {
	if _, ok := ix.byID[ev.id]; !ok {
		ev.x, ev.y = x, y
		return
	}
	ix.unlink(ev)
	ev.x, ev.y = x, y
	ix.insert(ev)
}

// ActivateJumpSurroundings re-enables the static jump events JumpRadius
// tiles around (x, y) that can land on it, each at the direction pointing
// back toward (x, y).
func (ix *Index) ActivateJumpSurroundings(x, y, layer int) {
	ix.toggleJumpSurroundings(x, y, layer, true)
}

// DeactivateJumpSurroundings is the inverse of ActivateJumpSurroundings,
// used when whatever a jump would have landed on moves away.
func (ix *Index) DeactivateJumpSurroundings(x, y, layer int) {
	ix.toggleJumpSurroundings(x, y, layer, false)
}

func (ix *Index) toggleJumpSurroundings(x, y, layer int, on bool) {
	for _, s := range common.Surroundings(x, y, false, JumpRadius) {
		for _, ev := range ix.byLoc[location{s.X, s.Y}] {
			if ev.kind != Jump || ev.dynamic || !ev.InLayer(layer) {
				continue
			}
			if on {
				if ev.isSet {
					ev.ActivateAt(s.Direction.Opposite())
				}
				continue
			}
			ev.DeactivateAt(s.Direction.Opposite())
		}
	}
}

// Relocate shifts a movable object's events by (dx, dy), then updates the
// jump events around the old and new positions of each: the old landing
// spot stops being a target and the new one becomes one on layer.
func (ix *Index) Relocate(events []*Event, dx, dy, layer int) {
	for _, ev := range events {
		oldX, oldY := ev.x, ev.y
		ix.Move(ev, oldX+dx, oldY+dy)
		ix.DeactivateJumpSurroundings(oldX, oldY, layer)
		ix.ActivateJumpSurroundings(ev.x, ev.y, layer)
	}
}
