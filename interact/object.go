package interact

import (
	"github.com/milk9111/overworld/tileevent"
	"github.com/milk9111/overworld/tilemap"
)

// Body is the physics body of an interactable object.
type Body interface {
	Position() (x, y float64)
	SetPosition(x, y float64)
	SetLayer(layer int)
}

type ObjectConfig struct {
	Key          string
	TileX, TileY int
	Layer        int
	Pushable     bool
	Events       []*tileevent.Event
	Drops        []tilemap.Drop
}

// Object is an interactable object standing on one tile. Its events move
// with it when it is pushed.
type Object struct {
	key          string
	body         Body
	tileX, tileY int
	layer        int
	pushable     bool
	events       []*tileevent.Event
	drops        []tilemap.Drop
}

func NewObject(cfg ObjectConfig, body Body) *Object {
	return &Object{
		key:      cfg.Key,
		body:     body,
		tileX:    cfg.TileX,
		tileY:    cfg.TileY,
		layer:    cfg.Layer,
		pushable: cfg.Pushable,
		events:   cfg.Events,
		drops:    cfg.Drops,
	}
}

func (o *Object) Key() string                { return o.key }
func (o *Object) Body() Body                 { return o.body }
func (o *Object) TilePosition() (x, y int)   { return o.tileX, o.tileY }
func (o *Object) Layer() int                 { return o.layer }
func (o *Object) Pushable() bool             { return o.pushable }
func (o *Object) Events() []*tileevent.Event { return o.events }
func (o *Object) Position() (x, y float64)   { return o.body.Position() }

func (o *Object) dropAt(x, y int) (tilemap.Drop, bool) {
	for _, d := range o.drops {
		if d.X == x && d.Y == y {
			return d, true
		}
	}
	return tilemap.Drop{}, false
}

// shiftEvents moves the object's events by (dx, dy) and refreshes the jump
// events around their old and new spots.
func (o *Object) shiftEvents(ix *tileevent.Index, dx, dy int) {
	for _, ev := range o.events {
		ix.Relocate([]*tileevent.Event{ev}, dx, dy, o.layer+ev.LayerShift)
	}
}
