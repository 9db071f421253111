package tileevent

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/samber/oops"

	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tween"
)

// EventInitDelay is how long a directional event waits after being found
// before it fires.
const EventInitDelay = 350.0

var ErrMissingDep = errors.New("tileevent: missing collaborator")

// Field is the map the events live on.
type Field interface {
	TileSize() (w, h float64)
	CollisionLayer() int
	SetCollisionLayer(layer int)
	Blocked(x, y, layer int) bool
}

// TeleportRequest asks the game to move the hero to another map.
type TeleportRequest struct {
	Map          string
	TileX, TileY int
	Layer        int
	Direction    common.Direction
}

type Teleporter interface {
	Teleport(req TeleportRequest) error
}

// Effects plays cosmetic bursts; the future resolves when it ends.
type Effects interface {
	Dust(x, y float64) *tween.Future
}

// Env is what events act on. Hero, Field and Clock are required; the rest
// disable the behaviours that need them when nil.
type Env struct {
	Hero       *char.Controllable
	Field      Field
	World      char.PhysicsWorld
	Clock      *tween.Scheduler
	Storage    storage.Store
	Teleporter Teleporter
	Effects    Effects
	Scripts    *ScriptRunner
	Log        *slog.Logger
}

// Manager decides, tick by tick, which events on the hero's tile fire.
type Manager struct {
	env   Env
	index *Index
	log   *slog.Logger

	timers    map[ID]*tween.Timer
	triggered map[ID]*Event
	latched   map[ID]bool
	onEvent   bool

	lastX, lastY int
	tracked      bool
}

func NewManager(index *Index, env Env) (*Manager, error) {
	errb := oops.In("tileevent")
	switch {
	case index == nil:
		return nil, errb.With("dep", "index").Wrap(ErrMissingDep)
	case env.Hero == nil:
		return nil, errb.With("dep", "hero").Wrap(ErrMissingDep)
	case env.Field == nil:
		return nil, errb.With("dep", "field").Wrap(ErrMissingDep)
	case env.Clock == nil:
		return nil, errb.With("dep", "clock").Wrap(ErrMissingDep)
	}
	log := env.Log
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		env:       env,
		index:     index,
		log:       log.With("component", "tileevent"),
		timers:    map[ID]*tween.Timer{},
		triggered: map[ID]*Event{},
		latched:   map[ID]bool{},
	}, nil
}

func (m *Manager) Index() *Index { return m.index }

// OnEvent reports whether an event choreography currently owns the hero.
func (m *Manager) OnEvent() bool { return m.onEvent }

func (m *Manager) SetTriggered(ev *Event)   { m.triggered[ev.id] = ev }
func (m *Manager) UnsetTriggered(ev *Event) { delete(m.triggered, ev.id) }

func (m *Manager) IsTriggered(ev *Event) bool {
	_, ok := m.triggered[ev.id]
	return ok
}

// Reset forgets timers, triggered events and tile tracking, for map changes.
func (m *Manager) Reset(index *Index) {
	for _, t := range m.timers {
		t.Cancel()
	}
	clear(m.timers)
	clear(m.triggered)
	clear(m.latched)
	m.tracked = false
	m.onEvent = false
	if index != nil {
		m.index = index
	}
}

// Update runs after the hero's movement update. Leaving a tile fires the
// triggered set; the occupied tile is then checked unless an action owns
// the hero.
func (m *Manager) Update() {
	hero := m.env.Hero
	if !hero.Active() {
		return
	}
	x, y := hero.TilePosition()
	if !m.tracked || x != m.lastX || y != m.lastY {
		m.lastX, m.lastY, m.tracked = x, y, true
		clear(m.latched)
		m.FireTriggeredEvents()
	}
	if m.onEvent || hero.InAction(true) {
		return
	}
	if m.index.Has(x, y) {
		m.CheckTileEvents(x, y)
	}
}

// CheckTileEvents evaluates every event at (x, y) against the hero's layer,
// facing and action and fires the ones that qualify.
func (m *Manager) CheckTileEvents(x, y int) {
	hero := m.env.Hero
	layer := m.env.Field.CollisionLayer()
	var q Queue
	for _, ev := range m.index.At(x, y) {
		if !ev.InLayer(layer) {
			continue
		}
		dir := hero.CurrentDirection()
		if !ev.IsActive(dir) {
			continue
		}
		switch {
		case ev.kind == Speed:
			if hero.ExtraSpeed() != ev.speed {
				q.Add(ev, dir, func() { m.Fire(ev) }, true)
			}
		case ev.kind == IceSlide || ev.kind == Trigger || (ev.kind == Teleport && !ev.advanceEffect):
			q.Add(ev, dir, func() { m.fireEvent(ev, dir) }, false)
		case ev.kind == Step || ev.kind == Collision:
			if !m.IsTriggered(ev) {
				q.Add(ev, dir, func() { m.SetTriggered(ev) }, false)
			}
		default:
			if !ev.HasDirection(dir) || !drivenAction(hero.CurrentAction()) {
				continue
			}
			if t, ok := m.timers[ev.id]; ok && !t.Expired() {
				continue
			}
			q.Add(ev, dir, func() {
				m.timers[ev.id] = m.env.Clock.Once(EventInitDelay, func() { m.fireEvent(ev, dir) })
			}, false)
		}
	}
	q.Process()
}

func drivenAction(a char.Action) bool {
	return a == char.Walk || a == char.Dash || a == char.Climb
}

// fireEvent applies the fire-time checks: the hero must still face the
// direction the event was found with, except for ice-slide events while
// already sliding.
func (m *Manager) fireEvent(ev *Event, dir common.Direction) {
	hero := m.env.Hero
	if ev.kind == IceSlide && hero.IceSlidingActive {
		m.Fire(ev)
		return
	}
	if hero.CurrentDirection() != dir {
		return
	}
	switch ev.kind {
	case Climb:
		if hero.IdleClimbing {
			return
		}
		ev.activationFacing = dir
		m.Fire(ev)
	case Speed, Step, Collision:
	default:
		m.Fire(ev)
	}
}

// FireTriggeredEvents reverts speed zones and fires armed step and
// collision events, in ID order.
func (m *Manager) FireTriggeredEvents() {
	ids := make([]ID, 0, len(m.triggered))
	for id := range m.triggered {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		ev, ok := m.triggered[id]
		if !ok {
			continue
		}
		if ev.kind == Speed {
			m.unsetSpeed(ev)
			continue
		}
		m.Fire(ev)
	}
}

// Fire runs ev's behaviour without any policy checks.
func (m *Manager) Fire(ev *Event) {
	switch ev.kind {
	case Speed:
		m.fireSpeed(ev)
	case Step:
		m.fireStep(ev)
	case Collision:
		m.fireCollision(ev)
	case Climb:
		m.fireClimb(ev)
	case Teleport:
		m.fireTeleport(ev)
	case Slider:
		m.fireSlider(ev)
	case Jump:
		m.fireJump(ev)
	case IceSlide:
		m.fireIceSlide(ev)
	case Trigger:
		m.fireTrigger(ev)
	}
}

// Remove drops ev from the map and from every manager table.
func (m *Manager) Remove(ev *Event) {
	m.index.Remove(ev)
	if t, ok := m.timers[ev.id]; ok {
		t.Cancel()
		delete(m.timers, ev.id)
	}
	delete(m.triggered, ev.id)
	delete(m.latched, ev.id)
}
