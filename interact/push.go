package interact

import (
	"errors"
	"log/slog"
	"math"

	"github.com/samber/oops"

	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/tileevent"
	"github.com/milk9111/overworld/tween"
)

const (
	// PushDelay is how long the hero leans on an object before pushing.
	PushDelay = 250.0
	PushShift = 16.0
	PushTime  = 400.0

	DefaultDropDuration = 300.0
)

var ErrMissingDep = errors.New("interact: missing collaborator")

// Field is the map objects stand on.
type Field interface {
	TileSize() (w, h float64)
	CollisionLayer() int
	Blocked(x, y, layer int) bool
	Occupy(x, y, layer int)
	Vacate(x, y, layer int)
}

// Env is what pushes act on. Hero, Field, Clock and Index are required.
type Env struct {
	Hero    *char.Controllable
	Field   Field
	World   char.PhysicsWorld
	Clock   *tween.Scheduler
	Index   *tileevent.Index
	Effects tileevent.Effects
	Log     *slog.Logger
}

// Pusher watches the hero lean on pushable objects and runs the push
// choreography once it has leaned long enough.
type Pusher struct {
	env     Env
	log     *slog.Logger
	objects []*Object

	leaning *Object
	timer   *tween.Timer
}

func NewPusher(env Env) (*Pusher, error) {
	errb := oops.In("interact")
	switch {
	case env.Hero == nil:
		return nil, errb.With("dep", "hero").Wrap(ErrMissingDep)
	case env.Field == nil:
		return nil, errb.With("dep", "field").Wrap(ErrMissingDep)
	case env.Clock == nil:
		return nil, errb.With("dep", "clock").Wrap(ErrMissingDep)
	case env.Index == nil:
		return nil, errb.With("dep", "index").Wrap(ErrMissingDep)
	}
	log := env.Log
	if log == nil {
		log = slog.Default()
	}
	return &Pusher{env: env, log: log.With("component", "push")}, nil
}

// Add places o on the map and marks its tile as held.
func (p *Pusher) Add(o *Object) {
	p.objects = append(p.objects, o)
	p.env.Field.Occupy(o.tileX, o.tileY, o.layer)
}

func (p *Pusher) Objects() []*Object { return p.objects }

// ObjectAt returns the object standing on (x, y) in layer.
func (p *Pusher) ObjectAt(x, y, layer int) *Object {
	for _, o := range p.objects {
		if o.tileX == x && o.tileY == y && o.layer == layer {
			return o
		}
	}
	return nil
}

// Update runs after movement. Walking into a pushable object for PushDelay
// milliseconds sets the hero's trying-to-push flag and pushes it.
func (p *Pusher) Update() {
	hero := p.env.Hero
	if hero.Pushing || !hero.Active() {
		return
	}
	target := p.leaningOn()
	if target == nil {
		p.stopLeaning()
		return
	}
	if target == p.leaning && p.timer != nil {
		return
	}
	p.stopLeaning()
	p.leaning = target
	dir := hero.CurrentDirection()
	p.timer = p.env.Clock.Once(PushDelay, func() {
		p.timer = nil
		hero.TryingToPush = true
		hero.SetTryingToPushDirection(dir)
		p.NormalPush(target)
	})
}

func (p *Pusher) leaningOn() *Object {
	hero := p.env.Hero
	action := hero.CurrentAction()
	if !hero.StopByColliding || (action != char.Walk && action != char.Dash) {
		return nil
	}
	dir := hero.CurrentDirection()
	if dir.IsDiagonal() || !dir.Valid() {
		return nil
	}
	dx, dy := dir.Vector()
	hx, hy := hero.TilePosition()
	o := p.ObjectAt(hx+dx, hy+dy, p.env.Field.CollisionLayer())
	if o == nil || !o.pushable {
		return nil
	}
	return o
}

func (p *Pusher) stopLeaning() {
	if p.timer != nil {
		p.timer.Cancel()
		p.timer = nil
	}
	p.leaning = nil
	p.env.Hero.TryingToPush = false
}

// NormalPush pushes o when the hero is trying to push in a cardinal
// direction it also faces and no other action owns it.
func (p *Pusher) NormalPush(o *Object) *tween.Future {
	hero := p.env.Hero
	dir := hero.TryingToPushDirection()
	if !hero.TryingToPush || dir.IsDiagonal() || dir != hero.CurrentDirection() || hero.InAction(false) {
		return tween.Resolved()
	}
	return p.push(o, dir)
}

// pushSide is the direction a push from (hx, hy) moves an object centered
// on (ox, oy): the hero must stand on the opposite side.
func pushSide(hx, hy, ox, oy float64) common.Direction {
	dx, dy := hx-ox, hy-oy
	switch {
	case dy <= -math.Abs(dx):
		return common.Down
	case dx >= math.Abs(dy):
		return common.Left
	case dy >= math.Abs(dx):
		return common.Up
	default:
		return common.Right
	}
}

func (p *Pusher) push(o *Object, dir common.Direction) *tween.Future {
	hero := p.env.Hero
	hx, hy := hero.Position()
	ox, oy := o.Position()
	if pushSide(hx, hy, ox, oy) != dir {
		return tween.Resolved()
	}
	dx, dy := dir.Vector()
	nx, ny := o.tileX+dx, o.tileY+dy
	if p.env.Field.Blocked(nx, ny, o.layer) {
		p.log.Debug("push blocked", "object", o.key, "x", nx, "y", ny)
		hero.TryingToPush = false
		return tween.Resolved()
	}

	hero.Pushing = true
	hero.ForceAction(char.Push)
	hero.PlayCurrentAction()
	paused := p.env.World != nil && p.env.World.Pause()

	o.shiftEvents(p.env.Index, dx, dy)
	p.env.Field.Vacate(o.tileX, o.tileY, o.layer)
	prevX, prevY := o.tileX, o.tileY
	o.tileX, o.tileY = nx, ny
	p.env.Field.Occupy(o.tileX, o.tileY, o.layer)

	shiftX, shiftY := float64(dx)*PushShift, float64(dy)*PushShift
	objectDone := tween.NewFuture()
	p.env.Clock.To(PushTime, tween.Linear,
		bodyTrack(o.body, 'x', ox+shiftX),
		bodyTrack(o.body, 'y', oy+shiftY),
	).OnComplete(func() {
		p.afterPush(o).Then(objectDone.Resolve)
	}).Start()

	// The hero is also lined up with the object's new row or column.
	tw, th := p.env.Field.TileSize()
	destX, destY := hx+shiftX, hy+shiftY
	if dx == 0 {
		destX = tw * (float64(prevX+dx) + 0.5)
	} else {
		destY = th * (float64(prevY+dy) + 0.5)
	}
	heroDone := p.env.Clock.To(PushTime, tween.Linear,
		bodyTrack(hero.Body(), 'x', destX),
		bodyTrack(hero.Body(), 'y', destY),
	).OnUpdate(func(float64) { hero.UpdateShadow() }).Start().Future()

	done := tween.NewFuture()
	tween.All(objectDone, heroDone).Then(func() {
		hero.Pushing = false
		hero.TryingToPush = false
		hero.UpdateTilePosition()
		if paused {
			p.env.World.Resume()
		}
		p.log.Debug("pushed", "object", o.key, "x", o.tileX, "y", o.tileY)
		done.Resolve()
	})
	return done
}

// afterPush drops o when it landed on one of its drop tiles.
func (p *Pusher) afterPush(o *Object) *tween.Future {
	drop, ok := o.dropAt(o.tileX, o.tileY)
	if !ok {
		return tween.Resolved()
	}
	_, th := p.env.Field.TileSize()
	shift := drop.DestY - o.tileY
	o.shiftEvents(p.env.Index, 0, shift)
	p.env.Field.Vacate(o.tileX, o.tileY, o.layer)
	o.tileY = drop.DestY
	o.layer = drop.DestLayer
	o.body.SetLayer(o.layer)
	p.env.Field.Occupy(o.tileX, o.tileY, o.layer)

	duration := drop.Duration
	if duration <= 0 {
		duration = DefaultDropDuration
	}
	_, oy := o.Position()
	done := tween.NewFuture()
	p.env.Clock.To(duration, tween.QuadIn, bodyTrack(o.body, 'y', oy+float64(shift)*th)).OnComplete(func() {
		if !drop.Dust || p.env.Effects == nil {
			done.Resolve()
			return
		}
		hero := p.env.Hero
		hero.ForceAction(char.Idle)
		hero.Play(char.Idle, hero.CurrentDirection().String(), true, 0)
		x, y := o.Position()
		p.env.Effects.Dust(x, y).Then(done.Resolve)
	}).Start()
	return done
}

type positioner interface {
	Position() (x, y float64)
	SetPosition(x, y float64)
}

func bodyTrack(b positioner, axis byte, to float64) tween.Track {
	return tween.Track{
		Get: func() float64 {
			x, y := b.Position()
			if axis == 'x' {
				return x
			}
			return y
		},
		Set: func(v float64) {
			x, y := b.Position()
			if axis == 'x' {
				b.SetPosition(v, y)
			} else {
				b.SetPosition(x, v)
			}
		},
		To: []float64{to},
	}
}
