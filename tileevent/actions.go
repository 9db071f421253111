package tileevent

import (
	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/tween"
)

const (
	// StepShiftFactor divides the tile height into the vertical shift a
	// step event applies.
	StepShiftFactor = 4

	AdvanceDuration   = 200.0
	SliderTimePerTile = 60.0
)

func (m *Manager) tileCenter(x, y int) (float64, float64) {
	tw, th := m.env.Field.TileSize()
	return tw * (float64(x) + 0.5), th * (float64(y) + 0.5)
}

func (m *Manager) changeLayer(layer int) {
	m.env.Field.SetCollisionLayer(layer)
	m.env.Hero.SetCollisionLayer(layer)
}

func (m *Manager) pausePhysics() bool {
	return m.env.World != nil && m.env.World.Pause()
}

func (m *Manager) resumePhysics(paused bool) {
	if paused {
		m.env.World.Resume()
	}
}

func (m *Manager) moveHero(duration float64, easing tween.Easing, x, y float64) *tween.Tween {
	body := m.env.Hero.Body()
	return m.env.Clock.To(duration, easing,
		tween.Track{
			Get: func() float64 { bx, _ := body.Position(); return bx },
			Set: func(v float64) { _, by := body.Position(); body.SetPosition(v, by) },
			To:  []float64{x},
		},
		tween.Track{
			Get: func() float64 { _, by := body.Position(); return by },
			Set: func(v float64) { bx, _ := body.Position(); body.SetPosition(bx, v) },
			To:  []float64{y},
		},
	)
}

// departedToward reports whether the hero left ev's tile into the tile
// next to it in one of ev's activation directions.
func (m *Manager) departedToward(ev *Event) bool {
	hx, hy := m.env.Hero.TilePosition()
	for _, d := range ev.directions {
		dx, dy := d.Vector()
		if hx == ev.x+dx && hy == ev.y+dy {
			return true
		}
	}
	return false
}

func (m *Manager) fireSpeed(ev *Event) {
	m.env.Hero.IncreaseExtraSpeed(ev.speed)
	m.SetTriggered(ev)
}

func (m *Manager) unsetSpeed(ev *Event) {
	m.env.Hero.IncreaseExtraSpeed(-ev.speed)
	m.UnsetTriggered(ev)
}

func (m *Manager) fireStep(ev *Event) {
	m.UnsetTriggered(ev)
	if !m.departedToward(ev) {
		return
	}
	_, th := m.env.Field.TileSize()
	shift := th / StepShiftFactor
	if ev.stepDirection == common.Up {
		shift = -shift
	}
	body := m.env.Hero.Body()
	x, y := body.Position()
	body.SetPosition(x, y+shift)
	m.env.Hero.UpdateShadow()
}

func (m *Manager) fireCollision(ev *Event) {
	m.UnsetTriggered(ev)
	if !m.departedToward(ev) {
		return
	}
	m.changeLayer(ev.destLayer)
	m.log.Debug("collision layer changed", "layer", ev.destLayer, "x", ev.x, "y", ev.y)
}

// fireClimb starts climbing on a set event and finishes it on an unset
// one.
func (m *Manager) fireClimb(ev *Event) {
	hero := m.env.Hero
	start := ev.isSet && !hero.Climbing
	finish := !ev.isSet && hero.Climbing
	if !start && !finish {
		return
	}
	m.onEvent = true
	hero.Stop(false)
	if ev.changeToLayer != nil {
		m.changeLayer(*ev.changeToLayer)
	}
	body := hero.Body()
	cx, _ := m.tileCenter(ev.x, ev.y)
	_, y := body.Position()
	body.SetPosition(cx, y)

	hero.IdleClimbing = false
	if start {
		hero.Climbing = true
		hero.ForceAction(char.Climb)
	} else {
		hero.Climbing = false
		hero.ForceAction(char.Idle)
	}
	if ev.activationFacing.Valid() {
		hero.SetDirection(ev.activationFacing, false, true)
	}
	hero.PlayCurrentAction()
	hero.UpdateShadow()
	m.onEvent = false
}

func (m *Manager) fireTeleport(ev *Event) {
	hero := m.env.Hero
	if hero.Teleporting {
		return
	}
	hero.Teleporting = true
	m.onEvent = true
	req := TeleportRequest{
		Map:       ev.target,
		TileX:     ev.xTarget,
		TileY:     ev.yTarget,
		Layer:     ev.destLayer,
		Direction: ev.destDirection,
	}
	arrive := func() {
		if ev.target != "" && m.env.Teleporter != nil {
			if err := m.env.Teleporter.Teleport(req); err != nil {
				m.log.Error("teleport failed", "map", ev.target, "x", ev.x, "y", ev.y, "err", err)
			}
		} else {
			m.placeHero(req)
		}
		hero.Teleporting = false
		m.onEvent = false
	}
	if !ev.advanceEffect {
		hero.Stop(true)
		arrive()
		return
	}

	dir := hero.CurrentDirection()
	dx, dy := dir.Vector()
	tw, th := m.env.Field.TileSize()
	x, y := hero.Position()
	paused := m.pausePhysics()
	hero.Stop(false)
	hero.Play(char.Walk, dir.String(), true, 0)
	m.moveHero(AdvanceDuration, tween.Linear, x+float64(dx)*tw, y+float64(dy)*th).
		OnComplete(func() {
			m.resumePhysics(paused)
			hero.Stop(true)
			arrive()
		}).Start()
}

// placeHero moves the hero within the current map.
func (m *Manager) placeHero(req TeleportRequest) {
	hero := m.env.Hero
	x, y := m.tileCenter(req.TileX, req.TileY)
	hero.Body().SetPosition(x, y)
	m.changeLayer(req.Layer)
	if req.Direction.Valid() {
		hero.SetDirection(req.Direction, true, true)
	}
	hero.UpdateTilePosition()
	hero.UpdateShadow()
}

func (m *Manager) fireSlider(ev *Event) {
	hero := m.env.Hero
	if hero.Sliding {
		return
	}
	hero.Sliding = true
	m.onEvent = true
	hero.Stop(true)
	paused := m.pausePhysics()

	hx, hy := hero.TilePosition()
	tiles := max(abs(ev.xTarget-hx), abs(ev.yTarget-hy), 1)
	tx, ty := m.tileCenter(ev.xTarget, ev.yTarget)
	m.moveHero(SliderTimePerTile*float64(tiles), tween.QuadIn, tx, ty).
		OnComplete(func() {
			m.changeLayer(ev.destLayer)
			hero.UpdateTilePosition()
			hero.UpdateShadow()
			done := func() {
				m.resumePhysics(paused)
				hero.Sliding = false
				m.onEvent = false
			}
			if ev.showDust && m.env.Effects != nil {
				m.env.Effects.Dust(tx, ty).Then(done)
				return
			}
			done()
		}).Start()
}

// fireJump jumps JumpRadius tiles ahead onto a jump event that accepts the
// hero from the opposite side.
func (m *Manager) fireJump(ev *Event) {
	hero := m.env.Hero
	if !ev.isSet || m.onEvent || hero.InAction(false) {
		return
	}
	dir := hero.CurrentDirection()
	if !dir.Valid() || dir.IsDiagonal() {
		return
	}
	dx, dy := dir.Vector()
	nx, ny := ev.x+dx*JumpRadius, ev.y+dy*JumpRadius
	layer := m.env.Field.CollisionLayer()
	if m.env.Field.Blocked(nx, ny, layer) {
		return
	}
	found := false
	for _, other := range m.index.At(nx, ny) {
		if other.kind != Jump || !other.InLayer(layer) || !other.IsActive(dir.Opposite()) {
			continue
		}
		if !other.isSet {
			return
		}
		found = true
		break
	}
	if !found {
		return
	}

	tw, th := m.env.Field.TileSize()
	distance := float64(JumpRadius) * tw * float64(dx)
	if dy != 0 {
		distance = float64(JumpRadius) * th * float64(dy)
	}
	m.onEvent = true
	hero.Jump(char.JumpOptions{
		Dest:      &char.JumpDest{TileX: nx, TileY: ny, Distance: distance},
		Direction: &dir,
	}).Then(func() {
		hero.UpdateTilePosition()
		m.onEvent = false
	})
}

// fireIceSlide toggles ice sliding. It acts once per tile occupancy.
func (m *Manager) fireIceSlide(ev *Event) {
	if m.latched[ev.id] {
		return
	}
	m.latched[ev.id] = true
	hero := m.env.Hero
	if hero.IceSlidingActive {
		hero.SlidingOnIce = false
		hero.SetIceSlideDirection(common.None)
		hero.IceSlidingActive = false
		return
	}
	hero.IceSlidingActive = true
	dir := ev.startSlidingDir
	if !dir.Valid() {
		dir = hero.CurrentDirection()
	}
	hero.SetIceSlideDirection(dir)
	hero.SlidingOnIce = true
}

// fireTrigger runs the event's script once per tile occupancy.
func (m *Manager) fireTrigger(ev *Event) {
	if m.latched[ev.id] {
		return
	}
	m.latched[ev.id] = true
	if m.env.Scripts == nil {
		m.log.Error("trigger event without script runner", "script", ev.script, "x", ev.x, "y", ev.y)
		return
	}
	if err := m.env.Scripts.Run(ev.script, m.scriptEngine(ev)); err != nil {
		m.log.Error("trigger script failed", "script", ev.script, "x", ev.x, "y", ev.y, "err", err)
		return
	}
	if ev.removeFromField {
		m.Remove(ev)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
