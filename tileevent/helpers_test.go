package tileevent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tween"
)

type fakeBody struct {
	x, y   float64
	vx, vy float64
	layer  int
}

func (b *fakeBody) Position() (float64, float64) { return b.x, b.y }
func (b *fakeBody) SetPosition(x, y float64)     { b.x, b.y = x, y }
func (b *fakeBody) Velocity() (float64, float64) { return b.vx, b.vy }
func (b *fakeBody) SetVelocity(vx, vy float64)   { b.vx, b.vy = vx, vy }
func (b *fakeBody) SetLayer(layer int)           { b.layer = layer }

type fakeWorld struct {
	paused  bool
	pauses  int
	resumes int
}

func (w *fakeWorld) Pause() bool {
	if w.paused {
		return false
	}
	w.paused = true
	w.pauses++
	return true
}

func (w *fakeWorld) Resume() bool {
	if !w.paused {
		return false
	}
	w.paused = false
	w.resumes++
	return true
}

type cell struct{ x, y, layer int }

type fakeField struct {
	layer   int
	blocked map[cell]bool
}

func (f *fakeField) TileSize() (float64, float64)         { return 16, 16 }
func (f *fakeField) CollisionLayer() int                  { return f.layer }
func (f *fakeField) SetCollisionLayer(layer int)          { f.layer = layer }
func (f *fakeField) Blocked(x, y, layer int) bool         { return f.blocked[cell{x, y, layer}] }
func (f *fakeField) IsWorldMap() bool                     { return false }
func (f *fakeField) ShowFootsteps() bool                  { return false }
func (f *fakeField) HalfCrop(int, int) bool               { return false }
func (f *fakeField) FootprintDisabled(int, int, int) bool { return false }

type fakeTeleporter struct{ requests []TeleportRequest }

func (t *fakeTeleporter) Teleport(req TeleportRequest) error {
	t.requests = append(t.requests, req)
	return nil
}

type fakeEffects struct {
	clock  *tween.Scheduler
	bursts int
}

func (e *fakeEffects) Dust(float64, float64) *tween.Future {
	e.bursts++
	done := tween.NewFuture()
	e.clock.Once(100, done.Resolve)
	return done
}

func heroLibrary() *anim.Library {
	keys := make([]string, 0, len(common.AllDirections))
	for _, d := range common.AllDirections {
		keys = append(keys, d.String())
	}
	return &anim.Library{
		Name: "hero",
		Actions: map[string]anim.ActionSpec{
			"idle":  {Frames: 1, FPS: 1, Loop: true, Keys: keys},
			"walk":  {Frames: 4, FPS: 10, Loop: true, Keys: keys},
			"climb": {Frames: 2, FPS: 8, Loop: true, Keys: append([]string{"idle"}, keys...)},
		},
	}
}

type fixture struct {
	m          *Manager
	ix         *Index
	hero       *char.Controllable
	body       *fakeBody
	world      *fakeWorld
	field      *fakeField
	clock      *tween.Scheduler
	store      *storage.MemStore
	teleporter *fakeTeleporter
	effects    *fakeEffects
	scripts    map[string]string
}

// newFixture places the hero at the center of tile (4, 4), facing down.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ix:         NewIndex(),
		body:       &fakeBody{},
		world:      &fakeWorld{},
		field:      &fakeField{blocked: map[cell]bool{}},
		clock:      tween.NewScheduler(),
		store:      storage.NewMemStore(),
		teleporter: &fakeTeleporter{},
		scripts:    map[string]string{},
	}
	f.effects = &fakeEffects{clock: f.clock}
	hero, err := char.New(char.Config{
		Key:        "hero",
		WalkSpeed:  60,
		ClimbSpeed: 45,
		TileX:      4,
		TileY:      4,
	}, char.Deps{
		Body:   f.body,
		World:  f.world,
		Sprite: anim.NewSprite(heroLibrary()),
		Field:  f.field,
		Clock:  f.clock,
	})
	require.NoError(t, err)
	f.hero = hero

	runner := NewScriptRunner(func(name string) ([]byte, error) {
		src, ok := f.scripts[name]
		if !ok {
			return nil, fmt.Errorf("no script %q", name)
		}
		return []byte(src), nil
	})
	f.m, err = NewManager(f.ix, Env{
		Hero:       hero,
		Field:      f.field,
		World:      f.world,
		Clock:      f.clock,
		Storage:    f.store,
		Teleporter: f.teleporter,
		Effects:    f.effects,
		Scripts:    runner,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) add(t *testing.T, spec Spec) *Event {
	t.Helper()
	ev, err := Build(spec, f.store, false)
	require.NoError(t, err)
	return f.ix.Add(ev)
}

// walk makes the hero walk toward dir without moving its body.
func (f *fixture) walk(dir common.Direction) {
	dx, dy := dir.Vector()
	f.hero.SetDirection(dir, false, true)
	f.hero.Steer(float64(dx), float64(dy), false)
	f.hero.UpdateMovement(false)
}

// moveTo puts the hero's body at the center of (x, y) and runs a tick.
func (f *fixture) moveTo(x, y int) {
	f.body.SetPosition(16*(float64(x)+0.5), 16*(float64(y)+0.5))
	f.hero.UpdateTilePosition()
	f.m.Update()
}

func boolPtr(b bool) *bool { return &b }
func intPtr(v int) *int    { return &v }
