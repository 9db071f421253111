package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/tileevent"
	"github.com/milk9111/overworld/tilemap"
	"github.com/milk9111/overworld/tween"
)

const yard = `
name: yard
width: 10
height: 8
tile_width: 16
tile_height: 16
layers:
  - rows:
      - "##########"
      - "#........#"
      - "#........#"
      - "#........#"
      - "#.......##"
      - "#........#"
      - "#........#"
      - "##########"
  - rows:
      - ".........."
      - ".........."
      - ".........."
      - ".........."
      - ".........."
      - ".........."
      - ".........."
      - ".........."
hero: {key: hero, x: 4, y: 4}
`

func heroLibrary() *anim.Library {
	keys := make([]string, 0, len(common.AllDirections))
	for _, d := range common.AllDirections {
		keys = append(keys, d.String())
	}
	return &anim.Library{
		Name: "hero",
		Actions: map[string]anim.ActionSpec{
			"idle": {Frames: 1, FPS: 1, Loop: true, Keys: keys},
			"walk": {Frames: 4, FPS: 10, Loop: true, Keys: keys},
			"push": {Frames: 4, FPS: 8, Loop: true, Keys: keys},
		},
	}
}

type fixture struct {
	p     *Pusher
	hero  *char.Controllable
	field *tilemap.Map
	world *physics.World
	clock *tween.Scheduler
	dust  *Dust
}

// newFixture puts the hero on tile (4, 4) facing right.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	lvl, err := tilemap.Parse([]byte(yard))
	require.NoError(t, err)
	field, err := tilemap.New(lvl, nil, nil, nil)
	require.NoError(t, err)

	f := &fixture{field: field, world: physics.NewWorld(nil), clock: tween.NewScheduler()}
	f.dust = NewDust(f.clock)
	facing := common.Right
	f.hero, err = char.New(char.Config{Key: "hero", WalkSpeed: 60, TileX: 4, TileY: 4, Direction: &facing}, char.Deps{
		Body:   f.world.AddCircle(0, 0, 7, 0),
		World:  f.world,
		Sprite: anim.NewSprite(heroLibrary()),
		Field:  field,
		Clock:  f.clock,
	})
	require.NoError(t, err)

	f.p, err = NewPusher(Env{
		Hero:    f.hero,
		Field:   field,
		World:   f.world,
		Clock:   f.clock,
		Index:   field.Events(),
		Effects: f.dust,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) object(t *testing.T, x, y int, drops ...tilemap.Drop) *Object {
	t.Helper()
	ev, err := tileevent.Build(tileevent.Spec{
		Kind:                 tileevent.Jump,
		X:                    x,
		Y:                    y,
		ActivationDirections: []string{"all"},
		ActivationLayers:     []int{1},
	}, nil, true)
	require.NoError(t, err)
	ev.LayerShift = 1
	f.field.Events().Add(ev)

	cx, cy := f.field.TileCenter(x, y)
	o := NewObject(ObjectConfig{
		Key:      "crate",
		TileX:    x,
		TileY:    y,
		Pushable: true,
		Events:   []*tileevent.Event{ev},
		Drops:    drops,
	}, f.world.AddBox(cx, cy, 16, 16, 0))
	f.p.Add(o)
	return o
}

func (f *fixture) lean(dir common.Direction) {
	f.hero.SetDirection(dir, false, true)
	f.hero.TryingToPush = true
	f.hero.SetTryingToPushDirection(dir)
}

func position(p interface{ Position() (float64, float64) }) []float64 {
	x, y := p.Position()
	return []float64{x, y}
}

func TestNormalPushMovesObjectHeroAndEvents(t *testing.T) {
	f := newFixture(t)
	crate := f.object(t, 5, 4)
	f.lean(common.Right)

	done := f.p.NormalPush(crate)
	assert.True(t, f.hero.Pushing)
	assert.Equal(t, char.Push, f.hero.CurrentAction())
	assert.True(t, f.world.Paused())
	assert.Equal(t, []*tileevent.Event{crate.Events()[0]}, f.field.Events().At(6, 4), "events move before the tween")

	f.clock.Advance(PushTime / 2)
	assert.Equal(t, []float64{96, 72}, position(crate))
	assert.Equal(t, []float64{80, 72}, position(f.hero))
	assert.False(t, done.IsResolved())

	f.clock.Advance(PushTime / 2)
	require.True(t, done.IsResolved())
	assert.Equal(t, []float64{104, 72}, position(crate))
	assert.Equal(t, []float64{88, 72}, position(f.hero))
	assert.False(t, f.hero.Pushing)
	assert.False(t, f.hero.TryingToPush)
	assert.False(t, f.world.Paused())

	x, y := crate.TilePosition()
	assert.Equal(t, []int{6, 4}, []int{x, y})
	hx, hy := f.hero.TilePosition()
	assert.Equal(t, []int{5, 4}, []int{hx, hy})
	assert.True(t, f.field.Blocked(6, 4, 0))
	assert.False(t, f.field.Blocked(5, 4, 0))
}

func TestNormalPushLinesHeroUpWithObject(t *testing.T) {
	f := newFixture(t)
	crate := f.object(t, 4, 3)
	f.hero.Body().SetPosition(70, 75)
	f.lean(common.Up)

	done := f.p.NormalPush(crate)
	f.clock.Advance(PushTime)
	require.True(t, done.IsResolved())
	assert.Equal(t, []float64{72, 59}, position(f.hero), "x snaps to the object's column")
	assert.Equal(t, []float64{72, 40}, position(crate))
}

func TestNormalPushPreconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"not trying", func(f *fixture) {
			f.lean(common.Right)
			f.hero.TryingToPush = false
		}},
		{"diagonal", func(f *fixture) { f.lean(common.UpRight) }},
		{"facing away", func(f *fixture) {
			f.lean(common.Right)
			f.hero.SetDirection(common.Down, false, true)
		}},
		{"wrong side", func(f *fixture) { f.lean(common.Left) }},
		{"in action", func(f *fixture) {
			f.lean(common.Right)
			f.hero.Sliding = true
		}},
		{"destination blocked", func(f *fixture) {
			f.lean(common.Right)
			f.field.Occupy(6, 4, 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			crate := f.object(t, 5, 4)
			tt.setup(f)

			done := f.p.NormalPush(crate)
			assert.True(t, done.IsResolved())
			assert.False(t, f.hero.Pushing)
			assert.False(t, f.world.Paused())
			assert.Equal(t, []float64{88, 72}, position(crate))
			x, y := crate.TilePosition()
			assert.Equal(t, []int{5, 4}, []int{x, y})
		})
	}
}

func TestPushAgainstWallIsBlocked(t *testing.T) {
	f := newFixture(t)
	crate := f.object(t, 7, 4)
	f.hero.Body().SetPosition(f.field.TileCenter(6, 4))
	f.hero.UpdateTilePosition()
	f.lean(common.Right)

	done := f.p.NormalPush(crate)
	assert.True(t, done.IsResolved())
	assert.False(t, f.hero.TryingToPush)
	x, _ := crate.TilePosition()
	assert.Equal(t, 7, x)
}

func TestPushOntoDropTileFallsAndRaisesDust(t *testing.T) {
	f := newFixture(t)
	crate := f.object(t, 5, 4, tilemap.Drop{X: 6, Y: 4, DestY: 6, DestLayer: 0, Duration: 300, Dust: true})
	f.lean(common.Right)

	done := f.p.NormalPush(crate)
	f.clock.Advance(PushTime)
	assert.False(t, done.IsResolved(), "the fall keeps the push running")
	assert.True(t, f.hero.Pushing)
	x, y := crate.TilePosition()
	assert.Equal(t, []int{6, 6}, []int{x, y})
	assert.Equal(t, []*tileevent.Event{crate.Events()[0]}, f.field.Events().At(6, 6))
	assert.True(t, f.field.Blocked(6, 6, 0))
	assert.False(t, f.field.Blocked(6, 4, 0))

	f.clock.Advance(150)
	_, cy := crate.Position()
	assert.InDelta(t, 80, cy, 0.001, "the fall eases in")

	f.clock.Advance(150)
	assert.Equal(t, []float64{104, 104}, position(crate))
	assert.Equal(t, char.Idle, f.hero.CurrentAction())
	assert.Len(t, f.dust.Particles(), DustCount)
	assert.True(t, f.world.Paused())

	f.clock.Advance(DustTime)
	require.True(t, done.IsResolved())
	assert.Empty(t, f.dust.Particles())
	assert.False(t, f.world.Paused())
	assert.False(t, f.hero.Pushing)
}

func TestLeaningStartsPushAfterDelay(t *testing.T) {
	f := newFixture(t)
	crate := f.object(t, 5, 4)
	f.hero.SetDirection(common.Right, false, true)
	f.hero.ForceAction(char.Walk)
	f.hero.StopByColliding = true

	f.p.Update()
	f.clock.Advance(PushDelay - 10)
	f.p.Update()
	assert.False(t, f.hero.Pushing)

	f.clock.Advance(10)
	assert.True(t, f.hero.Pushing)
	assert.Equal(t, common.Right, f.hero.TryingToPushDirection())

	f.clock.Advance(PushTime)
	f.clock.Advance(PushTime)
	x, _ := crate.TilePosition()
	assert.Equal(t, 6, x)
	assert.False(t, f.hero.Pushing)
}

func TestLeaningResetsWhenHeroStops(t *testing.T) {
	f := newFixture(t)
	f.object(t, 5, 4)
	f.hero.SetDirection(common.Right, false, true)
	f.hero.ForceAction(char.Walk)
	f.hero.StopByColliding = true

	f.p.Update()
	f.clock.Advance(PushDelay / 2)
	f.hero.StopByColliding = false
	f.p.Update()
	f.clock.Advance(PushDelay)
	assert.False(t, f.hero.Pushing)
	assert.False(t, f.hero.TryingToPush)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestPushSide(t *testing.T) {
	tests := []struct {
		hx, hy float64
		want   common.Direction
	}{
		{0, -16, common.Down},
		{16, 0, common.Left},
		{0, 16, common.Up},
		{-16, 0, common.Right},
		{-16, -4, common.Right},
		{4, 14, common.Up},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pushSide(tt.hx, tt.hy, 0, 0), "hero at (%v, %v)", tt.hx, tt.hy)
	}
}

func TestDustFansOutAndClears(t *testing.T) {
	clock := tween.NewScheduler()
	d := NewDust(clock)
	done := d.Dust(100, 100)
	clock.Advance(DustTime / 2)

	ps := d.Particles()
	require.Len(t, ps, DustCount)
	half := DustRadius / 2
	first, last := ps[0], ps[DustCount-1]
	assert.InDelta(t, 100+half*0.8660254, first.X, 0.001)
	assert.InDelta(t, 100-half*0.5, first.Y, 0.001)
	assert.InDelta(t, 100-half*0.8660254, last.X, 0.001)
	assert.InDelta(t, 100-half*0.5, last.Y, 0.001)
	assert.InDelta(t, 100+half, ps[3].Y, 0.001, "the middle puff goes straight down")
	assert.False(t, done.IsResolved())

	clock.Advance(DustTime / 2)
	assert.True(t, done.IsResolved())
	assert.Empty(t, d.Particles())
}
