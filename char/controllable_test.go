package char

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tween"
)

func TestNewPlacesBodyOnTileCenter(t *testing.T) {
	h := newHarness(t)
	x, y := h.c.Position()
	assert.Equal(t, 56.0, x)
	assert.Equal(t, 56.0, y)
	assert.Equal(t, common.Down, h.c.CurrentDirection())
	assert.Equal(t, common.Down, h.c.TransitionDirection())
	assert.Equal(t, Idle, h.c.CurrentAction())
	assert.True(t, h.c.Active())
}

func TestNewValidation(t *testing.T) {
	deps := func(lib *anim.Library) Deps {
		return Deps{
			Body:   &fakeBody{},
			Sprite: anim.NewSprite(lib),
			Field:  &fakeField{},
			Clock:  tween.NewScheduler(),
		}
	}

	_, err := New(Config{Key: "npc"}, deps(testLibrary(false)))
	assert.True(t, errors.Is(err, ErrInvalidSpeed))

	_, err = New(Config{Key: "npc", WalkSpeed: 60}, Deps{Body: &fakeBody{}})
	assert.True(t, errors.Is(err, ErrMissingDep))

	noDash := testLibrary(false)
	delete(noDash.Actions, "dash")
	_, err = New(Config{Key: "npc", WalkSpeed: 60, DashSpeed: 90}, deps(noDash))
	assert.True(t, errors.Is(err, anim.ErrUnknownAnimation))

	_, err = New(Config{Key: "npc", WalkSpeed: 60}, deps(noDash))
	assert.NoError(t, err)

	_, err = New(Config{Key: "npc", WalkSpeed: 60, Action: "cast"}, deps(testLibrary(false)))
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestNewValidatesChoreographyAnimations(t *testing.T) {
	deps := func(lib *anim.Library) Deps {
		return Deps{
			Body:   &fakeBody{},
			Sprite: anim.NewSprite(lib),
			Field:  &fakeField{},
			Clock:  tween.NewScheduler(),
		}
	}
	cfg := Config{Key: "npc", WalkSpeed: 60}

	partial := testLibrary(true)
	partial.Actions["jump"] = anim.ActionSpec{Frames: 2, FPS: 20, Keys: []string{"right"}}
	_, err := New(cfg, deps(partial))
	assert.True(t, errors.Is(err, anim.ErrUnknownAnimation))

	looping := testLibrary(true)
	looping.Actions["jump"] = anim.ActionSpec{Frames: 2, FPS: 20, Loop: true, Keys: directionKeys()}
	_, err = New(cfg, deps(looping))
	assert.True(t, errors.Is(err, anim.ErrNeverCompletes))

	stalled := testLibrary(true)
	stalled.Actions["jump"] = anim.ActionSpec{Frames: 2, Keys: directionKeys()}
	_, err = New(cfg, deps(stalled))
	assert.True(t, errors.Is(err, anim.ErrNeverCompletes))

	noIdleClimb := testLibrary(false)
	noIdleClimb.Actions["climb"] = anim.ActionSpec{Frames: 2, FPS: 8, Loop: true, Keys: directionKeys()}
	_, err = New(cfg, deps(noIdleClimb))
	assert.True(t, errors.Is(err, anim.ErrUnknownAnimation))

	_, err = New(cfg, deps(testLibrary(true)))
	assert.NoError(t, err)
}

func TestNewDirection(t *testing.T) {
	deps := Deps{
		Body:   &fakeBody{},
		Sprite: anim.NewSprite(testLibrary(false)),
		Field:  &fakeField{},
		Clock:  tween.NewScheduler(),
	}
	c, err := New(Config{Key: "npc", WalkSpeed: 60}, deps)
	require.NoError(t, err)
	assert.Equal(t, common.Down, c.CurrentDirection(), "unset faces down")

	right := common.Right
	c, err = New(Config{Key: "npc", WalkSpeed: 60, Direction: &right}, deps)
	require.NoError(t, err)
	assert.Equal(t, common.Right, c.CurrentDirection())
}

func TestNewRestoresFromStorage(t *testing.T) {
	store := storage.NewMemStore()
	store.Set("npc_pos", map[string]any{"x": 7, "y": 2})
	store.Set("npc_dir", "left")
	store.Set("npc_active", false)

	sprite := anim.NewSprite(testLibrary(false))
	body := &fakeBody{}
	c, err := New(Config{
		Key:       "npc",
		WalkSpeed: 60,
		TileX:     1,
		TileY:     1,
		StorageKeys: StorageKeys{
			Position:  "npc_pos",
			Direction: "npc_dir",
			Active:    "npc_active",
		},
	}, Deps{Body: body, Sprite: sprite, Field: &fakeField{}, Clock: tween.NewScheduler(), Storage: store})
	require.NoError(t, err)

	tx, ty := c.TilePosition()
	assert.Equal(t, 7, tx)
	assert.Equal(t, 2, ty)
	assert.Equal(t, 120.0, body.x)
	assert.Equal(t, 40.0, body.y)
	assert.Equal(t, common.Left, c.CurrentDirection())
	assert.False(t, c.Active())
	assert.False(t, sprite.Visible())

	store.Set("npc_pos", "somewhere")
	_, err = New(Config{Key: "npc", WalkSpeed: 60, StorageKeys: StorageKeys{Position: "npc_pos"}},
		Deps{Body: &fakeBody{}, Sprite: sprite, Field: &fakeField{}, Clock: tween.NewScheduler(), Storage: store})
	assert.True(t, errors.Is(err, ErrBadStoredValue))
}

func TestSmoothTurnTakesOneStepPerTick(t *testing.T) {
	h := newHarness(t)
	h.c.SetDirection(common.Up, false, true)
	h.c.Steer(0, 1, false)

	var seen []common.Direction
	prev := h.c.TransitionDirection()
	for i := 0; i < 4; i++ {
		h.tick()
		cur := h.c.TransitionDirection()
		assert.Equal(t, 1, common.StepDistance(prev, cur), "tick %d", i)
		seen = append(seen, cur)
		prev = cur
	}
	assert.Equal(t, []common.Direction{common.UpRight, common.Right, common.DownRight, common.Down}, seen)
	assert.Equal(t, common.Down, h.c.CurrentDirection())

	h.tick()
	assert.Equal(t, common.Down, h.c.TransitionDirection())
}

func TestForceDirectionSkipsTransition(t *testing.T) {
	h := newHarness(t)
	h.c.SetDirection(common.Up, false, true)
	h.c.ForceDirection = true
	h.c.Steer(0, 1, false)
	h.tick()
	assert.Equal(t, common.Down, h.c.TransitionDirection())
}

func TestIdleInvariant(t *testing.T) {
	h := newHarness(t)
	h.c.SetDirection(common.Right, false, true)
	h.c.Steer(1, 0, false)
	h.tick()
	require.Equal(t, Walk, h.c.CurrentAction())
	require.Equal(t, 60.0, h.body.vx)

	h.c.Steer(0, 0, false)
	for i := 0; i < 3; i++ {
		h.tick()
		assert.Equal(t, Idle, h.c.CurrentAction())
		assert.Equal(t, 0.0, h.body.vx)
		assert.Equal(t, 0.0, h.body.vy)
		assert.Equal(t, common.None, h.c.RequiredDirection())
	}
	assert.Equal(t, common.Right, h.c.TransitionDirection())
}

func TestVelocityByAction(t *testing.T) {
	tests := []struct {
		name     string
		ix, iy   float64
		dash     bool
		worldMap bool
		extra    float64
		wantVX   float64
		wantVY   float64
		action   Action
	}{
		{name: "walk right", ix: 1, wantVX: 60, action: Walk},
		{name: "walk left truncates toward zero", ix: -1, wantVX: -60, action: Walk},
		{name: "walk diagonal", ix: 1, iy: 1, wantVX: 42, wantVY: 42, action: Walk},
		{name: "walk up-left diagonal", ix: -1, iy: -1, wantVX: -42, wantVY: -42, action: Walk},
		{name: "dash", ix: 1, dash: true, wantVX: 90, action: Dash},
		{name: "walk on world map", ix: 1, worldMap: true, wantVX: 50, action: Walk},
		{name: "dash on world map", iy: 1, dash: true, worldMap: true, wantVY: 75, action: Dash},
		{name: "extra speed", ix: 1, extra: 12, wantVX: 72, action: Walk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.field.worldMap = tt.worldMap
			h.c.IncreaseExtraSpeed(tt.extra)
			h.c.Steer(tt.ix, tt.iy, tt.dash)
			h.tick()
			assert.Equal(t, tt.action, h.c.CurrentAction())
			assert.Equal(t, tt.wantVX, h.body.vx)
			assert.Equal(t, tt.wantVY, h.body.vy)
		})
	}
}

func TestClimbUsesClimbSpeed(t *testing.T) {
	h := newHarness(t)
	h.c.Climbing = true
	h.c.ForceAction(Climb)
	h.c.Steer(0, -1, true)
	h.tick()
	assert.Equal(t, Climb, h.c.CurrentAction())
	assert.Equal(t, -45.0, h.body.vy)

	h.c.StopByColliding = true
	h.tick()
	assert.Equal(t, "idle", h.sprite.Current().Def().Key)

	h.c.Steer(0, 0, false)
	h.c.StopByColliding = false
	h.tick()
	assert.Equal(t, Climb, h.c.CurrentAction())
	assert.Equal(t, 0.0, h.body.vy)
}

func TestChoreographedActionsKeepTheirVelocity(t *testing.T) {
	h := newHarness(t)
	h.c.Pushing = true
	h.c.ForceAction(Push)
	h.body.SetVelocity(5, 5)
	h.c.Steer(1, 0, false)
	h.tick()
	assert.Equal(t, Push, h.c.CurrentAction())
	assert.Equal(t, 5.0, h.body.vx)
	assert.Equal(t, 5.0, h.body.vy)
}

func TestStopByCollidingShowsIdle(t *testing.T) {
	h := newHarness(t)
	h.c.StopByColliding = true
	h.c.Steer(1, 0, false)
	h.tick()
	assert.Equal(t, Walk, h.c.CurrentAction())
	assert.Equal(t, "idle", h.sprite.Current().Def().Action)

	h.c.UpdateMovement(true)
	assert.False(t, h.c.StopByColliding)
	assert.Equal(t, "walk", h.sprite.Current().Def().Action)
}

func TestIceSliding(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.c.SetIceSlideDirection(common.Left))

	h.c.IceSlidingActive = true
	h.c.Steer(1, 0, false)
	assert.True(t, h.c.SlidingOnIce)
	assert.Equal(t, common.Right, h.c.IceSlideDirection())
	h.tick()
	assert.Equal(t, 95.0, h.body.vx)
	assert.Equal(t, SlideIceWalkFrameRate, h.sprite.Current().FPS())
	assert.Empty(t, h.footprints.steps)

	h.c.Steer(0, 1, false)
	h.tick()
	assert.Equal(t, 95.0, h.body.vx)
	assert.Equal(t, 0.0, h.body.vy)

	assert.True(t, h.c.SetIceSlideDirection(common.Up))
	h.c.Steer(0, 0, false)
	h.tick()
	assert.Equal(t, -95.0, h.body.vy)
}

func TestFootsteps(t *testing.T) {
	h := newHarness(t)
	h.c.Steer(1, 0, false)
	h.tick()
	assert.Len(t, h.footprints.steps, 1)

	h.field.noFootprint = map[tileKey]int{{3, 3}: 0}
	h.tick()
	assert.Len(t, h.footprints.steps, 1)

	h.field.noFootprint = map[tileKey]int{{3, 3}: 1}
	h.tick()
	assert.Len(t, h.footprints.steps, 2)

	h.field.footsteps = false
	h.tick()
	assert.Len(t, h.footprints.steps, 2)
}

func TestStop(t *testing.T) {
	h := newHarness(t)
	h.c.Steer(1, 0, true)
	h.tick()
	require.Equal(t, Dash, h.c.CurrentAction())

	h.c.Stop(true)
	assert.Equal(t, Idle, h.c.CurrentAction())
	assert.Equal(t, common.None, h.c.RequiredDirection())
	assert.Equal(t, 0.0, h.body.vx)
	assert.Equal(t, "idle", h.sprite.Current().Def().Action)
}

func TestSetSpeed(t *testing.T) {
	h := newHarness(t)
	h.clock.Advance(frameMS)
	h.c.ForceAction(Walk)
	h.c.SetSpeed(0, 1, false)
	vx, vy := h.c.Velocity()
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 60.0, vy)
	assert.Equal(t, 0.0, h.body.vy)

	h.c.SetSpeed(0, 1, true)
	assert.Equal(t, 60.0, h.body.vy)
}

func TestIsClose(t *testing.T) {
	h := newHarness(t)
	h.c.SetDirection(common.Right, false, true)

	assert.True(t, h.c.IsClose(point{70, 56}, 20))
	assert.True(t, h.c.IsClose(point{66, 66}, 20))
	assert.False(t, h.c.IsClose(point{56, 70}, 20))
	assert.False(t, h.c.IsClose(point{100, 56}, 20))

	h.c.SetDirection(common.Down, false, false)
	assert.True(t, h.c.IsClose(point{70, 56}, 20), "uses the transition direction")
}

func TestInAction(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.c.InAction(false))
	h.c.Climbing = true
	assert.True(t, h.c.InAction(false))
	assert.False(t, h.c.InAction(true))
	h.c.Jumping = true
	assert.True(t, h.c.InAction(true))
}

func TestLookTargetAndRotation(t *testing.T) {
	h := newHarness(t)
	h.c.SetLookTarget(point{20, 56})
	h.c.UpdateOnEvent()
	assert.Equal(t, common.Left, h.c.CurrentDirection())

	h.c.SetLookTarget(nil)
	h.c.SetRotation(true, -1)
	h.c.UpdateOnEvent()
	assert.Equal(t, common.UpLeft, h.c.CurrentDirection())
	h.c.UpdateOnEvent()
	assert.Equal(t, common.Up, h.c.CurrentDirection())

	h.c.SetRotation(true, 30)
	h.clock.Advance(20)
	h.c.UpdateOnEvent()
	h.c.UpdateOnEvent()
	assert.Equal(t, common.Up, h.c.CurrentDirection())
	h.c.UpdateOnEvent()
	assert.Equal(t, common.UpRight, h.c.CurrentDirection())
}

func TestHalfCrop(t *testing.T) {
	h := newHarness(t)
	h.field.halfCrop = map[tileKey]bool{{3, 3}: true}

	h.c.UpdateHalfCrop(false)
	assert.False(t, h.cropper.crop, "only world maps crop")

	h.field.worldMap = true
	h.c.UpdateHalfCrop(false)
	assert.True(t, h.cropper.crop)
	assert.True(t, h.c.Cropped())
	assert.False(t, h.shadow.Visible())

	h.body.SetPosition(72, 56)
	h.c.UpdateTilePosition()
	h.c.UpdateHalfCrop(false)
	assert.False(t, h.cropper.crop)
	assert.True(t, h.shadow.Visible())
}

func TestShadowFollowsBody(t *testing.T) {
	h := newHarness(t)
	h.c.Steer(1, 0, false)
	h.tick()
	h.body.SetPosition(80, 60)
	h.c.UpdateShadow()
	assert.Equal(t, 80.0, h.shadow.X)
	assert.Equal(t, 60.0, h.shadow.Y)

	h.c.ToggleActive(false)
	h.body.SetPosition(90, 60)
	h.c.UpdateMovement(false)
	assert.Equal(t, 80.0, h.shadow.X)
	assert.False(t, h.shadow.Visible())
}
