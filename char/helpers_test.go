package char

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/tween"
)

// frameMS is one 60 Hz tick, the unit the speed formula is written in.
const frameMS = DeltaTimeFactor

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

type tileKey struct{ x, y int }

type fakeField struct {
	worldMap    bool
	footsteps   bool
	layer       int
	halfCrop    map[tileKey]bool
	noFootprint map[tileKey]int
}

func (f *fakeField) TileSize() (float64, float64) { return 16, 16 }
func (f *fakeField) CollisionLayer() int          { return f.layer }
func (f *fakeField) IsWorldMap() bool             { return f.worldMap }
func (f *fakeField) ShowFootsteps() bool          { return f.footsteps }
func (f *fakeField) HalfCrop(x, y int) bool       { return f.halfCrop[tileKey{x, y}] }
func (f *fakeField) FootprintDisabled(x, y, layer int) bool {
	l, ok := f.noFootprint[tileKey{x, y}]
	return ok && l == layer
}

type fakeFootprints struct {
	steps []common.Direction
}

func (f *fakeFootprints) CanMakeFootprint() bool { return true }
func (f *fakeFootprints) CreateStep(dir common.Direction, _ Action) {
	f.steps = append(f.steps, dir)
}

type fakeCropper struct{ crop bool }

func (f *fakeCropper) SetCrop(crop bool) { f.crop = crop }

type fakeSFX struct{ played []string }

func (f *fakeSFX) Play(key string) { f.played = append(f.played, key) }

type point struct{ x, y float64 }

func (p point) Position() (float64, float64) { return p.x, p.y }

func directionKeys() []string {
	keys := make([]string, 0, len(common.AllDirections))
	for _, d := range common.AllDirections {
		keys = append(keys, d.String())
	}
	return keys
}

func testLibrary(withJump bool) *anim.Library {
	keys := directionKeys()
	lib := &anim.Library{
		Name: "hero",
		Actions: map[string]anim.ActionSpec{
			"idle":  {Frames: 1, FPS: 1, Loop: true, Keys: keys},
			"walk":  {Frames: 4, FPS: 10, Loop: true, Keys: keys},
			"dash":  {Frames: 4, FPS: 15, Loop: true, Keys: keys},
			"climb": {Frames: 2, FPS: 8, Loop: true, Keys: append([]string{"idle"}, keys...)},
			"push":  {Frames: 2, FPS: 8, Loop: true, Keys: keys},
		},
	}
	if withJump {
		lib.Actions["jump"] = anim.ActionSpec{Frames: 2, FPS: 20, Keys: keys}
	}
	return lib
}

type harness struct {
	c          *Controllable
	body       *fakeBody
	world      *fakeWorld
	sprite     *anim.Sprite
	shadow     *anim.Shadow
	field      *fakeField
	clock      *tween.Scheduler
	footprints *fakeFootprints
	cropper    *fakeCropper
	sfx        *fakeSFX
}

type harnessOption func(*Config, *harness)

func withJumpAnimation(cfg *Config, h *harness) {
	h.sprite = anim.NewSprite(testLibrary(true))
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		body:       &fakeBody{},
		world:      &fakeWorld{},
		sprite:     anim.NewSprite(testLibrary(false)),
		shadow:     anim.NewShadow(0, 0),
		field:      &fakeField{footsteps: true},
		clock:      tween.NewScheduler(),
		footprints: &fakeFootprints{},
		cropper:    &fakeCropper{},
		sfx:        &fakeSFX{},
	}
	cfg := Config{
		Key:             "hero",
		WalkSpeed:       60,
		DashSpeed:       90,
		ClimbSpeed:      45,
		EnableFootsteps: true,
		TileX:           3,
		TileY:           3,
	}
	for _, opt := range opts {
		opt(&cfg, h)
	}
	c, err := New(cfg, Deps{
		Body:       h.body,
		World:      h.world,
		Sprite:     h.sprite,
		Shadow:     h.shadow,
		Field:      h.field,
		Clock:      h.clock,
		Footprints: h.footprints,
		SFX:        h.sfx,
		Cropper:    h.cropper,
	})
	require.NoError(t, err)
	h.c = c
	return h
}

// tick advances time by one frame and runs the per-tick update.
func (h *harness) tick() {
	h.clock.Advance(frameMS)
	h.sprite.Advance(frameMS)
	h.c.UpdateMovement(false)
}

// advance moves timers and animations without a movement update.
func (h *harness) advance(ms float64) {
	h.clock.Advance(ms)
	h.sprite.Advance(ms)
}
