package char

import (
	"errors"
	"log/slog"
	"math"

	"github.com/samber/oops"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tween"
)

const (
	SlideIceSpeed         = 95.0
	SlideIceWalkFrameRate = 20.0
	InteractionRangeAngle = common.Degree75

	// DeltaTimeFactor turns elapsed milliseconds into 60 Hz frame units.
	DeltaTimeFactor = 50.0 / 3.0

	WorldMapWalkReduce = -10.0
	WorldMapDashReduce = -15.0

	InvSqrt2 = 0.7071067811865476
)

var (
	ErrInvalidSpeed   = errors.New("char: walk speed must be positive")
	ErrMissingDep     = errors.New("char: missing collaborator")
	ErrUnknownAction  = errors.New("char: unknown action")
	ErrBadStoredValue = errors.New("char: unreadable stored value")
)

// StorageKeys name the save-data entries a character restores from.
type StorageKeys struct {
	Position  string `yaml:"position,omitempty"`
	Action    string `yaml:"action,omitempty"`
	Direction string `yaml:"direction,omitempty"`
	Active    string `yaml:"active,omitempty"`
}

type Config struct {
	Key             string
	WalkSpeed       float64
	DashSpeed       float64
	ClimbSpeed      float64
	EnableFootsteps bool
	TileX, TileY    int
	Action          Action
	Direction       *common.Direction
	Layer           int
	Inactive        bool
	StorageKeys     StorageKeys
}

// Deps are the collaborators a character is wired to. Body, Sprite, Field
// and Clock are required.
type Deps struct {
	Body       Body
	World      PhysicsWorld
	Sprite     Sprite
	Shadow     Shadow
	Field      Field
	Clock      *tween.Scheduler
	Footprints Footprints
	SFX        SFX
	Storage    storage.Store
	Cropper    Cropper
	Log        *slog.Logger
}

// Controllable is a player or NPC character: the movement state machine
// plus its choreographies.
type Controllable struct {
	MovementState

	key   string
	layer int

	body       Body
	world      PhysicsWorld
	sprite     Sprite
	shadow     Shadow
	field      Field
	clock      *tween.Scheduler
	footprints Footprints
	sfx        SFX
	cropper    Cropper
	log        *slog.Logger

	active          bool
	enableFootsteps bool
	shadowFollowing bool
	cropTexture     bool

	tempVX float64
	tempVY float64

	lookTarget      Locatable
	rotating        bool
	rotatingPeriod  float64
	rotatingElapsed float64

	face  *faceTask
	jump  *tween.Future
	shake *tween.Future
}

// New builds a character, restoring position, action, direction and active
// flag from storage when keys are configured. Missing animations are
// reported here rather than at play time.
func New(cfg Config, deps Deps) (*Controllable, error) {
	errb := oops.In("char").With("key", cfg.Key)
	if cfg.WalkSpeed <= 0 {
		return nil, errb.With("walk_speed", cfg.WalkSpeed).Wrap(ErrInvalidSpeed)
	}
	switch {
	case deps.Body == nil:
		return nil, errb.With("dep", "body").Wrap(ErrMissingDep)
	case deps.Sprite == nil:
		return nil, errb.With("dep", "sprite").Wrap(ErrMissingDep)
	case deps.Field == nil:
		return nil, errb.With("dep", "field").Wrap(ErrMissingDep)
	case deps.Clock == nil:
		return nil, errb.With("dep", "clock").Wrap(ErrMissingDep)
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	c := &Controllable{
		MovementState:   newMovementState(cfg.WalkSpeed, cfg.DashSpeed, cfg.ClimbSpeed),
		key:             cfg.Key,
		layer:           cfg.Layer,
		body:            deps.Body,
		world:           deps.World,
		sprite:          deps.Sprite,
		shadow:          deps.Shadow,
		field:           deps.Field,
		clock:           deps.Clock,
		footprints:      deps.Footprints,
		sfx:             deps.SFX,
		cropper:         deps.Cropper,
		log:             log.With("char", cfg.Key),
		active:          !cfg.Inactive,
		enableFootsteps: cfg.EnableFootsteps,
		shadowFollowing: true,
	}

	tileX, tileY := cfg.TileX, cfg.TileY
	action := cfg.Action
	if action == "" {
		action = Idle
	}
	dir := common.Down
	if cfg.Direction != nil && cfg.Direction.Valid() {
		dir = *cfg.Direction
	}

	if err := c.restore(deps.Storage, cfg.StorageKeys, &tileX, &tileY, &action, &dir); err != nil {
		return nil, err
	}

	required := []string{string(Idle), string(Walk)}
	if cfg.DashSpeed > 0 {
		required = append(required, string(Dash))
	}
	keys := make([]string, 0, len(common.AllDirections))
	for _, d := range common.AllDirections {
		keys = append(keys, d.String())
	}
	if err := c.sprite.Validate(required, keys); err != nil {
		return nil, errb.Wrap(err)
	}
	if err := c.validateChoreographyAnimations(keys); err != nil {
		return nil, errb.Wrap(err)
	}
	if !c.sprite.HasAction(string(action)) {
		return nil, errb.With("action", action).Wrap(ErrUnknownAction)
	}

	c.tileX, c.tileY = tileX, tileY
	tw, th := c.field.TileSize()
	x := (float64(tileX) + 0.5) * tw
	y := (float64(tileY) + 0.5) * th
	c.body.SetPosition(x, y)
	c.body.SetLayer(c.layer)
	if c.shadow != nil {
		c.shadow.SetPosition(x, y)
	}

	c.currentAction = action
	c.SetDirection(dir, false, true)
	c.ToggleActive(c.active)
	return c, nil
}

// validateChoreographyAnimations checks the optional actions the library
// declares. Climb also needs its idle frame, and jump must finish on its own
// because a displacement jump holds the physics world paused until it does.
func (c *Controllable) validateChoreographyAnimations(keys []string) error {
	for _, action := range []Action{Climb, Push, Jump} {
		if !c.sprite.HasAction(string(action)) {
			continue
		}
		want := keys
		if action == Climb {
			want = append([]string{string(Idle)}, keys...)
		}
		if err := c.sprite.Validate([]string{string(action)}, want); err != nil {
			return err
		}
	}
	if c.sprite.HasAction(string(Jump)) {
		return c.sprite.ValidateOneShot(string(Jump), keys)
	}
	return nil
}

func (c *Controllable) restore(store storage.Store, keys StorageKeys, tileX, tileY *int, action *Action, dir *common.Direction) error {
	if store == nil {
		return nil
	}
	errb := oops.In("char").With("key", c.key)
	if keys.Active != "" {
		if v, ok := store.Get(keys.Active); ok {
			b, isBool := v.(bool)
			if !isBool {
				return errb.With("storage_key", keys.Active).Wrap(ErrBadStoredValue)
			}
			c.active = b
		}
	}
	if keys.Position != "" {
		if v, ok := store.Get(keys.Position); ok {
			x, y, ok := storedTile(v)
			if !ok {
				return errb.With("storage_key", keys.Position).Wrap(ErrBadStoredValue)
			}
			*tileX, *tileY = x, y
		}
	}
	if keys.Action != "" {
		if v, ok := store.Get(keys.Action); ok {
			s, isString := v.(string)
			if !isString {
				return errb.With("storage_key", keys.Action).Wrap(ErrBadStoredValue)
			}
			*action = Action(s)
		}
	}
	if keys.Direction != "" {
		if v, ok := store.Get(keys.Direction); ok {
			s, _ := v.(string)
			d, err := common.ParseDirection(s)
			if err != nil {
				return errb.With("storage_key", keys.Direction).Wrap(err)
			}
			*dir = d
		}
	}
	return nil
}

func storedTile(v any) (x, y int, ok bool) {
	m, isMap := v.(map[string]any)
	if !isMap {
		return 0, 0, false
	}
	toInt := func(n any) (int, bool) {
		switch t := n.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
		return 0, false
	}
	x, okX := toInt(m["x"])
	y, okY := toInt(m["y"])
	return x, y, okX && okY
}

func (c *Controllable) Key() string  { return c.key }
func (c *Controllable) Active() bool { return c.active }
func (c *Controllable) Layer() int   { return c.layer }

func (c *Controllable) Position() (x, y float64) { return c.body.Position() }

func (c *Controllable) Body() Body { return c.body }

func (c *Controllable) ShadowFollowing() bool { return c.shadowFollowing }

// ToggleActive shows or hides the character; inactive characters skip every
// per-tick update.
func (c *Controllable) ToggleActive(active bool) {
	c.active = active
	c.sprite.SetVisible(active)
	if c.shadow != nil {
		c.shadow.SetVisible(active)
	}
}

// SetCollisionLayer moves the character's body onto layer.
func (c *Controllable) SetCollisionLayer(layer int) {
	c.layer = layer
	c.body.SetLayer(layer)
}

// Steer turns directional input into speed components. Diagonal input is
// normalized; while sliding on ice the slide direction wins.
func (c *Controllable) Steer(ix, iy float64, dash bool) {
	c.Dashing = dash
	if c.IceSlidingActive {
		if !c.SlidingOnIce && (ix != 0 || iy != 0) {
			c.SlidingOnIce = true
			c.iceSlideDirection = common.DirectionFromVector(ix, iy)
		}
		if c.SlidingOnIce && c.iceSlideDirection.Valid() {
			dx, dy := c.iceSlideDirection.Vector()
			ix, iy = float64(dx), float64(dy)
		}
	}
	if ix != 0 && iy != 0 {
		ix *= InvSqrt2
		iy *= InvSqrt2
	}
	c.xSpeed, c.ySpeed = ix, iy
}

// UpdateMovement is the per-tick transition: tile position, direction,
// action, velocity, animation and shadow, in that order.
func (c *Controllable) UpdateMovement(ignoreCollideActionChange bool) {
	if !c.active {
		return
	}
	if ignoreCollideActionChange {
		c.StopByColliding = false
	}
	c.UpdateTilePosition()
	c.chooseDirectionBySpeed()
	c.SetDirection(c.transitionDirection, false, false)
	c.chooseAction()
	c.calculateSpeed()
	c.PlayCurrentAction()
	c.applySpeed()
	c.UpdateShadow()
}

func (c *Controllable) UpdateTilePosition() {
	x, y := c.body.Position()
	tw, th := c.field.TileSize()
	c.tileX = int(math.Trunc(x / tw))
	c.tileY = int(math.Trunc(y / th))
}

func (c *Controllable) chooseDirectionBySpeed() {
	if c.xSpeed == 0 && c.ySpeed == 0 {
		c.requiredDirection = common.None
		return
	}
	c.requiredDirection = common.DirectionFromVector(c.xSpeed, c.ySpeed)
	if c.ForceDirection {
		c.transitionDirection = c.requiredDirection
		return
	}
	c.transitionDirection = common.TransitionStep(c.transitionDirection, c.requiredDirection)
}

func (c *Controllable) chooseAction() {
	switch {
	case !c.requiredDirection.Valid() && c.currentAction != Idle && !c.Climbing:
		c.currentAction = Idle
	case c.requiredDirection.Valid() && !c.Climbing && !c.Pushing:
		c.checkFootsteps()
		if c.Dashing && c.currentAction != Dash {
			c.currentAction = Dash
		} else if !c.Dashing && c.currentAction != Walk {
			c.currentAction = Walk
		}
	}
}

func (c *Controllable) checkFootsteps() {
	if c.footprints == nil || !c.enableFootsteps || c.IceSlidingActive || !c.field.ShowFootsteps() {
		return
	}
	if c.field.FootprintDisabled(c.tileX, c.tileY, c.field.CollisionLayer()) {
		return
	}
	if c.footprints.CanMakeFootprint() {
		c.footprints.CreateStep(c.currentDirection, c.currentAction)
	}
}

func (c *Controllable) calculateSpeed() {
	deltaTime := c.clock.Elapsed() / DeltaTimeFactor
	var factor float64
	switch {
	case c.IceSlidingActive && c.SlidingOnIce:
		factor = SlideIceSpeed + c.extraSpeed
	case c.currentAction == Dash:
		factor = c.DashSpeed + c.extraSpeed
		if c.field.IsWorldMap() {
			factor += WorldMapDashReduce
		}
	case c.currentAction == Walk:
		factor = c.WalkSpeed + c.extraSpeed
		if c.field.IsWorldMap() {
			factor += WorldMapWalkReduce
		}
	case c.currentAction == Climb:
		factor = c.ClimbSpeed + c.extraSpeed
	case c.currentAction == Idle:
		c.tempVX, c.tempVY = 0, 0
		c.body.SetVelocity(0, 0)
		return
	default:
		return
	}
	c.tempVX = math.Trunc(deltaTime * c.xSpeed * factor)
	c.tempVY = math.Trunc(deltaTime * c.ySpeed * factor)
}

func (c *Controllable) applySpeed() {
	if c.currentAction.drives() || (c.SlidingOnIce && c.IceSlidingActive) {
		c.body.SetVelocity(c.tempVX, c.tempVY)
	}
}

// SetSpeed sets the speed components and recomputes the velocity, writing
// it to the body when apply is set.
func (c *Controllable) SetSpeed(x, y float64, apply bool) {
	c.xSpeed, c.ySpeed = x, y
	c.calculateSpeed()
	if apply {
		c.applySpeed()
	}
}

// Velocity is the velocity computed by the last speed calculation.
func (c *Controllable) Velocity() (x, y float64) { return c.tempVX, c.tempVY }

// UpdateShadow keeps the shadow under the body while shadow following is on.
func (c *Controllable) UpdateShadow() {
	if c.shadow == nil || !c.shadowFollowing || !c.active {
		return
	}
	c.shadow.SetPosition(c.body.Position())
}

// SetDirection sets the current direction, and the transition direction
// when transitionAlso is set. forceRedisplay replays the current action.
func (c *Controllable) SetDirection(dir common.Direction, forceRedisplay, transitionAlso bool) {
	c.currentDirection = dir
	if transitionAlso {
		c.transitionDirection = dir
	}
	if dir.Valid() {
		c.currentAnimation = dir.String()
	}
	if forceRedisplay {
		c.PlayCurrentAction()
	}
}

// Play starts action seen from key; an empty key uses the current
// direction's animation.
func (c *Controllable) Play(action Action, key string, start bool, frameRate float64) *anim.Playback {
	if action == "" {
		action = c.currentAction
	}
	if key == "" {
		if c.currentDirection.Valid() {
			key = c.currentDirection.String()
		} else {
			key = c.currentAnimation
		}
	}
	return c.sprite.Play(string(action), key, start, frameRate)
}

// PlayCurrentAction shows the animation for the current action and
// transition direction. Colliding while walking shows idle; colliding while
// climbing shows the idle climb frame.
func (c *Controllable) PlayCurrentAction() {
	action := c.currentAction
	idleClimbing := c.IdleClimbing
	if c.StopByColliding && !c.Pushing && !c.Climbing {
		action = Idle
	} else if c.StopByColliding && !c.Pushing && c.Climbing {
		idleClimbing = true
	}
	key := c.transitionDirection.String()
	if !c.transitionDirection.Valid() {
		key = c.currentAnimation
	}
	if idleClimbing {
		key = string(Idle)
	}
	var frameRate float64
	if action == Walk {
		if c.IceSlidingActive {
			frameRate = SlideIceWalkFrameRate
		} else {
			frameRate = c.sprite.FrameRate(string(Walk), key)
		}
	}
	c.Play(action, key, true, frameRate)
}

// Stop zeroes speed and body velocity; changeAction also returns the
// character to idle.
func (c *Controllable) Stop(changeAction bool) {
	c.xSpeed, c.ySpeed = 0, 0
	c.chooseDirectionBySpeed()
	c.tempVX, c.tempVY = 0, 0
	c.body.SetVelocity(0, 0)
	if changeAction {
		c.currentAction = Idle
		c.PlayCurrentAction()
	}
}

// IsClose reports whether other is within distance and inside the
// interaction cone around the transition direction.
func (c *Controllable) IsClose(other Locatable, distance float64) bool {
	ox, oy := c.body.Position()
	tx, ty := other.Position()
	return common.IsFacing(c.transitionDirection, ox, oy, tx, ty, InteractionRangeAngle, distance)
}

// SetLookTarget makes the character face target on every UpdateOnEvent.
// A nil target stops looking.
func (c *Controllable) SetLookTarget(target Locatable) {
	c.lookTarget = target
}

// SetRotation spins the character one direction every period milliseconds,
// or every update when period is negative.
func (c *Controllable) SetRotation(rotate bool, period float64) {
	c.rotating = rotate
	if rotate {
		c.rotatingPeriod = period
		c.rotatingElapsed = 0
	}
}

// UpdateOnEvent runs instead of UpdateMovement while an event holds the
// character.
func (c *Controllable) UpdateOnEvent() {
	if !c.active {
		return
	}
	c.lookToTarget()
	c.rotate()
}

func (c *Controllable) lookToTarget() {
	if c.lookTarget == nil {
		return
	}
	x, y := c.body.Position()
	tx, ty := c.lookTarget.Position()
	dir := common.DirectionFromVector(tx-x, ty-y)
	if dir.Valid() {
		c.SetDirection(dir, true, true)
	}
}

func (c *Controllable) rotate() {
	if !c.rotating {
		return
	}
	if c.rotatingPeriod < 0 || c.rotatingElapsed > c.rotatingPeriod {
		next := common.Right
		if c.currentDirection.Valid() {
			next = (c.currentDirection + 1) & 7
		}
		c.SetDirection(next, true, true)
		c.rotatingElapsed = 0
		return
	}
	c.rotatingElapsed += c.clock.Elapsed()
}

// UpdateHalfCrop crops the sprite on world-map tiles flagged half_crop and
// hides the shadow while cropped. force reapplies the current state.
func (c *Controllable) UpdateHalfCrop(force bool) {
	if c.cropper == nil || !c.active || !c.field.IsWorldMap() {
		return
	}
	crop := c.field.HalfCrop(c.tileX, c.tileY)
	switch {
	case crop && (!c.cropTexture || force):
		c.cropper.SetCrop(true)
		if c.shadow != nil {
			c.shadow.SetVisible(false)
		}
		c.cropTexture = true
	case !crop && (c.cropTexture || force):
		c.cropper.SetCrop(false)
		if c.shadow != nil {
			c.shadow.SetVisible(true)
		}
		c.cropTexture = false
	}
}

// Cropped reports whether the half-crop mask is applied.
func (c *Controllable) Cropped() bool { return c.cropTexture }
