package char

import "github.com/milk9111/overworld/common"

// Action names the animation set and motion policy a character is in.
// Custom actions (cast, grant, ...) are free-form strings.
type Action string

const (
	Idle  Action = "idle"
	Walk  Action = "walk"
	Dash  Action = "dash"
	Climb Action = "climb"
	Push  Action = "push"
	Jump  Action = "jump"
)

// drives reports whether the per-tick update owns the body velocity for a.
func (a Action) drives() bool {
	return a == Walk || a == Dash || a == Climb
}

// MovementState is the per-entity movement data. Only the owning
// Controllable writes the direction fields; flags are set by whatever
// choreography currently owns the character.
type MovementState struct {
	currentDirection    common.Direction
	requiredDirection   common.Direction
	transitionDirection common.Direction
	iceSlideDirection   common.Direction
	pushDirection       common.Direction

	xSpeed     float64
	ySpeed     float64
	extraSpeed float64

	WalkSpeed  float64
	DashSpeed  float64
	ClimbSpeed float64

	Dashing          bool
	Climbing         bool
	Pushing          bool
	Jumping          bool
	Sliding          bool
	Casting          bool
	Teleporting      bool
	IdleClimbing     bool
	IceSlidingActive bool
	SlidingOnIce     bool
	TryingToPush     bool
	StopByColliding  bool
	ForceDirection   bool

	currentAction    Action
	currentAnimation string

	tileX int
	tileY int
}

func newMovementState(walk, dash, climb float64) MovementState {
	return MovementState{
		currentDirection:    common.None,
		requiredDirection:   common.None,
		transitionDirection: common.None,
		iceSlideDirection:   common.None,
		pushDirection:       common.None,
		WalkSpeed:           walk,
		DashSpeed:           dash,
		ClimbSpeed:          climb,
		currentAction:       Idle,
	}
}

func (m *MovementState) CurrentDirection() common.Direction    { return m.currentDirection }
func (m *MovementState) RequiredDirection() common.Direction   { return m.requiredDirection }
func (m *MovementState) TransitionDirection() common.Direction { return m.transitionDirection }
func (m *MovementState) IceSlideDirection() common.Direction   { return m.iceSlideDirection }
func (m *MovementState) TryingToPushDirection() common.Direction {
	return m.pushDirection
}

func (m *MovementState) Speed() (x, y float64) { return m.xSpeed, m.ySpeed }
func (m *MovementState) ExtraSpeed() float64   { return m.extraSpeed }
func (m *MovementState) CurrentAction() Action { return m.currentAction }

// CurrentAnimation is the directional animation key last selected.
func (m *MovementState) CurrentAnimation() string { return m.currentAnimation }

func (m *MovementState) TilePosition() (x, y int) { return m.tileX, m.tileY }

// SetIceSlideDirection only takes effect while ice sliding is active.
func (m *MovementState) SetIceSlideDirection(dir common.Direction) bool {
	if !m.IceSlidingActive {
		return false
	}
	m.iceSlideDirection = dir
	return true
}

func (m *MovementState) SetTryingToPushDirection(dir common.Direction) {
	m.pushDirection = dir
}

func (m *MovementState) IncreaseExtraSpeed(delta float64) {
	m.extraSpeed += delta
}

// ForceAction sets the action without touching the animation.
func (m *MovementState) ForceAction(action Action) {
	m.currentAction = action
}

// InAction reports whether a choreography owns the character. Climbing
// counts unless allowClimbing is set.
func (m *MovementState) InAction(allowClimbing bool) bool {
	return m.Casting ||
		m.Pushing ||
		(m.Climbing && !allowClimbing) ||
		m.Jumping ||
		m.Teleporting ||
		m.Sliding
}
