package tileevent

import (
	"errors"
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/storage"
)

type Kind string

const (
	Climb     Kind = "climb"
	Speed     Kind = "speed"
	Teleport  Kind = "teleport"
	Slider    Kind = "slider"
	Jump      Kind = "jump"
	Step      Kind = "step"
	Collision Kind = "collision"
	Trigger   Kind = "event_trigger"
	IceSlide  Kind = "ice_slide"
)

var kinds = []Kind{Climb, Speed, Teleport, Slider, Jump, Step, Collision, Trigger, IceSlide}

var (
	ErrUnknownKind     = errors.New("tileevent: unknown event kind")
	ErrBadDirection    = errors.New("tileevent: bad direction")
	ErrMissingParam    = errors.New("tileevent: missing parameter")
	ErrNoDirections    = errors.New("tileevent: event has no activation directions")
	ErrUnknownScript   = errors.New("tileevent: unknown trigger script")
	ErrScriptExecution = errors.New("tileevent: trigger script failed")
)

// ID identifies an event for the lifetime of its map. IDs grow with
// registration order.
type ID int

// Spec is an event as authored in a level file.
type Spec struct {
	Kind                 Kind     `yaml:"type"`
	X                    int      `yaml:"x"`
	Y                    int      `yaml:"y"`
	ActivationDirections []string `yaml:"activation_directions,omitempty"`
	ActivationLayers     []int    `yaml:"activation_collision_layers,omitempty"`
	Active               *bool    `yaml:"active,omitempty"`
	ActiveStorageKey     string   `yaml:"active_storage_key,omitempty"`

	Speed float64 `yaml:"speed,omitempty"`

	Target               string `yaml:"target,omitempty"`
	XTarget              int    `yaml:"x_target,omitempty"`
	YTarget              int    `yaml:"y_target,omitempty"`
	AdvanceEffect        bool   `yaml:"advance_effect,omitempty"`
	DestLayer            int    `yaml:"dest_collision_layer,omitempty"`
	DestinationDirection string `yaml:"destination_direction,omitempty"`

	ChangeToLayer *int  `yaml:"change_to_collision_layer,omitempty"`
	IsSet         *bool `yaml:"is_set,omitempty"`
	ShowDust      bool  `yaml:"show_dust,omitempty"`

	StepDirection string `yaml:"step_direction,omitempty"`

	Script          string `yaml:"script,omitempty"`
	RemoveFromField bool   `yaml:"remove_from_field,omitempty"`

	StartSlidingDirection string `yaml:"start_sliding_direction,omitempty"`
}

// Event is a tile event placed on the map. Position and per-direction
// active flags change at runtime; everything else is fixed at Build.
type Event struct {
	id   ID
	kind Kind
	x, y int

	directions []common.Direction
	active     []bool
	layers     []int
	dynamic    bool

	// LayerShift is added to the owner's layer when the event belongs to a
	// pushable object.
	LayerShift int

	speed float64

	target        string
	xTarget       int
	yTarget       int
	advanceEffect bool
	destLayer     int
	destDirection common.Direction

	changeToLayer    *int
	isSet            bool
	showDust         bool
	stepDirection    common.Direction
	script           string
	removeFromField  bool
	startSlidingDir  common.Direction
	activationFacing common.Direction
}

// Build turns an authored spec into an event. dynamic marks events owned by
// movable objects. A storage-backed active flag overrides the authored one.
func Build(spec Spec, store storage.Store, dynamic bool) (*Event, error) {
	errb := oops.In("tileevent").With("kind", spec.Kind).With("x", spec.X).With("y", spec.Y)
	if !slices.Contains(kinds, spec.Kind) {
		return nil, errb.Wrap(ErrUnknownKind)
	}

	dirs, err := parseDirections(spec.ActivationDirections)
	if err != nil {
		return nil, errb.Wrap(err)
	}
	if len(dirs) == 0 {
		return nil, errb.Wrap(ErrNoDirections)
	}

	active := true
	if spec.Active != nil {
		active = *spec.Active
	}
	if spec.ActiveStorageKey != "" && store != nil {
		if v, ok := store.Get(spec.ActiveStorageKey); ok {
			if b, ok := v.(bool); ok {
				active = b
			}
		}
	}

	layers := spec.ActivationLayers
	if len(layers) == 0 {
		layers = []int{0}
	}

	ev := &Event{
		kind:             spec.Kind,
		x:                spec.X,
		y:                spec.Y,
		directions:       dirs,
		active:           make([]bool, len(dirs)),
		layers:           slices.Clone(layers),
		dynamic:          dynamic,
		speed:            spec.Speed,
		target:           spec.Target,
		xTarget:          spec.XTarget,
		yTarget:          spec.YTarget,
		advanceEffect:    spec.AdvanceEffect,
		destLayer:        spec.DestLayer,
		destDirection:    common.None,
		changeToLayer:    spec.ChangeToLayer,
		isSet:            spec.IsSet == nil || *spec.IsSet,
		showDust:         spec.ShowDust,
		stepDirection:    common.None,
		script:           spec.Script,
		removeFromField:  spec.RemoveFromField,
		startSlidingDir:  common.None,
		activationFacing: common.None,
	}
	for i := range ev.active {
		ev.active[i] = active
	}

	if ev.destDirection, err = optionalDirection(spec.DestinationDirection); err != nil {
		return nil, errb.With("param", "destination_direction").Wrap(err)
	}
	if ev.startSlidingDir, err = optionalDirection(spec.StartSlidingDirection); err != nil {
		return nil, errb.With("param", "start_sliding_direction").Wrap(err)
	}

	switch spec.Kind {
	case Step:
		switch spec.StepDirection {
		case "up":
			ev.stepDirection = common.Up
		case "down":
			ev.stepDirection = common.Down
		default:
			return nil, errb.With("param", "step_direction").With("value", spec.StepDirection).Wrap(ErrBadDirection)
		}
	case Trigger:
		if spec.Script == "" {
			return nil, errb.With("param", "script").Wrap(ErrMissingParam)
		}
	case Speed:
		if spec.Speed == 0 {
			return nil, errb.With("param", "speed").Wrap(ErrMissingParam)
		}
	}
	return ev, nil
}

func parseDirections(names []string) ([]common.Direction, error) {
	if len(names) == 1 && strings.EqualFold(names[0], "all") {
		return slices.Clone(common.AllDirections), nil
	}
	out := make([]common.Direction, 0, len(names))
	for _, n := range names {
		d, err := common.ParseDirection(strings.TrimSpace(n))
		if err != nil {
			return nil, oops.With("direction", n).Wrap(ErrBadDirection)
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func optionalDirection(name string) (common.Direction, error) {
	if name == "" {
		return common.None, nil
	}
	d, err := common.ParseDirection(name)
	if err != nil {
		return common.None, ErrBadDirection
	}
	return d, nil
}

func (e *Event) ID() ID               { return e.id }
func (e *Event) Kind() Kind           { return e.kind }
func (e *Event) Position() (x, y int) { return e.x, e.y }
func (e *Event) Dynamic() bool        { return e.dynamic }
func (e *Event) IsSet() bool          { return e.isSet }
func (e *Event) SetIsSet(set bool)    { e.isSet = set }
func (e *Event) Script() string       { return e.script }
func (e *Event) SpeedValue() float64  { return e.speed }
func (e *Event) Directions() []common.Direction {
	return slices.Clone(e.directions)
}

// HasDirection reports whether dir is one of the activation directions.
func (e *Event) HasDirection(dir common.Direction) bool {
	return slices.Contains(e.directions, dir)
}

// InLayer reports whether the event is visible on collision layer.
func (e *Event) InLayer(layer int) bool {
	return slices.Contains(e.layers, layer)
}

// IsActive reports whether the event is active for a character facing dir.
// A diagonal facing also matches either cardinal component.
func (e *Event) IsActive(dir common.Direction) bool {
	for _, d := range dir.Split() {
		if i := slices.Index(e.directions, d); i >= 0 && e.active[i] {
			return true
		}
	}
	return false
}

// ActivateAt enables the event for dir. None enables every direction.
func (e *Event) ActivateAt(dir common.Direction) { e.setActive(dir, true) }

// DeactivateAt disables the event for dir. None disables every direction.
func (e *Event) DeactivateAt(dir common.Direction) { e.setActive(dir, false) }

func (e *Event) setActive(dir common.Direction, on bool) {
	if dir == common.None {
		for i := range e.active {
			e.active[i] = on
		}
		return
	}
	if i := slices.Index(e.directions, dir); i >= 0 {
		e.active[i] = on
	}
}
