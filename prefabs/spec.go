package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/tileevent"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, oops.In("prefabs").With("file", filename).Wrapf(err, "load")
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, oops.In("prefabs").With("file", filename).Wrapf(err, "unmarshal")
	}

	return spec, nil
}

// CharacterSpec tunes a hero or NPC.
type CharacterSpec struct {
	Name       string     `yaml:"name"`
	WalkSpeed  float64    `yaml:"walk_speed"`
	DashSpeed  float64    `yaml:"dash_speed"`
	ClimbSpeed float64    `yaml:"climb_speed"`
	BodyRadius float64    `yaml:"body_radius"`
	Footsteps  bool       `yaml:"footsteps"`
	Shadow     bool       `yaml:"shadow"`
	Animations string     `yaml:"animations"`
	Color      *YAMLColor `yaml:"color"`
}

func LoadCharacterSpec(filename string) (*CharacterSpec, error) {
	spec, err := LoadSpec[CharacterSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.BodyRadius <= 0 {
		spec.BodyRadius = DefaultBodyRadius
	}
	return &spec, nil
}

// DefaultBodyRadius is the character body radius when a prefab names none.
const DefaultBodyRadius = 7.0

// ObjectSpec describes an interactable object. Its events are authored
// relative to the object's tile.
type ObjectSpec struct {
	Name     string            `yaml:"name"`
	Pushable bool              `yaml:"pushable"`
	Width    float64           `yaml:"width"`
	Height   float64           `yaml:"height"`
	Color    *YAMLColor        `yaml:"color"`
	Events   []ObjectEventSpec `yaml:"events"`
}

// ObjectEventSpec is an event owned by an object. LayerShift is added to
// the object's layer to get the event's activation layer.
type ObjectEventSpec struct {
	tileevent.Spec `yaml:",inline"`
	LayerShift     int `yaml:"collision_layer_shift_from_source"`
}

// Place returns the event spec for an object standing on (x, y) in layer.
func (s ObjectEventSpec) Place(x, y, layer int) tileevent.Spec {
	spec := s.Spec
	spec.X += x
	spec.Y += y
	spec.ActivationLayers = []int{layer + s.LayerShift}
	return spec
}

func LoadObjectSpec(filename string) (*ObjectSpec, error) {
	spec, err := LoadSpec[ObjectSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadLibrary reads an animation library prefab.
func LoadLibrary(filename string) (*anim.Library, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, oops.In("prefabs").With("file", filename).Wrapf(err, "load")
	}
	return anim.ParseLibrary(data)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// ColorOr returns c's color, or fallback when c is unset.
func (c *YAMLColor) ColorOr(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
