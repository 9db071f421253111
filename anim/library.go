package anim

import (
	"errors"
	"sort"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAction    = errors.New("anim: unknown action")
	ErrUnknownAnimation = errors.New("anim: unknown animation key")
	ErrNeverCompletes   = errors.New("anim: one-shot animation never completes")
)

// Def describes one playable animation: an action seen from one key
// (usually a direction name).
type Def struct {
	Action     string
	Key        string
	FrameCount int
	FPS        float64
	Loop       bool
}

// ActionSpec is the authoring form of an action's animations.
type ActionSpec struct {
	Frames int                `yaml:"frames"`
	FPS    float64            `yaml:"fps"`
	Loop   bool               `yaml:"loop"`
	Keys   []string           `yaml:"keys"`
	Rates  map[string]float64 `yaml:"rates,omitempty"`
}

// Library holds every animation of one sprite sheet.
type Library struct {
	Name    string                `yaml:"name"`
	Actions map[string]ActionSpec `yaml:"actions"`
}

// ParseLibrary decodes a YAML animation library.
func ParseLibrary(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, oops.In("anim").Wrapf(err, "unmarshal library")
	}
	if lib.Actions == nil {
		lib.Actions = map[string]ActionSpec{}
	}
	return &lib, nil
}

// AnimationKey joins an action and key the way playback handles name them.
func AnimationKey(action, key string) string {
	return action + "_" + key
}

func (l *Library) HasAction(action string) bool {
	if l == nil {
		return false
	}
	_, ok := l.Actions[action]
	return ok
}

// Def looks up the animation for action seen from key.
func (l *Library) Def(action, key string) (Def, error) {
	if l == nil {
		return Def{}, oops.In("anim").With("action", action).Wrap(ErrUnknownAction)
	}
	spec, ok := l.Actions[action]
	if !ok {
		return Def{}, oops.In("anim").With("library", l.Name).With("action", action).Wrap(ErrUnknownAction)
	}
	found := false
	for _, k := range spec.Keys {
		if k == key {
			found = true
			break
		}
	}
	if !found {
		return Def{}, oops.In("anim").
			With("library", l.Name).
			With("action", action).
			With("key", key).
			Wrap(ErrUnknownAnimation)
	}
	fps := spec.FPS
	if r, ok := spec.Rates[key]; ok && r > 0 {
		fps = r
	}
	frames := spec.Frames
	if frames < 1 {
		frames = 1
	}
	return Def{Action: action, Key: key, FrameCount: frames, FPS: fps, Loop: spec.Loop}, nil
}

// FrameRate returns the authored frame rate, 0 when unknown.
func (l *Library) FrameRate(action, key string) float64 {
	def, err := l.Def(action, key)
	if err != nil {
		return 0
	}
	return def.FPS
}

// Validate checks that every action in actions exists and carries every key
// in keys. Missing entries are configuration errors.
func (l *Library) Validate(actions []string, keys []string) error {
	var missing []string
	for _, action := range actions {
		if !l.HasAction(action) {
			missing = append(missing, action)
			continue
		}
		for _, key := range keys {
			if _, err := l.Def(action, key); err != nil {
				missing = append(missing, AnimationKey(action, key))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return oops.In("anim").
		With("library", l.Name).
		With("missing", missing).
		Wrap(ErrUnknownAnimation)
}

// ValidateOneShot checks that action completes when played from every key
// in keys: it must not loop and must advance at a positive frame rate.
func (l *Library) ValidateOneShot(action string, keys []string) error {
	errb := oops.In("anim").With("library", l.Name).With("action", action)
	for _, key := range keys {
		def, err := l.Def(action, key)
		if err != nil {
			return err
		}
		if def.Loop {
			return errb.With("key", key).Wrapf(ErrNeverCompletes, "loops")
		}
		if def.FPS <= 0 {
			return errb.With("key", key).With("fps", def.FPS).Wrapf(ErrNeverCompletes, "no frame rate")
		}
	}
	return nil
}
