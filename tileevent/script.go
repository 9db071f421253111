package tileevent

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/samber/oops"

	"github.com/milk9111/overworld/common"
)

// ScriptLoader returns the source of a named trigger script.
type ScriptLoader func(name string) ([]byte, error)

// ScriptRunner compiles trigger scripts on first use. A script defines
// `trigger := func(engine) { ... }`; engine exposes flag storage, event
// toggles and the firing event's position.
type ScriptRunner struct {
	load  ScriptLoader
	cache map[string]*tengo.Compiled
}

const triggerDispatchScript = `
trigger(__engine)
`

func NewScriptRunner(load ScriptLoader) *ScriptRunner {
	return &ScriptRunner{load: load, cache: map[string]*tengo.Compiled{}}
}

// Invalidate drops compiled scripts so the next run reloads them.
func (r *ScriptRunner) Invalidate() {
	clear(r.cache)
}

func (r *ScriptRunner) compiled(name string) (*tengo.Compiled, error) {
	if c, ok := r.cache[name]; ok {
		return c, nil
	}
	errb := oops.In("tileevent").With("script", name)
	src, err := r.load(name)
	if err != nil {
		return nil, errb.Wrapf(ErrUnknownScript, "%v", err)
	}
	script := tengo.NewScript([]byte(string(src) + "\n" + triggerDispatchScript))
	if err := script.Add("__engine", map[string]any{}); err != nil {
		return nil, errb.Wrapf(ErrScriptExecution, "bind engine: %v", err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	c, err := script.Compile()
	if err != nil {
		return nil, errb.Wrapf(ErrScriptExecution, "compile: %v", err)
	}
	r.cache[name] = c
	return c, nil
}

// Run executes the named script with engine bound as its argument.
func (r *ScriptRunner) Run(name string, engine *tengo.ImmutableMap) error {
	c, err := r.compiled(name)
	if err != nil {
		return err
	}
	if err := c.Set("__engine", engine); err != nil {
		return oops.In("tileevent").With("script", name).Wrap(err)
	}
	if err := c.Run(); err != nil {
		return oops.In("tileevent").With("script", name).Wrapf(ErrScriptExecution, "%v", err)
	}
	return nil
}

func (m *Manager) scriptEngine(ev *Event) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"x": &tengo.Int{Value: int64(ev.x)},
		"y": &tengo.Int{Value: int64(ev.y)},
	}

	values["flag"] = &tengo.UserFunction{Name: "flag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if m.env.Storage == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		key, _ := tengo.ToString(args[0])
		v, ok := m.env.Storage.Get(strings.TrimSpace(key))
		if b, isBool := v.(bool); ok && isBool && b {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["set_flag"] = &tengo.UserFunction{Name: "set_flag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if m.env.Storage == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		key, _ := tengo.ToString(args[0])
		on, _ := tengo.ToBool(args[1])
		m.env.Storage.Set(strings.TrimSpace(key), on)
		return tengo.TrueValue, nil
	}}

	values["set_active"] = &tengo.UserFunction{Name: "set_active", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToInt(args[0])
		y, okY := tengo.ToInt(args[1])
		on, _ := tengo.ToBool(args[2])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		found := false
		for _, other := range m.index.At(x, y) {
			if other == ev {
				continue
			}
			if on {
				other.ActivateAt(common.None)
			} else {
				other.DeactivateAt(common.None)
			}
			found = true
		}
		return tengo.FromInterface(found)
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			s, _ := tengo.ToString(a)
			parts = append(parts, s)
		}
		m.log.Info(strings.Join(parts, " "), "script", ev.script, "x", ev.x, "y", ev.y)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}
