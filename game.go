package main

import (
	"log/slog"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/samber/oops"

	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/levels"
	"github.com/milk9111/overworld/prefabs"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tileevent"
)

const (
	ViewWidth  = 640
	ViewHeight = 384

	// MapKey is the save entry holding the level the hero was last on.
	MapKey = "map"
)

// Game runs one scene at a time and swaps it when the hero teleports to
// another map or a watched file changes.
type Game struct {
	cfg     Config
	log     *slog.Logger
	store   *storage.MemStore
	scripts *tileevent.ScriptRunner
	watcher *prefabs.Watcher
	input   func() component.Input

	scene   *Scene
	pending *tileevent.TeleportRequest
}

func NewGame(cfg Config, log *slog.Logger) (*Game, error) {
	return newGame(cfg, log, nil)
}

// newGame steers the hero with input instead of the keyboard when set.
func newGame(cfg Config, log *slog.Logger, input func() component.Input) (*Game, error) {
	if log == nil {
		log = slog.Default()
	}
	g := &Game{
		cfg:     cfg,
		log:     log,
		store:   storage.NewMemStore(),
		scripts: tileevent.NewScriptRunner(prefabs.LoadScript),
		input:   input,
	}
	if cfg.Save != "" {
		store, err := storage.Load(cfg.Save)
		if err != nil {
			return nil, err
		}
		g.store = store
	}

	level := cfg.Level
	if v, ok := g.store.Get(MapKey); ok {
		if name, isString := v.(string); isString && name != "" {
			level = name
		}
	}
	if err := g.load(level, nil); err != nil {
		return nil, err
	}

	if cfg.Watch {
		w, err := prefabs.NewWatcher(levels.Dir, prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			g.log.Warn("hot reload disabled", "err", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) load(name string, arrival *tileevent.TeleportRequest) error {
	scene, err := LoadScene(name, SceneOptions{
		Store:      g.store,
		Scripts:    g.scripts,
		Teleporter: g,
		Arrival:    arrival,
		TPS:        g.cfg.TPS,
		ViewW:      ViewWidth,
		ViewH:      ViewHeight,
		Zoom:       g.cfg.Scale,
		Debug:      g.debug(),
		Log:        g.log,
		Input:      g.input,
	})
	if err != nil {
		return err
	}
	if g.scene != nil {
		g.scene.Close()
	}
	g.scene = scene
	return nil
}

func (g *Game) debug() bool {
	if g.scene != nil {
		return g.scene.Debug()
	}
	return g.cfg.Debug
}

// Teleport queues a map change; it happens once the current tick is over.
func (g *Game) Teleport(req tileevent.TeleportRequest) error {
	if _, err := levels.Load(req.Map); err != nil {
		return oops.In("game").With("map", req.Map).Wrapf(err, "teleport")
	}
	g.pending = &req
	return nil
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.scene.ToggleDebug()
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		if err := g.Save(); err != nil {
			g.log.Error("save failed", "err", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if err := g.Save(); err != nil {
			g.log.Error("save failed", "err", err)
		}
		return ebiten.Termination
	}
	return g.Step()
}

// Step advances the scene one tick, then applies queued teleports and
// file changes.
func (g *Game) Step() error {
	g.scene.Update()

	if req := g.pending; req != nil {
		g.pending = nil
		g.log.Info("teleport", "from", g.scene.Name, "to", req.Map, "x", req.TileX, "y", req.TileY)
		if err := g.load(req.Map, req); err != nil {
			return err
		}
	}
	g.drainWatcher()
	return nil
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("watcher error", "err", err)
		default:
			return
		}
	}
}

// reload rebuilds the current scene with the hero where it stands. Script
// edits only drop the compiled scripts.
func (g *Game) reload(name string) {
	if prefabs.IsScriptFile(name) {
		g.scripts.Invalidate()
		g.log.Info("scripts reloaded", "file", name)
		return
	}
	g.scripts.Invalidate()
	here := g.Here()
	if err := g.load(here.Map, &here); err != nil {
		g.log.Error("reload failed", "file", name, "err", err)
		return
	}
	g.log.Info("scene reloaded", "file", name, "level", here.Map)
}

// Here is where the hero stands, as a request that would put it back.
func (g *Game) Here() tileevent.TeleportRequest {
	hero := g.scene.Hero
	x, y := hero.TilePosition()
	return tileevent.TeleportRequest{
		Map:       g.scene.Name,
		TileX:     x,
		TileY:     y,
		Layer:     g.scene.Map.CollisionLayer(),
		Direction: hero.CurrentDirection(),
	}
}

// Save records the map and the hero's stored keys, then writes the save
// file when one is configured.
func (g *Game) Save() error {
	here := g.Here()
	g.store.Set(MapKey, here.Map)
	if key := g.scene.HeroKeys.Position; key != "" {
		g.store.Set(key, map[string]any{"x": here.TileX, "y": here.TileY})
	}
	if key := g.scene.HeroKeys.Direction; key != "" {
		g.store.Set(key, here.Direction.String())
	}
	if g.cfg.Save == "" {
		return nil
	}
	if err := g.store.Save(g.cfg.Save); err != nil {
		return err
	}
	g.log.Info("saved", "path", g.cfg.Save, "map", here.Map)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return ViewWidth, ViewHeight
}

func (g *Game) Scene() *Scene { return g.scene }

func (g *Game) Close() error {
	if g.scene != nil {
		g.scene.Close()
	}
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}
