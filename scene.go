package main

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/samber/oops"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/interact"
	"github.com/milk9111/overworld/levels"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/prefabs"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tileevent"
	"github.com/milk9111/overworld/tilemap"
	"github.com/milk9111/overworld/tween"
)

const (
	// PatrolRest is how long NPCs wait on each patrol point.
	PatrolRest       = 1500.0
	CameraSmoothness = 0.15
)

// SceneOptions are the game-wide collaborators a scene is built with.
type SceneOptions struct {
	Store      storage.Store
	Scripts    *tileevent.ScriptRunner
	Teleporter tileevent.Teleporter
	// Arrival overrides the level's hero spawn and any stored position.
	Arrival *tileevent.TeleportRequest

	TPS          int
	ViewW, ViewH float64
	Zoom         float64
	Debug        bool
	Log          *slog.Logger
	// Input replaces the keyboard when set.
	Input func() component.Input
}

// Scene is one loaded level with everything running on it.
type Scene struct {
	Name     string
	Level    *tilemap.Level
	Map      *tilemap.Map
	Physics  *physics.World
	Clock    *tween.Scheduler
	World    *ecs.World
	Hero     *char.Controllable
	HeroKeys char.StorageKeys
	Pusher   *interact.Pusher
	Manager  *tileevent.Manager
	Dust     *interact.Dust
	Systems  *ecs.Scheduler

	debug *system.DebugSystem
}

func LoadScene(name string, opts SceneOptions) (*Scene, error) {
	errb := oops.In("scene").With("level", name)
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}

	lvl, err := tilemap.Load(name, levels.Load)
	if err != nil {
		return nil, err
	}
	if opts.Arrival != nil {
		applyArrival(lvl, opts.Store, *opts.Arrival)
	}

	s := &Scene{
		Name:     lvl.Name,
		Level:    lvl,
		Physics:  physics.NewWorld(log),
		Clock:    tween.NewScheduler(),
		World:    ecs.NewWorld(),
		HeroKeys: lvl.Hero.Storage,
	}
	s.Dust = interact.NewDust(s.Clock)
	s.Map, err = tilemap.New(lvl, opts.Store, s.Physics, log)
	if err != nil {
		return nil, errb.Wrap(err)
	}

	hero, err := s.spawnActor(lvl.Hero, opts, log)
	if err != nil {
		s.Close()
		return nil, errb.With("spawn", lvl.Hero.Key).Wrap(err)
	}
	s.Hero = hero.Char
	if err := ecs.Add(s.World, hero.entity, component.PlayerTagComponent.Kind(), &component.Player{}); err != nil {
		s.Close()
		return nil, errb.Wrap(err)
	}
	s.Map.SetCollisionLayer(s.Hero.Layer())

	for _, spawn := range lvl.NPCs {
		npc, err := s.spawnActor(spawn, opts, log)
		if err != nil {
			s.Close()
			return nil, errb.With("spawn", spawn.Key).Wrap(err)
		}
		if len(spawn.Patrol) > 0 {
			patrol := &component.Patrol{Points: spawn.Patrol, Rest: PatrolRest}
			if err := ecs.Add(s.World, npc.entity, component.PatrolComponent.Kind(), patrol); err != nil {
				s.Close()
				return nil, errb.Wrap(err)
			}
		}
	}

	s.Pusher, err = interact.NewPusher(interact.Env{
		Hero:    s.Hero,
		Field:   s.Map,
		World:   s.Physics,
		Clock:   s.Clock,
		Index:   s.Map.Events(),
		Effects: s.Dust,
		Log:     log,
	})
	if err != nil {
		s.Close()
		return nil, errb.Wrap(err)
	}
	for _, spawn := range lvl.Objects {
		if err := s.spawnObject(spawn, opts.Store); err != nil {
			s.Close()
			return nil, errb.With("object", spawn.Key).Wrap(err)
		}
	}

	s.Manager, err = tileevent.NewManager(s.Map.Events(), tileevent.Env{
		Hero:       s.Hero,
		Field:      s.Map,
		World:      s.Physics,
		Clock:      s.Clock,
		Storage:    opts.Store,
		Teleporter: opts.Teleporter,
		Effects:    s.Dust,
		Scripts:    opts.Scripts,
		Log:        log,
	})
	if err != nil {
		s.Close()
		return nil, errb.Wrap(err)
	}

	camera := ecs.CreateEntity(s.World)
	err = ecs.Add(s.World, camera, component.CameraComponent.Kind(), &component.Camera{
		Zoom:       opts.Zoom,
		Smoothness: CameraSmoothness,
		ViewW:      opts.ViewW / opts.Zoom,
		ViewH:      opts.ViewH / opts.Zoom,
	})
	if err != nil {
		s.Close()
		return nil, errb.Wrap(err)
	}

	input := system.NewInputSystem()
	if opts.Input != nil {
		input = system.NewInputSystemFrom(opts.Input)
	}
	tw, th := s.Map.TileSize()
	mw, mh := s.Map.Size()
	s.debug = system.NewDebugSystem(s.Physics.Space(), s.Map.Events(), tw, th)
	if !opts.Debug {
		s.debug.Toggle()
	}
	s.Systems = ecs.NewScheduler(
		system.NewClockSystem(s.Clock, 1000/float64(opts.TPS)),
		input,
		system.NewPatrolSystem(s.Clock, tw, th),
		system.NewMovementSystem(s.Clock),
		system.NewPhysicsSystem(s.Physics, s.Clock),
		system.NewInteractionSystem(s.Pusher, s.Manager),
		system.NewAnimationSystem(s.Clock),
		system.NewCameraSystem(float64(mw)*tw, float64(mh)*th),
		system.NewRenderSystem(s.Map, s.Dust),
		s.debug,
	)

	log.Info("scene loaded",
		"level", s.Name,
		"npcs", len(lvl.NPCs),
		"objects", len(s.Pusher.Objects()),
		"events", s.Map.Events().Len(),
	)
	return s, nil
}

// applyArrival moves the hero spawn to the teleport destination. Stored
// position and direction are overwritten so they do not win over it.
func applyArrival(lvl *tilemap.Level, store storage.Store, req tileevent.TeleportRequest) {
	lvl.Hero.X, lvl.Hero.Y = req.TileX, req.TileY
	lvl.Hero.Layer = req.Layer
	lvl.CollisionLayer = req.Layer
	if req.Direction.Valid() {
		lvl.Hero.Direction = req.Direction.String()
	}
	if store == nil {
		return
	}
	if key := lvl.Hero.Storage.Position; key != "" {
		store.Set(key, map[string]any{"x": req.TileX, "y": req.TileY})
	}
	if key := lvl.Hero.Storage.Direction; key != "" && req.Direction.Valid() {
		store.Set(key, req.Direction.String())
	}
}

type spawned struct {
	entity ecs.Entity
	*component.Actor
}

func (s *Scene) spawnActor(spawn tilemap.Spawn, opts SceneOptions, log *slog.Logger) (spawned, error) {
	prefab := spawn.Prefab
	if prefab == "" {
		prefab = spawn.Key + ".yaml"
	}
	spec, err := prefabs.LoadCharacterSpec(prefab)
	if err != nil {
		return spawned{}, err
	}
	lib, err := prefabs.LoadLibrary(spec.Animations)
	if err != nil {
		return spawned{}, err
	}

	dir := common.Down
	if spawn.Direction != "" {
		if dir, err = common.ParseDirection(spawn.Direction); err != nil {
			return spawned{}, oops.In("scene").With("direction", spawn.Direction).Wrap(err)
		}
	}

	body := s.Physics.AddCircle(0, 0, spec.BodyRadius, spawn.Layer)
	sprite := anim.NewSprite(lib)
	deps := char.Deps{
		Body:    body,
		World:   s.Physics,
		Sprite:  sprite,
		Field:   s.Map,
		Clock:   s.Clock,
		Storage: opts.Store,
		Log:     log,
	}
	var shadow *anim.Shadow
	if spec.Shadow {
		shadow = anim.NewShadow(0, 0)
		deps.Shadow = shadow
	}
	c, err := char.New(char.Config{
		Key:             spawn.Key,
		WalkSpeed:       spec.WalkSpeed,
		DashSpeed:       spec.DashSpeed,
		ClimbSpeed:      spec.ClimbSpeed,
		EnableFootsteps: spec.Footsteps,
		TileX:           spawn.X,
		TileY:           spawn.Y,
		Action:          char.Action(spawn.Action),
		Direction:       &dir,
		Layer:           spawn.Layer,
		StorageKeys:     spawn.Storage,
	}, deps)
	if err != nil {
		s.Physics.RemoveBody(body)
		return spawned{}, err
	}

	actor := &component.Actor{
		Char:   c,
		Sprite: sprite,
		Shadow: shadow,
		Color:  spec.Color.ColorOr(nil),
		Radius: spec.BodyRadius,
	}
	e := ecs.CreateEntity(s.World)
	if err := ecs.Add(s.World, e, component.ActorComponent.Kind(), actor); err != nil {
		return spawned{}, err
	}
	if err := ecs.Add(s.World, e, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return spawned{}, err
	}
	if err := ecs.Add(s.World, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body}); err != nil {
		return spawned{}, err
	}
	return spawned{entity: e, Actor: actor}, nil
}

func (s *Scene) spawnObject(spawn tilemap.ObjectSpawn, store storage.Store) error {
	prefab := spawn.Prefab
	if prefab == "" {
		prefab = spawn.Key + ".yaml"
	}
	spec, err := prefabs.LoadObjectSpec(prefab)
	if err != nil {
		return err
	}

	var events []*tileevent.Event
	for _, es := range spec.Events {
		if ev := s.Map.AddEvent(es.Place(spawn.X, spawn.Y, spawn.Layer), store, true); ev != nil {
			events = append(events, ev)
		}
	}

	x, y := s.Map.TileCenter(spawn.X, spawn.Y)
	body := s.Physics.AddBox(x, y, spec.Width, spec.Height, spawn.Layer)
	obj := interact.NewObject(interact.ObjectConfig{
		Key:      spawn.Key,
		TileX:    spawn.X,
		TileY:    spawn.Y,
		Layer:    spawn.Layer,
		Pushable: spec.Pushable,
		Events:   events,
		Drops:    spawn.Drops,
	}, body)
	s.Pusher.Add(obj)

	e := ecs.CreateEntity(s.World)
	return ecs.Add(s.World, e, component.ObjectComponent.Kind(), &component.Object{
		Object: obj,
		Width:  spec.Width,
		Height: spec.Height,
		Color:  spec.Color.ColorOr(nil),
	})
}

func (s *Scene) Update() {
	s.Systems.Update(s.World)
}

func (s *Scene) Draw(screen *ebiten.Image) {
	s.Systems.Draw(s.World, screen)
}

func (s *Scene) ToggleDebug() {
	s.debug.Toggle()
}

func (s *Scene) Debug() bool {
	return s.debug.Enabled()
}

// Close releases the map's static tiles.
func (s *Scene) Close() {
	if s.Map != nil {
		s.Map.Close()
	}
}
