package tilemap

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tileevent"
)

type cell struct{ x, y, layer int }

// Map is a loaded level: the tile grid characters walk on plus the events
// placed on it.
type Map struct {
	name          string
	width, height int
	tileW, tileH  float64
	worldMap      bool
	footsteps     bool
	layer         int

	solid    []map[[2]int]bool
	occupied map[cell]int
	props    map[[2]int]TileProps

	index  *tileevent.Index
	world  *physics.World
	shapes []*cp.Shape
	log    *slog.Logger
}

// New builds a map from a level. Events that fail to build are logged and
// left out. When world is non-nil every solid cell becomes a static tile.
func New(lvl *Level, store storage.Store, world *physics.World, log *slog.Logger) (*Map, error) {
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	m := &Map{
		name:      lvl.Name,
		width:     lvl.Width,
		height:    lvl.Height,
		tileW:     lvl.TileWidth,
		tileH:     lvl.TileHeight,
		worldMap:  lvl.WorldMap,
		footsteps: lvl.ShowFootsteps,
		layer:     lvl.CollisionLayer,
		occupied:  map[cell]int{},
		props:     map[[2]int]TileProps{},
		index:     tileevent.NewIndex(),
		world:     world,
		log:       log.With("component", "tilemap", "map", lvl.Name),
	}

	for _, layer := range lvl.Layers {
		solid := map[[2]int]bool{}
		for y, row := range layer.Rows {
			for x := 0; x < len(row); x++ {
				if row[x] == BlockedTile {
					solid[[2]int{x, y}] = true
				}
			}
		}
		m.solid = append(m.solid, solid)
	}
	for _, p := range lvl.Tiles {
		m.props[[2]int{p.X, p.Y}] = p
	}

	for _, spec := range lvl.Events {
		m.AddEvent(spec, store, false)
	}

	if world != nil {
		m.buildStaticTiles()
	}
	return m, nil
}

// AddEvent builds spec and registers it. Authoring errors are logged and
// yield nil.
func (m *Map) AddEvent(spec tileevent.Spec, store storage.Store, dynamic bool) *tileevent.Event {
	ev, err := tileevent.Build(spec, store, dynamic)
	if err != nil {
		if errors.Is(err, tileevent.ErrUnknownKind) {
			m.log.Error("unknown tile event kind", "kind", spec.Kind, "x", spec.X, "y", spec.Y)
		} else {
			m.log.Error("invalid tile event", "kind", spec.Kind, "x", spec.X, "y", spec.Y, "err", err)
		}
		return nil
	}
	return m.index.Add(ev)
}

func (m *Map) buildStaticTiles() {
	for layer, solid := range m.solid {
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				if !solid[[2]int{x, y}] {
					continue
				}
				shape := m.world.AddStaticTile(float64(x)*m.tileW, float64(y)*m.tileH, m.tileW, m.tileH, layer)
				m.shapes = append(m.shapes, shape)
			}
		}
	}
	m.log.Debug("static tiles built", "count", len(m.shapes))
}

// Close removes the map's static tiles from the physics world.
func (m *Map) Close() {
	if m.world == nil {
		return
	}
	for _, s := range m.shapes {
		m.world.RemoveShape(s)
	}
	m.shapes = nil
}

func (m *Map) Name() string                   { return m.name }
func (m *Map) Size() (w, h int)               { return m.width, m.height }
func (m *Map) TileSize() (w, h float64)       { return m.tileW, m.tileH }
func (m *Map) CollisionLayer() int            { return m.layer }
func (m *Map) Layers() int                    { return len(m.solid) }
func (m *Map) IsWorldMap() bool               { return m.worldMap }
func (m *Map) ShowFootsteps() bool            { return m.footsteps }
func (m *Map) Events() *tileevent.Index       { return m.index }
func (m *Map) Contains(x, y int) bool         { return x >= 0 && y >= 0 && x < m.width && y < m.height }
func (m *Map) Solid(x, y, layer int) bool     { return m.layerSolid(layer)[[2]int{x, y}] }
func (m *Map) HalfCrop(x, y int) bool         { return m.props[[2]int{x, y}].HalfCrop }
func (m *Map) SetCollisionLayer(layer int)    { m.layer = layer }
func (m *Map) TileOf(x, y float64) (int, int) { return int(x / m.tileW), int(y / m.tileH) }

func (m *Map) layerSolid(layer int) map[[2]int]bool {
	if layer < 0 || layer >= len(m.solid) {
		return nil
	}
	return m.solid[layer]
}

// FootprintDisabled reports whether footprints are suppressed on (x, y)
// while walking in layer.
func (m *Map) FootprintDisabled(x, y, layer int) bool {
	p, ok := m.props[[2]int{x, y}]
	return ok && slices.Contains(p.DisableFootprint, layer)
}

// Blocked reports whether a character or object can not land on (x, y) in
// layer: outside the map, a solid cell, or a cell held by an object.
func (m *Map) Blocked(x, y, layer int) bool {
	if !m.Contains(x, y) {
		return true
	}
	if m.Solid(x, y, layer) {
		return true
	}
	return m.occupied[cell{x, y, layer}] > 0
}

// Occupy marks (x, y) in layer as held by an object; Vacate releases it.
func (m *Map) Occupy(x, y, layer int) {
	m.occupied[cell{x, y, layer}]++
}

func (m *Map) Vacate(x, y, layer int) {
	c := cell{x, y, layer}
	if m.occupied[c] <= 1 {
		delete(m.occupied, c)
		return
	}
	m.occupied[c]--
}

// TileCenter returns the pixel center of (x, y).
func (m *Map) TileCenter(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * m.tileW, (float64(y) + 0.5) * m.tileH
}
