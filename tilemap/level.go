package tilemap

import (
	"errors"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/overworld/char"
	"github.com/milk9111/overworld/tileevent"
)

var (
	ErrBadLevel   = errors.New("tilemap: invalid level")
	ErrBadLayer   = errors.New("tilemap: layer rows do not match level size")
	ErrOutOfRange = errors.New("tilemap: coordinate outside the map")
)

// BlockedTile marks a solid cell in a layer's rows.
const BlockedTile = '#'

// Level is a map as authored in a level file.
type Level struct {
	Name           string           `yaml:"name"`
	Width          int              `yaml:"width"`
	Height         int              `yaml:"height"`
	TileWidth      float64          `yaml:"tile_width"`
	TileHeight     float64          `yaml:"tile_height"`
	WorldMap       bool             `yaml:"world_map,omitempty"`
	ShowFootsteps  bool             `yaml:"show_footsteps,omitempty"`
	CollisionLayer int              `yaml:"collision_layer,omitempty"`
	Layers         []Layer          `yaml:"layers"`
	Tiles          []TileProps      `yaml:"tiles,omitempty"`
	Hero           Spawn            `yaml:"hero"`
	NPCs           []Spawn          `yaml:"npcs,omitempty"`
	Objects        []ObjectSpawn    `yaml:"objects,omitempty"`
	Events         []tileevent.Spec `yaml:"events,omitempty"`
}

// Layer is one collision layer. Each row is a string of Width cells where
// BlockedTile is solid and anything else is walkable.
type Layer struct {
	Rows []string `yaml:"rows"`
}

// TileProps are the per-tile flags the movement core reads.
type TileProps struct {
	X                int   `yaml:"x"`
	Y                int   `yaml:"y"`
	HalfCrop         bool  `yaml:"half_crop,omitempty"`
	DisableFootprint []int `yaml:"disable_footprint,omitempty"`
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Spawn places a character prefab on the map.
type Spawn struct {
	Key       string           `yaml:"key"`
	Prefab    string           `yaml:"prefab"`
	X         int              `yaml:"x"`
	Y         int              `yaml:"y"`
	Layer     int              `yaml:"layer,omitempty"`
	Direction string           `yaml:"direction,omitempty"`
	Action    string           `yaml:"action,omitempty"`
	Patrol    []Point          `yaml:"patrol,omitempty"`
	Storage   char.StorageKeys `yaml:"storage,omitempty"`
}

// ObjectSpawn places an interactable object prefab on the map.
type ObjectSpawn struct {
	Key    string `yaml:"key"`
	Prefab string `yaml:"prefab"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Layer  int    `yaml:"layer,omitempty"`
	Drops  []Drop `yaml:"drops,omitempty"`
}

// Drop is a tile an object falls from once pushed onto it.
type Drop struct {
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	DestY     int     `yaml:"dest_y"`
	DestLayer int     `yaml:"dest_collision_layer"`
	Duration  float64 `yaml:"animation_duration,omitempty"`
	Dust      bool    `yaml:"dust_animation,omitempty"`
}

// Parse decodes and validates a YAML level.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, oops.In("tilemap").Wrapf(err, "unmarshal level")
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Load reads a level through load, which resolves level names to bytes.
func Load(name string, load func(string) ([]byte, error)) (*Level, error) {
	data, err := load(name)
	if err != nil {
		return nil, oops.In("tilemap").With("level", name).Wrapf(err, "read level")
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, oops.In("tilemap").With("level", name).Wrap(err)
	}
	return lvl, nil
}

func (l *Level) Validate() error {
	errb := oops.In("tilemap").With("level", l.Name)
	if l.Width <= 0 || l.Height <= 0 {
		return errb.With("width", l.Width).With("height", l.Height).Wrap(ErrBadLevel)
	}
	if l.TileWidth <= 0 || l.TileHeight <= 0 {
		return errb.With("tile_width", l.TileWidth).With("tile_height", l.TileHeight).Wrap(ErrBadLevel)
	}
	if len(l.Layers) == 0 {
		return errb.Wrapf(ErrBadLevel, "no collision layers")
	}
	for i, layer := range l.Layers {
		if len(layer.Rows) != l.Height {
			return errb.With("layer", i).With("rows", len(layer.Rows)).Wrap(ErrBadLayer)
		}
		for y, row := range layer.Rows {
			if len(row) != l.Width {
				return errb.With("layer", i).With("row", y).With("cells", len(row)).Wrap(ErrBadLayer)
			}
		}
	}
	if l.CollisionLayer < 0 || l.CollisionLayer >= len(l.Layers) {
		return errb.With("collision_layer", l.CollisionLayer).Wrap(ErrOutOfRange)
	}
	if !l.Contains(l.Hero.X, l.Hero.Y) {
		return errb.With("x", l.Hero.X).With("y", l.Hero.Y).Wrapf(ErrOutOfRange, "hero spawn")
	}
	return nil
}

func (l *Level) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.Width && y < l.Height
}

// String renders the layer grid, one row per line.
func (l Layer) String() string {
	return strings.Join(l.Rows, "\n")
}
