package char

import (
	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/common"
)

// Body is the physics body the character moves.
type Body interface {
	Position() (x, y float64)
	SetPosition(x, y float64)
	Velocity() (x, y float64)
	SetVelocity(x, y float64)
	SetLayer(layer int)
}

// PhysicsWorld is paused for the whole of a displacement jump. Pause
// returns false when the world was already paused.
type PhysicsWorld interface {
	Pause() bool
	Resume() bool
}

// Sprite plays animations for the character.
type Sprite interface {
	HasAction(action string) bool
	FrameRate(action, key string) float64
	Validate(actions []string, keys []string) error
	ValidateOneShot(action string, keys []string) error
	Play(action, key string, start bool, frameRate float64) *anim.Playback
	Scale() (x, y float64)
	SetScale(x, y float64)
	SetVisible(v bool)
}

type Shadow interface {
	SetPosition(x, y float64)
	Visible() bool
	SetVisible(v bool)
}

// Field is the map data the character reads while moving.
type Field interface {
	TileSize() (w, h float64)
	CollisionLayer() int
	IsWorldMap() bool
	ShowFootsteps() bool
	HalfCrop(x, y int) bool
	FootprintDisabled(x, y, layer int) bool
}

type Footprints interface {
	CanMakeFootprint() bool
	CreateStep(dir common.Direction, action Action)
}

type SFX interface {
	Play(key string)
}

// Cropper masks the lower quarter of the sprite on world-map tiles that
// hide the character's feet.
type Cropper interface {
	SetCrop(crop bool)
}

// Locatable is anything with a continuous position.
type Locatable interface {
	Position() (x, y float64)
}
