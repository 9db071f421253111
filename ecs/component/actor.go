package component

import (
	"image/color"

	"github.com/milk9111/overworld/anim"
	"github.com/milk9111/overworld/char"
)

// Actor is a character on the map and what it is drawn with.
type Actor struct {
	Char   *char.Controllable
	Sprite *anim.Sprite
	Shadow *anim.Shadow
	Color  color.Color
	Radius float64
}

var ActorComponent = NewComponent[Actor]()
