package component

import (
	"image/color"

	"github.com/milk9111/overworld/interact"
)

// Object is an interactable map object such as a crate.
type Object struct {
	Object *interact.Object
	Width  float64
	Height float64
	Color  color.Color
}

var ObjectComponent = NewComponent[Object]()
