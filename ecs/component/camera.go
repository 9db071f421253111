package component

// Camera follows the player. X and Y are the top-left of the view in world
// pixels.
type Camera struct {
	X, Y       float64
	Zoom       float64
	Smoothness float64
	ViewW      float64
	ViewH      float64
}

var CameraComponent = NewComponent[Camera]()
