package component

import "github.com/milk9111/overworld/physics"

// PhysicsBody links an entity to its body. LastX, LastY and the last
// velocity are what the body looked like after the previous tick and are
// used to notice it running into something.
type PhysicsBody struct {
	Body         *physics.Body
	LastX, LastY float64
	LastVX       float64
	LastVY       float64
	Tracked      bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
