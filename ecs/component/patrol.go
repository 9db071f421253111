package component

import "github.com/milk9111/overworld/tilemap"

// Patrol walks an NPC through Points in a loop, resting Rest milliseconds
// on each.
type Patrol struct {
	Points []tilemap.Point
	Next   int
	Rest   float64
	Waited float64
}

var PatrolComponent = NewComponent[Patrol]()
