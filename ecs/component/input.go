package component

// Input is one tick of steering for an actor. The hero's comes from the
// keyboard or a gamepad, an NPC's from its patrol.
type Input struct {
	MoveX float64
	MoveY float64
	Dash  bool
}

var InputComponent = NewComponent[Input]()
