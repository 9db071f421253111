package component

// Player tags the hero entity.
type Player struct{}

var PlayerTagComponent = NewComponent[Player]()
