package anim

// Shadow is the ground marker drawn under a character.
type Shadow struct {
	X, Y    float64
	visible bool
}

func NewShadow(x, y float64) *Shadow {
	return &Shadow{X: x, Y: y, visible: true}
}

func (s *Shadow) SetPosition(x, y float64) {
	s.X = x
	s.Y = y
}

func (s *Shadow) Visible() bool { return s.visible }

func (s *Shadow) SetVisible(v bool) { s.visible = v }
