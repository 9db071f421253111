package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

const stickDeadzone = 0.2

// InputSystem copies the player's steering onto the player entity.
type InputSystem struct {
	read func() component.Input
}

func NewInputSystem() *InputSystem {
	return &InputSystem{read: ReadKeyboard}
}

// NewInputSystemFrom reads steering from read instead of the keyboard.
func NewInputSystemFrom(read func() component.Input) *InputSystem {
	return &InputSystem{read: read}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	in := i.read()
	ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.InputComponent.Kind(), func(e ecs.Entity, _ *component.Player, input *component.Input) {
		*input = in
	})
}

// ReadKeyboard reads arrows or WASD, shift to dash, and the first
// gamepad's left stick.
func ReadKeyboard() component.Input {
	var in component.Input
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.MoveX--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.MoveX++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.MoveY--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.MoveY++
	}
	in.Dash = ebiten.IsKeyPressed(ebiten.KeyShift)

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Abs(x) > stickDeadzone {
			in.MoveX = snap(x)
		}
		if math.Abs(y) > stickDeadzone {
			in.MoveY = snap(y)
		}
		in.Dash = in.Dash || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightLeft)
	}
	return in
}

// snap turns a stick axis into -1, 0 or 1; characters move in eight
// directions only.
func snap(v float64) float64 {
	switch {
	case v > stickDeadzone:
		return 1
	case v < -stickDeadzone:
		return -1
	}
	return 0
}
