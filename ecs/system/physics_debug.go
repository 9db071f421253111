package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/tileevent"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

var (
	eventActiveColor   = color.NRGBA{R: 0xFF, G: 0xD0, B: 0x30, A: 0xA0}
	eventInactiveColor = color.NRGBA{R: 0x90, G: 0x90, B: 0x90, A: 0x80}
)

// DebugSystem overlays physics shapes, tile events and the hero's movement
// flags.
type DebugSystem struct {
	space        *cp.Space
	events       *tileevent.Index
	tileW, tileH float64
	enabled      bool
}

func NewDebugSystem(space *cp.Space, events *tileevent.Index, tileW, tileH float64) *DebugSystem {
	return &DebugSystem{space: space, events: events, tileW: tileW, tileH: tileH, enabled: true}
}

func (d *DebugSystem) Toggle()       { d.enabled = !d.enabled }
func (d *DebugSystem) Enabled() bool { return d.enabled }

func (d *DebugSystem) Update(*ecs.World) {}

func (d *DebugSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if !d.enabled {
		return
	}
	camX, camY, zoom := cameraTransform(w)
	d.drawEvents(screen, camX, camY, zoom)
	if d.space != nil {
		cp.DrawSpace(d.space, &physicsDebugDrawer{screen: screen, camX: camX, camY: camY, zoom: zoom})
	}
	drawPlayerStateDebug(w, screen)
}

func (d *DebugSystem) drawEvents(screen *ebiten.Image, camX, camY, zoom float64) {
	if d.events == nil {
		return
	}
	for _, ev := range d.events.All() {
		x, y := ev.Position()
		sx := float32((float64(x)*d.tileW - camX) * zoom)
		sy := float32((float64(y)*d.tileH - camY) * zoom)
		clr := eventInactiveColor
		if eventActive(ev) {
			clr = eventActiveColor
		}
		inset := float32(2 * zoom)
		vector.StrokeRect(screen, sx+inset, sy+inset, float32(d.tileW*zoom)-2*inset, float32(d.tileH*zoom)-2*inset, 1, clr, false)
		ebitenutil.DebugPrintAt(screen, string(ev.Kind())[:1], int(sx+inset+1), int(sy+inset))
	}
}

func eventActive(ev *tileevent.Event) bool {
	for _, d := range ev.Directions() {
		if ev.IsActive(d) {
			return true
		}
	}
	return false
}

func drawPlayerStateDebug(w *ecs.World, screen *ebiten.Image) {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	actor, ok := ecs.Get(w, player, component.ActorComponent.Kind())
	if !ok || actor.Char == nil {
		return
	}
	c := actor.Char
	vx, vy := c.Velocity()
	text := fmt.Sprintf("Action: %s\nDirection: %s\nVelocity: %.0f,%.0f\nColliding: %v\nTryingToPush: %v\nPushing: %v\nClimbing: %v\nIce: %v",
		c.CurrentAction(), c.CurrentDirection(), vx, vy, c.StopByColliding, c.TryingToPush, c.Pushing, c.Climbing, c.IceSlidingActive)
	ebitenutil.DebugPrintAt(screen, text, 4, 20)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	camX   float64
	camY   float64
	zoom   float64
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// ShapeColor dims static tile shapes so moving bodies stand out.
func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.1, G: 0.4, B: 0.6, A: 0.4}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr cp.FColor) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, toNRGBA(clr), false)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func (d *physicsDebugDrawer) toScreen(v cp.Vector) (float32, float32) {
	return float32((v.X - d.camX) * d.zoom), float32((v.Y - d.camY) * d.zoom)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
