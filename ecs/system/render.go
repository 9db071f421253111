package system

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/interact"
)

// Terrain is the map as the renderer sees it.
type Terrain interface {
	Name() string
	Size() (w, h int)
	TileSize() (w, h float64)
	Layers() int
	Solid(x, y, layer int) bool
	CollisionLayer() int
}

var (
	groundColor   = color.NRGBA{R: 0x5B, G: 0x8C, B: 0x4A, A: 0xFF}
	gridColor     = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x18}
	shadowColor   = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x50}
	facingColor   = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xC0}
	dustColor     = color.NRGBA{R: 0xD8, G: 0xC8, B: 0xA8, A: 0xD0}
	objectOutline = color.NRGBA{R: 0x30, G: 0x20, B: 0x10, A: 0xFF}
	layerColors   = []color.NRGBA{
		{R: 0x3A, G: 0x3A, B: 0x46, A: 0xFF},
		{R: 0x7A, G: 0x6A, B: 0x58, A: 0xFF},
		{R: 0x9A, G: 0x8A, B: 0x78, A: 0xFF},
	}
)

// RenderSystem draws the map, objects, actors and dust with flat shapes.
type RenderSystem struct {
	terrain Terrain
	dust    *interact.Dust
}

func NewRenderSystem(terrain Terrain, dust *interact.Dust) *RenderSystem {
	return &RenderSystem{terrain: terrain, dust: dust}
}

func (r *RenderSystem) Update(*ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || r.terrain == nil {
		return
	}
	camX, camY, zoom := cameraTransform(w)
	toScreen := func(x, y float64) (float32, float32) {
		return float32((x - camX) * zoom), float32((y - camY) * zoom)
	}

	r.drawTerrain(screen, toScreen, zoom)

	ecs.ForEach(w, component.ObjectComponent.Kind(), func(e ecs.Entity, obj *component.Object) {
		if obj.Object == nil {
			return
		}
		x, y := obj.Object.Position()
		sx, sy := toScreen(x-obj.Width/2, y-obj.Height/2)
		ow, oh := float32(obj.Width*zoom), float32(obj.Height*zoom)
		fill := obj.Color
		if fill == nil {
			fill = layerColors[1]
		}
		vector.FillRect(screen, sx, sy, ow, oh, fill, false)
		vector.StrokeRect(screen, sx, sy, ow, oh, 1, objectOutline, false)
	})

	// Actors further down the screen are drawn over those above them.
	var actors []*component.Actor
	ecs.ForEach(w, component.ActorComponent.Kind(), func(e ecs.Entity, actor *component.Actor) {
		if actor.Char != nil && actor.Char.Active() {
			actors = append(actors, actor)
		}
	})
	sort.SliceStable(actors, func(i, j int) bool {
		_, yi := actors[i].Char.Position()
		_, yj := actors[j].Char.Position()
		return yi < yj
	})
	for _, actor := range actors {
		drawActor(screen, actor, toScreen, zoom)
	}

	if r.dust != nil {
		for _, p := range r.dust.Particles() {
			sx, sy := toScreen(p.X, p.Y)
			vector.DrawFilledCircle(screen, sx, sy, float32(2*zoom), dustColor, true)
		}
	}

	r.drawHUD(w, screen)
}

func (r *RenderSystem) drawTerrain(screen *ebiten.Image, toScreen func(x, y float64) (float32, float32), zoom float64) {
	screen.Fill(groundColor)
	mw, mh := r.terrain.Size()
	tw, th := r.terrain.TileSize()
	sw, sh := float32(tw*zoom), float32(th*zoom)
	for y := 0; y < mh; y++ {
		for x := 0; x < mw; x++ {
			sx, sy := toScreen(float64(x)*tw, float64(y)*th)
			for layer := r.terrain.Layers() - 1; layer >= 0; layer-- {
				if r.terrain.Solid(x, y, layer) {
					vector.FillRect(screen, sx, sy, sw, sh, layerColors[layer%len(layerColors)], false)
					break
				}
			}
			vector.StrokeRect(screen, sx, sy, sw, sh, 1, gridColor, false)
		}
	}
}

func drawActor(screen *ebiten.Image, actor *component.Actor, toScreen func(x, y float64) (float32, float32), zoom float64) {
	c := actor.Char
	radius := float32(actor.Radius * zoom)
	if actor.Shadow != nil && actor.Shadow.Visible() {
		sx, sy := toScreen(actor.Shadow.X, actor.Shadow.Y+actor.Radius*0.6)
		vector.DrawFilledCircle(screen, sx, sy, radius*0.8, shadowColor, true)
	}
	if actor.Sprite != nil && !actor.Sprite.Visible() {
		return
	}

	x, y := c.Position()
	sx, sy := toScreen(x, y)
	fill := actor.Color
	if fill == nil {
		fill = color.White
	}
	vector.DrawFilledCircle(screen, sx, sy, radius, fill, true)

	if dir := c.CurrentDirection(); dir.Valid() {
		dx, dy := dir.Vector()
		ex, ey := toScreen(x+float64(dx)*actor.Radius, y+float64(dy)*actor.Radius)
		vector.StrokeLine(screen, sx, sy, ex, ey, float32(zoom), facingColor, true)
	}
}

func (r *RenderSystem) drawHUD(w *ecs.World, screen *ebiten.Image) {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	actor, ok := ecs.Get(w, player, component.ActorComponent.Kind())
	if !ok || actor.Char == nil {
		return
	}
	c := actor.Char
	tx, ty := c.TilePosition()
	text := fmt.Sprintf("%s  tile %d,%d  layer %d  %s %s",
		r.terrain.Name(), tx, ty, r.terrain.CollisionLayer(), c.CurrentAction(), c.CurrentDirection())
	ebitenutil.DebugPrintAt(screen, text, 4, 4)
}
