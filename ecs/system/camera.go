package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// CameraSystem centers the camera on the player and keeps the view inside
// the map.
type CameraSystem struct {
	mapW, mapH float64
	snapped    bool
}

// NewCameraSystem bounds the view to a map of mapW by mapH pixels.
func NewCameraSystem(mapW, mapH float64) *CameraSystem {
	return &CameraSystem{mapW: mapW, mapH: mapH}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return
	}
	cam, _ := ecs.Get(w, camEntity, component.CameraComponent.Kind())

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	actor, ok := ecs.Get(w, player, component.ActorComponent.Kind())
	if !ok || actor.Char == nil {
		return
	}

	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	viewW, viewH := cam.ViewW/zoom, cam.ViewH/zoom
	px, py := actor.Char.Position()
	tx := clampView(px-viewW/2, viewW, cs.mapW)
	ty := clampView(py-viewH/2, viewH, cs.mapH)

	if !cs.snapped || cam.Smoothness <= 0 {
		cam.X, cam.Y = tx, ty
		cs.snapped = true
		return
	}
	cam.X += (tx - cam.X) * cam.Smoothness
	cam.Y += (ty - cam.Y) * cam.Smoothness
}

// clampView keeps [pos, pos+view) inside [0, size); a map smaller than the
// view is centered.
func clampView(pos, view, size float64) float64 {
	if size <= view {
		return (size - view) / 2
	}
	if pos < 0 {
		return 0
	}
	if pos+view > size {
		return size - view
	}
	return pos
}

// cameraTransform returns the view origin and zoom, or an identity camera.
func cameraTransform(w *ecs.World) (x, y, zoom float64) {
	zoom = 1
	camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return 0, 0, zoom
	}
	cam, _ := ecs.Get(w, camEntity, component.CameraComponent.Kind())
	if cam.Zoom > 0 {
		zoom = cam.Zoom
	}
	return cam.X, cam.Y, zoom
}
