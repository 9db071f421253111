package ecs

import "github.com/milk9111/overworld/ecs/component"

// smallest returns the candidate ids from the smallest of stores, or nil
// when any store is missing.
func smallest(stores ...store) []entityID {
	var pick store
	for _, s := range stores {
		if s == nil || s.len() == 0 {
			return nil
		}
		if pick == nil || s.len() < pick.len() {
			pick = s
		}
	}
	if pick == nil {
		return nil
	}
	return pick.ids()
}

// asStore keeps a nil *sparseSet from becoming a non-nil interface.
func asStore[T any](s *sparseSet[T]) store {
	if s == nil {
		return nil
	}
	return s
}

func ForEach[A any](w *World, ka component.ComponentKind[A], fn func(Entity, *A)) {
	sa := storeFor(w, ka, false)
	for _, id := range smallest(asStore(sa)) {
		e, ok := w.entities.entity(id)
		if !ok {
			continue
		}
		if a, ok := sa.get(id); ok {
			fn(e, a)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := storeFor(w, ka, false), storeFor(w, kb, false)
	for _, id := range smallest(asStore(sa), asStore(sb)) {
		e, ok := w.entities.entity(id)
		if !ok {
			continue
		}
		a, okA := sa.get(id)
		b, okB := sb.get(id)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false)
	for _, id := range smallest(asStore(sa), asStore(sb), asStore(sc)) {
		e, ok := w.entities.entity(id)
		if !ok {
			continue
		}
		a, okA := sa.get(id)
		b, okB := sb.get(id)
		c, okC := sc.get(id)
		if okA && okB && okC {
			fn(e, a, b, c)
		}
	}
}
