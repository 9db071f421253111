package ecs

import (
	"github.com/samber/oops"

	"github.com/milk9111/overworld/ecs/component"
)

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if w == nil {
		return nil
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		if !create {
			return nil
		}
		set := newSparseSet[T]()
		w.stores[kind.ID()] = set
		return set
	}
	set, _ := s.(*sparseSet[T])
	return set
}

// Add attaches value to e, replacing any component of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	errb := oops.In("ecs").With("entity", e.String()).With("component", kind.String())
	switch {
	case !kind.Valid():
		return errb.Wrap(component.ErrInvalidComponentKind)
	case value == nil:
		return errb.Wrap(component.ErrNilComponent)
	case !IsAlive(w, e):
		return errb.Wrap(component.ErrEntityNotAlive)
	}
	storeFor(w, kind, true).set(e.id(), value)
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e.id())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeFor(w, kind, false)
	return s != nil && s.remove(e.id())
}

// First returns the lowest-slot entity carrying kind; singletons like the
// hero are looked up this way.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := storeFor(w, kind, false)
	if s == nil {
		return 0, false
	}
	var best Entity
	for _, id := range s.dense {
		if e, ok := w.entities.entity(id); ok && (best == 0 || id < best.id()) {
			best = e
		}
	}
	return best, best != 0
}
