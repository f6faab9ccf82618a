// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package embedmap provides the reference EmbeddingMap implementation.
//
// The protocol core treats the embedding map as an external collaborator:
// it only needs store_object/retrieve_object. This package is the one
// concrete implementation the driver ships, an in-process arena with
// monotonic integer handles, holding owned objects and a hash-map from
// identity to handle for deduplication.
package embedmap

import (
	"fmt"
	"reflect"
	"sync"
)

// Map is a bidirectional registry between integer object ids and host-side
// objects. The zero value is not usable; construct with New.
type Map struct {
	mu       sync.Mutex
	byID     map[int32]any
	idByIdty map[any]int32
	next     int32
}

// New returns an empty Map. Ids are assigned starting at 1 so that 0 can
// remain reserved (the RPC serve loop treats service id 0 as the builtin
// setattr call, never an embedding-map entry).
func New() *Map {
	return &Map{
		byID:     make(map[int32]any),
		idByIdty: make(map[any]int32),
		next:     1,
	}
}

// ErrNotComparable is returned by StoreObject when obj cannot be used as a
// Go map key, so identity-based deduplication cannot be performed. Objects
// that need this (exception types, long-lived RPC target objects) should be
// stored as pointers or other comparable handles.
type ErrNotComparable struct{ Value any }

func (e ErrNotComparable) Error() string {
	return fmt.Sprintf("embedmap: value of type %T is not comparable", e.Value)
}

// StoreObject stores obj and returns its id. Calling StoreObject again with
// an equal (by ==) obj returns the same id (idempotent for equal
// identities); ids are otherwise assigned monotonically.
func (m *Map) StoreObject(obj any) (int32, error) {
	if !isComparable(obj) {
		return 0, ErrNotComparable{Value: obj}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.idByIdty[obj]; ok {
		return id, nil
	}
	id := m.next
	m.next++
	m.byID[id] = obj
	m.idByIdty[obj] = id
	return id, nil
}

// ErrUnknownID is returned by RetrieveObject for an id that was never
// stored.
type ErrUnknownID struct{ ID int32 }

func (e ErrUnknownID) Error() string {
	return fmt.Sprintf("embedmap: unknown object id %d", e.ID)
}

// RetrieveObject resolves a previously stored id back to its object.
func (m *Map) RetrieveObject(id int32) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.byID[id]
	if !ok {
		return nil, ErrUnknownID{ID: id}
	}
	return obj, nil
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
