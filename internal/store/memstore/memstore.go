// Package memstore keeps users, menus and orders in process memory. It backs
// local development and the handler tests.
package memstore

import (
	"bytes"
	"context"
	"maps"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	Users  *Users
	Menus  *Menus
	Orders *Orders
}

func New() *Store {
	return &Store{
		Users:  &Users{byID: make(map[primitive.ObjectID]*userRecord)},
		Menus:  &Menus{byID: make(map[primitive.ObjectID]*menuRecord)},
		Orders: &Orders{byID: make(map[primitive.ObjectID]*orderRecord)},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close(context.Context) error { return nil }

func assignID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

// sortedByID returns map values in insertion order; object ids grow
// monotonically within a process.
func sortedByID[T any](m map[primitive.ObjectID]*T) []primitive.ObjectID {
	ids := slices.Collect(maps.Keys(m))
	slices.SortFunc(ids, func(a, b primitive.ObjectID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}
