package memstore

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tastyhaat/internal/models"
	"tastyhaat/internal/store"
)

type menuRecord struct {
	menu models.Menu
}

type Menus struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]*menuRecord
}

func (r *Menus) Create(_ context.Context, m *models.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignID(&m.ID)
	r.byID[m.ID] = &menuRecord{menu: *m}
	return nil
}

func (r *Menus) List(_ context.Context) ([]models.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Menu, 0, len(r.byID))
	for _, id := range sortedByID(r.byID) {
		out = append(out, r.byID[id].menu)
	}
	return out, nil
}

func (r *Menus) Get(_ context.Context, id primitive.ObjectID) (*models.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m := rec.menu
	return &m, nil
}

// ListByOwner returns the owner's items newest first.
func (r *Menus) ListByOwner(_ context.Context, email string) ([]models.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Menu, 0)
	for _, id := range sortedByID(r.byID) {
		if m := r.byID[id].menu; m.PostedBy == email {
			out = append(out, m)
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (r *Menus) Update(_ context.Context, id primitive.ObjectID, upd models.MenuUpdate) (*models.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	m := &rec.menu
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Price != nil {
		m.Price = *upd.Price
	}
	if upd.Description != nil {
		m.Description = *upd.Description
	}
	if upd.Image != nil {
		m.Image = *upd.Image
	}
	if upd.IsAvailable != nil {
		m.IsAvailable = *upd.IsAvailable
	}
	m.UpdatedAt = upd.UpdatedAt

	out := *m
	return &out, nil
}

func (r *Menus) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
