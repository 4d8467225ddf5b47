package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tastyhaat/internal/models"
)

type orderRecord struct {
	order models.Order
}

type Orders struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]*orderRecord
}

func (r *Orders) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignID(&o.ID)
	r.byID[o.ID] = &orderRecord{order: *o}
	return nil
}

func (r *Orders) List(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r *Orders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *Orders) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, id := range sortedByID(r.byID) {
		if o := r.byID[id].order; keep(o) {
			out = append(out, o)
		}
	}
	return out
}
