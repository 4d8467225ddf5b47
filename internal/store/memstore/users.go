package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tastyhaat/internal/models"
	"tastyhaat/internal/store"
)

type userRecord struct {
	user models.User
}

type Users struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]*userRecord
}

func cloneUser(u models.User) models.User {
	u.Profile = maps.Clone(u.Profile)
	return u
}

func (r *Users) emailTaken(email string, except primitive.ObjectID) bool {
	for id, rec := range r.byID {
		if id != except && rec.user.Email == email {
			return true
		}
	}
	return false
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(u.Email, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	assignID(&u.ID)
	r.byID[u.ID] = &userRecord{user: cloneUser(*u)}
	return nil
}

func (r *Users) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.byID))
	for _, id := range sortedByID(r.byID) {
		out = append(out, cloneUser(r.byID[id].user))
	}
	return out, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.byID {
		if rec.user.Email == email {
			u := cloneUser(rec.user)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Users) Update(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Email != nil && r.emailTaken(*upd.Email, id) {
		return nil, store.ErrDuplicate
	}

	u := cloneUser(rec.user)
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if len(upd.Profile) > 0 {
		if u.Profile == nil {
			u.Profile = make(map[string]any, len(upd.Profile))
		}
		maps.Copy(u.Profile, upd.Profile)
	}
	u.UpdatedAt = upd.UpdatedAt
	rec.user = u

	out := cloneUser(u)
	return &out, nil
}

func (r *Users) SetRole(_ context.Context, id primitive.ObjectID, role models.Role, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	rec.user.Role = role
	rec.user.UpdatedAt = at

	out := cloneUser(rec.user)
	return &out, nil
}
