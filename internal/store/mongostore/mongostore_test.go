package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tastyhaat/internal/models"
	"tastyhaat/internal/store"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database := fmt.Sprintf("tastyhaat_test_%d", time.Now().UnixNano())
	s, err := New(ctx, uri, database)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.client.Database(database).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestUsersRoundTripProfile(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	u := &models.User{
		Email:     "a@b.com",
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
		Profile:   map[string]any{"name": "A", "photoURL": "p.png"},
	}
	require.NoError(t, s.Users.Create(ctx, u))

	got, err := s.Users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "A", got.Profile["name"])
	assert.Equal(t, now, got.CreatedAt.UTC())

	err = s.Users.Create(ctx, &models.User{Email: "a@b.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.Users.GetByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersShareExistingCollections(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Users.Create(ctx, &models.User{
		Email: "c@d.com", Role: models.RoleUser, CreatedAt: now, UpdatedAt: now,
		Profile: map[string]any{"name": "C"},
	}))

	db := s.Users.coll.Database()
	n, err := db.Collection("user").CountDocuments(ctx, bson.M{"email": "c@d.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, "menus", s.Menus.coll.Name())
	assert.Equal(t, "orders", s.Orders.coll.Name())
}

func TestUsersUpdateAndSetRole(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "a@b.com", Role: models.RoleUser, Profile: map[string]any{"name": "A"}}
	require.NoError(t, s.Users.Create(ctx, u))

	got, err := s.Users.Update(ctx, u.ID, models.UserUpdate{
		Profile:   map[string]any{"phone": "123"},
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Profile["name"])
	assert.Equal(t, "123", got.Profile["phone"])

	got, err = s.Users.SetRole(ctx, u.ID, models.RoleSeller, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, got.Role)

	_, err = s.Users.SetRole(ctx, primitive.NewObjectID(), models.RoleAdmin, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMenusAndOrders(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, name := range []string{"old", "new"} {
		m := &models.Menu{Name: name, Price: 10, PostedBy: "a@b.com", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, s.Menus.Create(ctx, m))
	}

	owned, err := s.Menus.ListByOwner(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "new", owned[0].Name)

	require.NoError(t, s.Menus.Delete(ctx, owned[0].ID))
	assert.ErrorIs(t, s.Menus.Delete(ctx, owned[0].ID), store.ErrNotFound)

	require.NoError(t, s.Orders.Create(ctx, &models.Order{UserID: "u1", MenuID: owned[1].ID.Hex(), Price: 10, Quantity: 1, CreatedAt: base}))
	orders, err := s.Orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	none, err := s.Orders.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
