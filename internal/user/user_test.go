package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"tastyhaat/internal/models"
	"tastyhaat/internal/store/memstore"
	"tastyhaat/internal/telemetry"
)

func newTestApp(t *testing.T, s Store) *fiber.App {
	t.Helper()

	metrics, err := telemetry.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	tracer := tracenoop.NewTracerProvider().Tracer("test")
	uc := NewUseCase(s, nil, metrics, zap.NewNop(), tracer)

	app := fiber.New(fiber.Config{UnescapePath: true})
	NewController(uc, zap.NewNop(), tracer).Register(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestCreateUser(t *testing.T) {
	s := memstore.New()
	app := newTestApp(t, s.Users)

	status, body := do(t, app, http.MethodPost, "/users", `{"email":" A@B.com ","name":"Ann","photoURL":"x.png"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["acknowledged"])
	assert.Len(t, body["insertedId"], 24)

	u, err := s.Users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "Ann", u.Profile["name"])
	assert.False(t, u.CreatedAt.IsZero())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := memstore.New()
	app := newTestApp(t, s.Users)

	status, _ := do(t, app, http.MethodPost, "/users", `{"email":"a@b.com"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := do(t, app, http.MethodPost, "/users", `{"email":"A@b.com","name":"again"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "User already exists", body["error"])

	users, err := s.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing email", `{"name":"x"}`, "Email is required"},
		{"bad role", `{"email":"a@b.com","role":"Admin"}`, "Invalid role provided"},
		{"operator key", `{"email":"a@b.com","$set":{"role":"admin"}}`, `invalid field name: "$set"`},
		{"dotted key", `{"email":"a@b.com","a.b":1}`, `invalid field name: "a.b"`},
		{"not json", `nope`, "invalid body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memstore.New()
			app := newTestApp(t, s.Users)

			status, body := do(t, app, http.MethodPost, "/users", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.want, body["error"])

			users, _ := s.Users.List(context.Background())
			assert.Empty(t, users)
		})
	}
}

func TestCreateUserWithRole(t *testing.T) {
	s := memstore.New()
	app := newTestApp(t, s.Users)

	status, _ := do(t, app, http.MethodPost, "/users", `{"email":"s@b.com","role":"seller"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := do(t, app, http.MethodGet, "/users/s@b.com/role", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "seller", body["role"])
}

func TestRoleDefaultsForUnknownEmail(t *testing.T) {
	app := newTestApp(t, memstore.New().Users)

	status, body := do(t, app, http.MethodGet, "/users/ghost@b.com/role", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"role": "user"}, body)
}

type failingStore struct {
	Store
}

func (failingStore) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection reset")
}

func TestRoleDefaultsOnStoreError(t *testing.T) {
	app := newTestApp(t, failingStore{Store: memstore.New().Users})

	status, body := do(t, app, http.MethodGet, "/users/a@b.com/role", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user", body["role"])
}

func TestGetUser(t *testing.T) {
	s := memstore.New()
	app := newTestApp(t, s.Users)
	do(t, app, http.MethodPost, "/users", `{"email":"a@b.com","name":"Ann"}`)

	status, body := do(t, app, http.MethodGet, "/users/a%40b.com", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "Ann", body["name"])
	assert.Equal(t, "user", body["role"])

	status, body = do(t, app, http.MethodGet, "/users/nobody@b.com", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "User not found", body["error"])
}

func TestUpdateUser(t *testing.T) {
	s := memstore.New()
	app := newTestApp(t, s.Users)
	do(t, app, http.MethodPost, "/users", `{"email":"a@b.com","name":"Ann"}`)
	do(t, app, http.MethodPost, "/users", `{"email":"c@d.com"}`)

	u, err := s.Users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	path := "/users/" + u.ID.Hex()

	status, body := do(t, app, http.MethodPut, path, `{"phone":"123","_id":"ignored","createdAt":"ignored"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ann", body["name"])
	assert.Equal(t, "123", body["phone"])
	assert.Equal(t, u.ID.Hex(), body["_id"])

	status, body = do(t, app, http.MethodPut, path, `{"email":"C@d.com"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "User already exists", body["error"])

	status, _ = do(t, app, http.MethodPut, path, `{"role":"root"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, path, `{"$unset":{"email":1}}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, http.MethodPut, "/users/not-an-id", `{"phone":"1"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid user ID", body["error"])

	status, _ = do(t, app, http.MethodPut, "/users/"+primitive.NewObjectID().Hex(), `{"phone":"1"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSetRole(t *testing.T) {
	s := memstore.New()
	app := newTestApp(t, s.Users)
	do(t, app, http.MethodPost, "/users", `{"email":"a@b.com"}`)

	u, err := s.Users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	status, body := do(t, app, http.MethodPatch, "/users/"+u.ID.Hex()+"/role", `{"role":" seller "}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User role updated successfully", body["message"])
	assert.Equal(t, "seller", body["user"].(map[string]any)["role"])

	status, body = do(t, app, http.MethodPatch, "/users/"+primitive.NewObjectID().Hex()+"/role", `{"role":"admin"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "User not found", body["error"])

	status, body = do(t, app, http.MethodPatch, "/users/garbage/role", `{"role":"admin"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid user ID", body["error"])
}

func TestSetRoleRejectsRoleBeforeID(t *testing.T) {
	for _, path := range []string{"/users/garbage/role", "/users/" + primitive.NewObjectID().Hex() + "/role"} {
		app := newTestApp(t, memstore.New().Users)

		status, body := do(t, app, http.MethodPatch, path, `{"role":"superuser"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Invalid role provided", body["error"])
	}
}

func TestListUsersEmpty(t *testing.T) {
	app := newTestApp(t, memstore.New().Users)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestUseCaseStampsTimes(t *testing.T) {
	metrics, err := telemetry.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	s := memstore.New()
	uc := NewUseCase(s.Users, nil, metrics, zap.NewNop(), tracenoop.NewTracerProvider().Tracer("test"))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	u, err := uc.Create(context.Background(), map[string]any{"email": "a@b.com", "updatedAt": "x"})
	require.NoError(t, err)
	assert.Equal(t, fixed, u.CreatedAt)
	assert.Equal(t, fixed, u.UpdatedAt)
	assert.NotContains(t, u.Profile, "updatedAt")
}
