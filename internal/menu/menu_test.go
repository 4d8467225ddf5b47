package menu

import (
	"context"
	"encoding/json"
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

type recordedEvent struct {
	typ string
	key string
}

type recordingEmitter struct {
	events []recordedEvent
}

func (r *recordingEmitter) Emit(_ context.Context, eventType, key string, _ any) {
	r.events = append(r.events, recordedEvent{typ: eventType, key: key})
}

func setup(t *testing.T) (*fiber.App, *memstore.Menus, *recordingEmitter) {
	t.Helper()

	metrics, err := telemetry.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	tracer := tracenoop.NewTracerProvider().Tracer("test")
	menus := memstore.New().Menus
	emitter := &recordingEmitter{}
	uc := NewUseCase(menus, emitter, metrics, zap.NewNop(), tracer)

	app := fiber.New()
	NewController(uc, zap.NewNop(), tracer).Register(app)
	return app, menus, emitter
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestCreateMenuDefaults(t *testing.T) {
	app, menus, emitter := setup(t)

	status, raw := call(t, app, http.MethodPost, "/menus", `{"name":"Biryani","price":"10","postedBy":"Seller@B.com"}`)
	require.Equal(t, fiber.StatusCreated, status)
	res := decode[models.InsertResult](t, raw)
	assert.True(t, res.Acknowledged)

	id, err := primitive.ObjectIDFromHex(res.InsertedID)
	require.NoError(t, err)
	m, err := menus.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 10.0, m.Price)
	assert.Equal(t, "", m.Description)
	assert.Equal(t, "", m.Image)
	assert.True(t, m.IsAvailable)
	assert.Equal(t, "seller@b.com", m.PostedBy)
	assert.False(t, m.CreatedAt.IsZero())

	require.Len(t, emitter.events, 1)
	assert.Equal(t, recordedEvent{typ: "menu.created", key: res.InsertedID}, emitter.events[0])
}

func TestCreateMenuRequiresFields(t *testing.T) {
	bodies := []string{
		`{"price":10,"postedBy":"a@b.com"}`,
		`{"name":"x","postedBy":"a@b.com"}`,
		`{"name":"x","price":10}`,
		`{"name":"x","price":0,"postedBy":"a@b.com"}`,
		`{"name":"x","price":-3,"postedBy":"a@b.com"}`,
		`{"name":"  ","price":3,"postedBy":"a@b.com"}`,
	}

	for _, body := range bodies {
		app, menus, emitter := setup(t)

		status, raw := call(t, app, http.MethodPost, "/menus", body)
		assert.Equal(t, fiber.StatusBadRequest, status, body)
		assert.JSONEq(t, `{"error":"Name, price and postedBy required"}`, string(raw))

		all, err := menus.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.Empty(t, emitter.events)
	}
}

func TestCreateMenuRejectsNonNumericPrice(t *testing.T) {
	app, _, _ := setup(t)

	status, _ := call(t, app, http.MethodPost, "/menus", `{"name":"x","price":"ten","postedBy":"a@b.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListMenusByOwner(t *testing.T) {
	app, _, _ := setup(t)

	for _, body := range []string{
		`{"name":"first","price":5,"postedBy":"a@b.com"}`,
		`{"name":"other","price":5,"postedBy":"x@y.com"}`,
		`{"name":"second","price":6,"postedBy":"a@b.com"}`,
	} {
		status, _ := call(t, app, http.MethodPost, "/menus", body)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, raw := call(t, app, http.MethodGet, "/menus/user/a@b.com", "")
	require.Equal(t, fiber.StatusOK, status)
	owned := decode[[]models.Menu](t, raw)
	require.Len(t, owned, 2)
	assert.Equal(t, "second", owned[0].Name)

	status, raw = call(t, app, http.MethodGet, "/menus", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Menu](t, raw), 3)

	status, raw = call(t, app, http.MethodGet, "/menus/user/nobody@b.com", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestGetMenu(t *testing.T) {
	app, _, _ := setup(t)

	_, raw := call(t, app, http.MethodPost, "/menus", `{"name":"Dal","price":4.5,"postedBy":"a@b.com"}`)
	id := decode[models.InsertResult](t, raw).InsertedID

	status, raw := call(t, app, http.MethodGet, "/menus/"+id, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Dal", decode[models.Menu](t, raw).Name)

	status, raw = call(t, app, http.MethodGet, "/menus/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Menu not found"}`, string(raw))

	status, raw = call(t, app, http.MethodGet, "/menus/xyz", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Invalid ID"}`, string(raw))
}

func TestUpdateMenu(t *testing.T) {
	app, _, emitter := setup(t)

	_, raw := call(t, app, http.MethodPost, "/menus", `{"name":"Dal","price":4.5,"postedBy":"a@b.com","description":"yellow"}`)
	id := decode[models.InsertResult](t, raw).InsertedID

	status, raw := call(t, app, http.MethodPatch, "/menus/"+id, `{"price":"6.25","isAvailable":false,"postedBy":"evil@b.com"}`)
	require.Equal(t, fiber.StatusOK, status)
	m := decode[models.Menu](t, raw)
	assert.Equal(t, 6.25, m.Price)
	assert.False(t, m.IsAvailable)
	assert.Equal(t, "yellow", m.Description)
	assert.Equal(t, "a@b.com", m.PostedBy)
	assert.Equal(t, "menu.updated", emitter.events[len(emitter.events)-1].typ)

	status, _ = call(t, app, http.MethodPatch, "/menus/"+id, `{"price":0}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPatch, "/menus/"+primitive.NewObjectID().Hex(), `{"name":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeleteMenu(t *testing.T) {
	app, menus, _ := setup(t)

	_, raw := call(t, app, http.MethodPost, "/menus", `{"name":"Dal","price":4.5,"postedBy":"a@b.com"}`)
	id := decode[models.InsertResult](t, raw).InsertedID

	status, raw := call(t, app, http.MethodDelete, "/menus/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Menu not found"}`, string(raw))

	all, _ := menus.List(context.Background())
	assert.Len(t, all, 1)

	status, raw = call(t, app, http.MethodDelete, "/menus/"+id, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"message":"Menu deleted"}`, string(raw))

	status, _ = call(t, app, http.MethodDelete, "/menus/bad", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUseCaseUpdateStampsTime(t *testing.T) {
	metrics, err := telemetry.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	menus := memstore.New().Menus
	uc := NewUseCase(menus, nil, metrics, zap.NewNop(), tracenoop.NewTracerProvider().Tracer("test"))
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	m, err := uc.Create(context.Background(), Draft{Name: "Tea", Price: 1, PostedBy: "a@b.com"})
	require.NoError(t, err)

	later := fixed.Add(time.Hour)
	uc.now = func() time.Time { return later }
	name := "Chai"
	got, err := uc.Update(context.Background(), m.ID.Hex(), models.MenuUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Chai", got.Name)
	assert.Equal(t, fixed, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
}
