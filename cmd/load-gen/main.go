package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"tastyhaat/internal/config"
	"tastyhaat/internal/models"
	"tastyhaat/internal/telemetry"
)

var dishes = []struct {
	name  string
	price float64
}{
	{"Chicken Biryani", 10},
	{"Beef Tehari", 8.5},
	{"Fuchka", 2.25},
	{"Mutton Kacchi", 14.99},
	{"Mango Lassi", 3},
}

func apiAddr() string {
	if v := os.Getenv("API_ADDR"); v != "" {
		return v
	}
	return "http://localhost:3000"
}

func interval() time.Duration {
	if v := os.Getenv("INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 2 * time.Second
}

type runner struct {
	addr   string
	client *http.Client
	log    *zap.Logger
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config.LoadDotEnv()

	log, _, _, shutdown, err := telemetry.Setup(ctx, "load-gen")
	if err != nil {
		panic("failed to initialize telemetry: " + err.Error())
	}
	defer shutdown(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down load-gen...")
		cancel()
	}()

	r := &runner{addr: apiAddr(), client: &http.Client{Timeout: 5 * time.Second}, log: log}
	every := interval()

	log.Info("load-gen started",
		zap.String("target", r.addr),
		zap.Duration("interval", every),
	)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.checkoutFlow(ctx); err != nil {
				log.Warn("flow failed", zap.Error(err))
			}
		}
	}
}

// checkoutFlow signs up a buyer and a seller, posts a dish, orders it and
// reads the order back.
func (r *runner) checkoutFlow(ctx context.Context) error {
	suffix := uuid.NewString()[:8]
	buyer := fmt.Sprintf("buyer-%s@load.test", suffix)
	seller := fmt.Sprintf("seller-%s@load.test", suffix)
	dish := dishes[rand.IntN(len(dishes))]

	buyerID, err := r.insert(ctx, "/users", map[string]any{"email": buyer, "name": "Buyer " + suffix})
	if err != nil {
		return fmt.Errorf("create buyer: %w", err)
	}
	if _, err := r.insert(ctx, "/users", map[string]any{"email": seller, "role": "seller"}); err != nil {
		return fmt.Errorf("create seller: %w", err)
	}

	menuID, err := r.insert(ctx, "/menus", map[string]any{
		"name":     dish.name,
		"price":    dish.price,
		"postedBy": seller,
	})
	if err != nil {
		return fmt.Errorf("create menu: %w", err)
	}

	quantity := 1 + rand.IntN(3)
	if _, err := r.insert(ctx, "/orders", map[string]any{
		"userId":   buyerID,
		"email":    buyer,
		"menuId":   menuID,
		"menuName": dish.name,
		"price":    dish.price,
		"quantity": quantity,
	}); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	var orders []models.Order
	if err := r.do(ctx, http.MethodGet, "/orders/user/"+buyerID, nil, http.StatusOK, &orders); err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	r.log.Info("flow completed",
		zap.String("buyer_id", buyerID),
		zap.String("menu_id", menuID),
		zap.String("dish", dish.name),
		zap.Int("quantity", quantity),
		zap.Int("orders", len(orders)),
	)
	return nil
}

func (r *runner) insert(ctx context.Context, path string, body any) (string, error) {
	var res models.InsertResult
	if err := r.do(ctx, http.MethodPost, path, body, http.StatusCreated, &res); err != nil {
		return "", err
	}
	return res.InsertedID, nil
}

func (r *runner) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.addr+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
