package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tastyhaat/internal/models"
)

const orderColumns = `id, user_id, username, email, menu_id, menu_name, price, quantity, status, created_at`

type Orders struct {
	pool *pgxpool.Pool
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o  models.Order
		id string
	)
	err := row.Scan(
		&id,
		&o.UserID,
		&o.Username,
		&o.Email,
		&o.MenuID,
		&o.MenuName,
		&o.Price,
		&o.Quantity,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.ID, err = parseID(id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Orders) Create(ctx context.Context, o *models.Order) error {
	newID(&o.ID)

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		o.ID.Hex(),
		o.UserID,
		o.Username,
		o.Email,
		o.MenuID,
		o.MenuName,
		o.Price,
		o.Quantity,
		o.Status,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

func (r *Orders) List(ctx context.Context) ([]models.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, id`)
}

func (r *Orders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (r *Orders) query(ctx context.Context, sql string, args ...any) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}
