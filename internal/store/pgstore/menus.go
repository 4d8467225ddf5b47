package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tastyhaat/internal/models"
	"tastyhaat/internal/store"
)

const menuColumns = `id, name, price, description, image, is_available, posted_by, created_at, updated_at`

type Menus struct {
	pool *pgxpool.Pool
}

func scanMenu(row pgx.Row) (*models.Menu, error) {
	var (
		m  models.Menu
		id string
	)
	err := row.Scan(
		&id,
		&m.Name,
		&m.Price,
		&m.Description,
		&m.Image,
		&m.IsAvailable,
		&m.PostedBy,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.ID, err = parseID(id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Menus) Create(ctx context.Context, m *models.Menu) error {
	newID(&m.ID)

	query := `
		INSERT INTO menus (` + menuColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		m.ID.Hex(),
		m.Name,
		m.Price,
		m.Description,
		m.Image,
		m.IsAvailable,
		m.PostedBy,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create menu: %w", translate(err))
	}
	return nil
}

func (r *Menus) List(ctx context.Context) ([]models.Menu, error) {
	return r.query(ctx, `SELECT `+menuColumns+` FROM menus ORDER BY created_at, id`)
}

func (r *Menus) Get(ctx context.Context, id primitive.ObjectID) (*models.Menu, error) {
	m, err := scanMenu(r.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = $1`, id.Hex()))
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (r *Menus) ListByOwner(ctx context.Context, email string) ([]models.Menu, error) {
	return r.query(ctx, `SELECT `+menuColumns+` FROM menus WHERE posted_by = $1 ORDER BY created_at DESC, id DESC`, email)
}

func (r *Menus) Update(ctx context.Context, id primitive.ObjectID, upd models.MenuUpdate) (*models.Menu, error) {
	query := `
		UPDATE menus SET
			name = COALESCE($2, name),
			price = COALESCE($3, price),
			description = COALESCE($4, description),
			image = COALESCE($5, image),
			is_available = COALESCE($6, is_available),
			updated_at = $7
		WHERE id = $1
		RETURNING ` + menuColumns

	m, err := scanMenu(r.pool.QueryRow(ctx, query,
		id.Hex(),
		upd.Name,
		upd.Price,
		upd.Description,
		upd.Image,
		upd.IsAvailable,
		upd.UpdatedAt,
	))
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (r *Menus) Delete(ctx context.Context, id primitive.ObjectID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Menus) query(ctx context.Context, sql string, args ...any) ([]models.Menu, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	defer rows.Close()

	menus := make([]models.Menu, 0)
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		menus = append(menus, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menus: %w", err)
	}
	return menus, nil
}
