package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tastyhaat/internal/models"
)

const userColumns = `id, email, role, profile, created_at, updated_at`

type Users struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u    models.User
		id   string
		role string
	)
	if err := row.Scan(&id, &u.Email, &role, &u.Profile, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u.ID = oid
	u.Role = models.Role(role)
	return &u, nil
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	newID(&u.ID)

	profile := u.Profile
	if profile == nil {
		profile = map[string]any{}
	}

	query := `
		INSERT INTO users (id, email, role, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID.Hex(),
		u.Email,
		string(u.Role),
		profile,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *Users) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Update merges the profile patch into the stored jsonb document.
func (r *Users) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	var role *string
	if upd.Role != nil {
		s := string(*upd.Role)
		role = &s
	}

	profile := upd.Profile
	if profile == nil {
		profile = map[string]any{}
	}

	query := `
		UPDATE users SET
			email = COALESCE($2, email),
			role = COALESCE($3, role),
			profile = profile || $4::jsonb,
			updated_at = $5
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, id.Hex(), upd.Email, role, profile, upd.UpdatedAt))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *Users) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role, at time.Time) (*models.User, error) {
	query := `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1 RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, id.Hex(), string(role), at))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}
