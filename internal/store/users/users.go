package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	Role         string    `json:"role"`
	Favourites   []int64   `json:"favourites"`
	CreatedAt    time.Time `json:"created_at"`
}

// Update holds the profile fields a PUT may change; nil keeps the stored value.
type Update struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Phone        *string
	Address      *string
	Role         *string
}

type UsersRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewUsersRepository(db *store.DB, log *zap.Logger) *UsersRepository {
	return &UsersRepository{db: db, log: log}
}

const selectUserSQL = `
	SELECT id, email, username, password_hash, phone, address, role, favourites, created_at
	FROM users`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	var favs []byte
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Phone, &u.Address, &u.Role, &favs, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Favourites, err = decodeFavourites(favs)
	if err != nil {
		return nil, fmt.Errorf("decode user %d favourites: %w", u.ID, err)
	}
	return u, nil
}

func decodeFavourites(raw []byte) ([]int64, error) {
	favs := []int64{}
	if len(raw) == 0 {
		return favs, nil
	}
	if err := json.Unmarshal(raw, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// Create inserts the user. A duplicate email returns store.ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, u *User) (*User, error) {
	if u.Role == "" {
		u.Role = "user"
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, phone, address, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		u.Email, u.Username, u.PasswordHash, u.Phone, u.Address, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, store.MapError(err)
	}
	u.Favourites = []int64{}
	return u, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id))
	if err != nil {
		return nil, store.MapError(err)
	}
	return u, nil
}

// GetByEmail matches case-insensitively.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, selectUserSQL+` WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, store.MapError(err)
	}
	return u, nil
}

// Role returns the stored role, used to re-check admin tokens.
func (r *UsersRepository) Role(ctx context.Context, id int64) (string, error) {
	var role string
	err := r.db.Pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	return role, store.MapError(err)
}

func (r *UsersRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.Pool.Query(ctx, selectUserSQL+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *UsersRepository) Update(ctx context.Context, id int64, in Update) error {
	var updated int64
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE users
		SET email = COALESCE($1, email), username = COALESCE($2, username),
		    password_hash = COALESCE($3, password_hash), phone = COALESCE($4, phone),
		    address = COALESCE($5, address), role = COALESCE($6, role)
		WHERE id = $7
		RETURNING id`,
		in.Email, in.Username, in.PasswordHash, in.Phone, in.Address, in.Role, id,
	).Scan(&updated)
	return store.MapError(err)
}

func (r *UsersRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *UsersRepository) Favourites(ctx context.Context, id int64) ([]int64, error) {
	var raw []byte
	if err := r.db.Pool.QueryRow(ctx, `SELECT favourites FROM users WHERE id = $1`, id).Scan(&raw); err != nil {
		return nil, store.MapError(err)
	}
	return decodeFavourites(raw)
}

// UpdateFavourites applies fn to the stored list under a row lock and
// persists the result, so concurrent edits of the same user serialize.
func (r *UsersRepository) UpdateFavourites(ctx context.Context, id int64, fn func([]int64) []int64) ([]int64, error) {
	var result []int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var raw []byte
		if err := tx.QueryRow(ctx, `SELECT favourites FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&raw); err != nil {
			return store.MapError(err)
		}
		current, err := decodeFavourites(raw)
		if err != nil {
			return err
		}
		result = fn(current)
		encoded, err := json.Marshal(result)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE users SET favourites = $1 WHERE id = $2`, encoded, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
