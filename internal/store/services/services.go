package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

// Service is an a-la-carte add-on that can be attached to bookings.
type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	MaxQuantity int       `json:"max_quantity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

var ErrInUse = errors.New("service is attached to bookings, deactivate it instead")

type Input struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	MaxQuantity *int     `json:"max_quantity"`
	IsActive    *bool    `json:"is_active"`
}

func (in Input) Validate() error {
	switch {
	case store.Blank(in.Name):
		return store.MissingField("name")
	case in.Price == nil:
		return store.MissingField("price")
	}
	return nil
}

type ServicesRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewServicesRepository(db *store.DB, log *zap.Logger) *ServicesRepository {
	return &ServicesRepository{db: db, log: log}
}

const selectServiceSQL = `
	SELECT id, name, description, price::float8, max_quantity, is_active, created_at
	FROM services`

func scanService(row pgx.Row) (*Service, error) {
	s := &Service{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.MaxQuantity, &s.IsActive, &s.CreatedAt)
	return s, err
}

// List returns active services, or every service when includeInactive is set.
func (r *ServicesRepository) List(ctx context.Context, includeInactive bool) ([]*Service, error) {
	query := selectServiceSQL
	if !includeInactive {
		query += ` WHERE is_active`
	}
	rows, err := r.db.Pool.Query(ctx, query+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *ServicesRepository) Get(ctx context.Context, id int64) (*Service, error) {
	s, err := scanService(r.db.Pool.QueryRow(ctx, selectServiceSQL+` WHERE id = $1`, id))
	if err != nil {
		return nil, store.MapError(err)
	}
	return s, nil
}

func (r *ServicesRepository) Create(ctx context.Context, in Input) (int64, error) {
	maxQty := 1
	if in.MaxQuantity != nil && *in.MaxQuantity > 0 {
		maxQty = *in.MaxQuantity
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	var id int64
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO services (name, description, price, max_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, in.Name, in.Description, in.Price, maxQty, active,
	).Scan(&id)
	return id, store.MapError(err)
}

// Update applies the non-nil fields of in. Existing service lines keep their
// snapshotted subtotal.
func (r *ServicesRepository) Update(ctx context.Context, id int64, in Input) error {
	var updated int64
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE services
		SET name = COALESCE($1, name), description = COALESCE($2, description),
		    price = COALESCE($3, price), max_quantity = COALESCE($4, max_quantity),
		    is_active = COALESCE($5, is_active)
		WHERE id = $6
		RETURNING id`, in.Name, in.Description, in.Price, in.MaxQuantity, in.IsActive, id,
	).Scan(&updated)
	return store.MapError(err)
}

// Deactivate hides the service from the default listing.
func (r *ServicesRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE services SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete hard-deletes the service. Services referenced by booking lines
// cannot be deleted and return ErrInUse.
func (r *ServicesRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
