package hotels

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

type Hotel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Town        string    `json:"town"`
	State       string    `json:"state"`
	Address     *string   `json:"address"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Description *string   `json:"description"`
	Tags        []string  `json:"tags"`
	VideoURL    *string   `json:"video_url"`
	RoomCount   int       `json:"room_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input is used for create and partial update; nil fields keep the stored value on update.
type Input struct {
	Name        *string  `json:"name"`
	Town        *string  `json:"town"`
	State       *string  `json:"state"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	VideoURL    *string  `json:"video_url"`
}

// Validate checks the fields required to create a hotel.
func (in Input) Validate() error {
	switch {
	case store.Blank(in.Name):
		return store.MissingField("name")
	case store.Blank(in.Town):
		return store.MissingField("town")
	case store.Blank(in.State):
		return store.MissingField("state")
	}
	return nil
}

type Filter struct {
	Q     string
	State string
}

type HotelsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewHotelsRepository(db *store.DB, log *zap.Logger) *HotelsRepository {
	return &HotelsRepository{db: db, log: log}
}

const selectHotelSQL = `
	SELECT h.id, h.name, h.town, h.state, h.address, h.latitude, h.longitude, h.description,
	       h.tags, h.video_url, h.created_at,
	       (SELECT COUNT(*) FROM rooms r WHERE r.hotel_id = h.id) AS room_count
	FROM hotels h`

func scanHotel(row pgx.Row) (*Hotel, error) {
	h := &Hotel{}
	var tags []byte
	err := row.Scan(&h.ID, &h.Name, &h.Town, &h.State, &h.Address, &h.Latitude, &h.Longitude,
		&h.Description, &tags, &h.VideoURL, &h.CreatedAt, &h.RoomCount)
	if err != nil {
		return nil, err
	}
	h.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &h.Tags); err != nil {
			return nil, fmt.Errorf("decode hotel %d tags: %w", h.ID, err)
		}
	}
	return h, nil
}

// tagsArg encodes tags for a JSONB column. A nil slice yields NULL.
func tagsArg(tags []string) ([]byte, error) {
	if tags == nil {
		return nil, nil
	}
	return json.Marshal(tags)
}

func (r *HotelsRepository) List(ctx context.Context, f Filter) ([]*Hotel, error) {
	query := selectHotelSQL + ` WHERE 1=1`
	args := []any{}

	if f.Q != "" {
		args = append(args, "%"+f.Q+"%")
		query += fmt.Sprintf(` AND (h.name ILIKE $%d OR h.town ILIKE $%d)`, len(args), len(args))
	}
	if f.State != "" {
		args = append(args, f.State)
		query += fmt.Sprintf(` AND LOWER(h.state) = LOWER($%d)`, len(args))
	}
	query += ` ORDER BY h.name ASC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

func (r *HotelsRepository) Get(ctx context.Context, id int64) (*Hotel, error) {
	h, err := scanHotel(r.db.Pool.QueryRow(ctx, selectHotelSQL+` WHERE h.id = $1`, id))
	if err != nil {
		return nil, store.MapError(err)
	}
	return h, nil
}

func (r *HotelsRepository) Create(ctx context.Context, in Input) (int64, error) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	tags, err := tagsArg(in.Tags)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO hotels (name, town, state, address, latitude, longitude, description, tags, video_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		in.Name, in.Town, in.State, in.Address, in.Latitude, in.Longitude, in.Description, tags, in.VideoURL,
	).Scan(&id)
	return id, store.MapError(err)
}

// Update applies the non-nil fields of in.
func (r *HotelsRepository) Update(ctx context.Context, id int64, in Input) error {
	tags, err := tagsArg(in.Tags)
	if err != nil {
		return err
	}
	var updated int64
	err = r.db.Pool.QueryRow(ctx, `
		UPDATE hotels
		SET name = COALESCE($1, name), town = COALESCE($2, town), state = COALESCE($3, state),
		    address = COALESCE($4, address), latitude = COALESCE($5, latitude),
		    longitude = COALESCE($6, longitude), description = COALESCE($7, description),
		    tags = COALESCE($8, tags), video_url = COALESCE($9, video_url)
		WHERE id = $10
		RETURNING id`,
		in.Name, in.Town, in.State, in.Address, in.Latitude, in.Longitude, in.Description, tags, in.VideoURL, id,
	).Scan(&updated)
	return store.MapError(err)
}

// Delete removes the hotel; its rooms cascade.
func (r *HotelsRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
