package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

var Categories = []string{"Standard", "Premium", "Budget"}

// ValidCategory reports whether c is one of Categories, case-sensitively.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// RoomFeatures is the JSONB room_features column.
type RoomFeatures struct {
	Regions          []string `json:"regions"`
	Features         []string `json:"features"`
	Categories       []string `json:"categories"`
	RentalCategories []string `json:"rentalCategories"`
}

func (f RoomFeatures) normalized() RoomFeatures {
	for _, l := range []*[]string{&f.Regions, &f.Features, &f.Categories, &f.RentalCategories} {
		if *l == nil {
			*l = []string{}
		}
	}
	return f
}

type Room struct {
	ID                 int64        `json:"id"`
	HotelID            int64        `json:"hotel_id"`
	HotelName          string       `json:"hotel_name"`
	RoomNumber         string       `json:"room_number"`
	RoomName           string       `json:"room_name"`
	Category           string       `json:"category"`
	Rate               float64      `json:"rate"`
	MaxGuests          int          `json:"max_guests"`
	AvailabilityStatus bool         `json:"availability_status"`
	RoomFeatures       RoomFeatures `json:"room_features"`
	Images             []string     `json:"images"`
	Rating             *float64     `json:"rating"`
	CreatedAt          time.Time    `json:"created_at"`
}

// Input is used for create and partial update; nil fields keep the stored value on update.
type Input struct {
	HotelID            *int64        `json:"hotel_id"`
	RoomNumber         *string       `json:"room_number"`
	RoomName           *string       `json:"room_name"`
	Category           *string       `json:"category"`
	Rate               *float64      `json:"rate"`
	MaxGuests          *int          `json:"max_guests"`
	AvailabilityStatus *bool         `json:"availability_status"`
	RoomFeatures       *RoomFeatures `json:"room_features"`
	Images             []string      `json:"images"`
	Rating             *float64      `json:"rating"`
}

var ErrInvalidCategory = fmt.Errorf("invalid category, expected one of %v", Categories)

// Validate checks the fields required to create a room.
func (in Input) Validate() error {
	switch {
	case in.HotelID == nil || *in.HotelID == 0:
		return store.MissingField("hotel_id")
	case store.Blank(in.RoomNumber):
		return store.MissingField("room_number")
	case store.Blank(in.RoomName):
		return store.MissingField("room_name")
	case store.Blank(in.Category):
		return store.MissingField("category")
	case in.Rate == nil:
		return store.MissingField("rate")
	case in.MaxGuests == nil || *in.MaxGuests == 0:
		return store.MissingField("max_guests")
	}
	return in.ValidateCategory()
}

// ValidateCategory checks the category when one is supplied.
func (in Input) ValidateCategory() error {
	if in.Category != nil && !ValidCategory(*in.Category) {
		return ErrInvalidCategory
	}
	return nil
}

type Filter struct {
	HotelID  int64
	Category string
	Q        string
	Guests   int
}

type RoomsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewRoomsRepository(db *store.DB, log *zap.Logger) *RoomsRepository {
	return &RoomsRepository{db: db, log: log}
}

const selectRoomSQL = `
	SELECT r.id, r.hotel_id, h.name, r.room_number, r.room_name, r.category, r.rate::float8, r.max_guests,
	       r.availability_status, r.room_features, r.images, r.rating::float8, r.created_at
	FROM rooms r
	JOIN hotels h ON h.id = r.hotel_id`

func scanRoom(row pgx.Row) (*Room, error) {
	rm := &Room{}
	var features, images []byte
	err := row.Scan(&rm.ID, &rm.HotelID, &rm.HotelName, &rm.RoomNumber, &rm.RoomName, &rm.Category,
		&rm.Rate, &rm.MaxGuests, &rm.AvailabilityStatus, &features, &images, &rm.Rating, &rm.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &rm.RoomFeatures); err != nil {
			return nil, fmt.Errorf("decode room %d features: %w", rm.ID, err)
		}
	}
	rm.RoomFeatures = rm.RoomFeatures.normalized()
	rm.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &rm.Images); err != nil {
			return nil, fmt.Errorf("decode room %d images: %w", rm.ID, err)
		}
	}
	return rm, nil
}

// jsonArgs encodes the JSONB inputs. Nil inputs yield NULL.
func jsonArgs(features *RoomFeatures, images []string) ([]byte, []byte, error) {
	var f, i []byte
	var err error
	if features != nil {
		if f, err = json.Marshal(features.normalized()); err != nil {
			return nil, nil, err
		}
	}
	if images != nil {
		if i, err = json.Marshal(images); err != nil {
			return nil, nil, err
		}
	}
	return f, i, nil
}

func (r *RoomsRepository) List(ctx context.Context, f Filter) ([]*Room, error) {
	query := selectRoomSQL + ` WHERE 1=1`
	args := []any{}

	if f.HotelID > 0 {
		args = append(args, f.HotelID)
		query += fmt.Sprintf(` AND r.hotel_id = $%d`, len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(` AND r.category = $%d`, len(args))
	}
	if f.Q != "" {
		args = append(args, "%"+f.Q+"%")
		query += fmt.Sprintf(` AND (r.room_name ILIKE $%d OR h.name ILIKE $%d OR h.town ILIKE $%d)`, len(args), len(args), len(args))
	}
	if f.Guests > 0 {
		args = append(args, f.Guests)
		query += fmt.Sprintf(` AND r.max_guests >= $%d`, len(args))
	}
	query += ` ORDER BY r.hotel_id ASC, r.room_number ASC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rm)
	}
	return list, rows.Err()
}

func (r *RoomsRepository) Get(ctx context.Context, id int64) (*Room, error) {
	rm, err := scanRoom(r.db.Pool.QueryRow(ctx, selectRoomSQL+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, store.MapError(err)
	}
	return rm, nil
}

func (r *RoomsRepository) Create(ctx context.Context, in Input) (int64, error) {
	if in.RoomFeatures == nil {
		in.RoomFeatures = &RoomFeatures{}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	available := true
	if in.AvailabilityStatus != nil {
		available = *in.AvailabilityStatus
	}
	features, images, err := jsonArgs(in.RoomFeatures, in.Images)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO rooms (hotel_id, room_number, room_name, category, rate, max_guests,
		                   availability_status, room_features, images, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		in.HotelID, in.RoomNumber, in.RoomName, in.Category, in.Rate, in.MaxGuests,
		available, features, images, in.Rating,
	).Scan(&id)
	return id, store.MapError(err)
}

// Update applies the non-nil fields of in.
func (r *RoomsRepository) Update(ctx context.Context, id int64, in Input) error {
	features, images, err := jsonArgs(in.RoomFeatures, in.Images)
	if err != nil {
		return err
	}
	var updated int64
	err = r.db.Pool.QueryRow(ctx, `
		UPDATE rooms
		SET hotel_id = COALESCE($1, hotel_id), room_number = COALESCE($2, room_number),
		    room_name = COALESCE($3, room_name), category = COALESCE($4, category),
		    rate = COALESCE($5, rate), max_guests = COALESCE($6, max_guests),
		    availability_status = COALESCE($7, availability_status),
		    room_features = COALESCE($8, room_features), images = COALESCE($9, images),
		    rating = COALESCE($10, rating)
		WHERE id = $11
		RETURNING id`,
		in.HotelID, in.RoomNumber, in.RoomName, in.Category, in.Rate, in.MaxGuests,
		in.AvailabilityStatus, features, images, in.Rating, id,
	).Scan(&updated)
	return store.MapError(err)
}

func (r *RoomsRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
