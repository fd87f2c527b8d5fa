package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/dates"
	"github.com/seniorstay/staycation-api/internal/store"
)

var (
	ErrOverlap      = errors.New("room already booked for the requested dates")
	ErrRoomNotFound = errors.New("room not found")
)

type Booking struct {
	ID           int64         `json:"id"`
	UserID       *int64        `json:"user_id"`
	RoomID       int64         `json:"room_id"`
	RoomName     string        `json:"room_name,omitempty"`
	HotelName    string        `json:"hotel_name,omitempty"`
	CheckInDate  dates.Date    `json:"check_in_date"`
	CheckOutDate dates.Date    `json:"check_out_date"`
	NumGuests    int           `json:"num_guests"`
	TotalPrice   float64       `json:"total_price"`
	FirstName    string        `json:"first_name"`
	LastName     *string       `json:"last_name"`
	Email        *string       `json:"email"`
	PhoneNumber  string        `json:"phone_number"`
	Age          *int          `json:"age"`
	Message      *string       `json:"message"`
	Status       Status        `json:"booking_status"`
	CreatedAt    time.Time     `json:"created_at"`
	Services     []ServiceLine `json:"services"`
}

// ServiceLine is a priced add-on attached to a booking. Subtotal is the
// service price at booking time multiplied by quantity.
type ServiceLine struct {
	ID          int64   `json:"id"`
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type ServiceSelection struct {
	ServiceID int64
	Quantity  int
}

// Input carries every column written by a create or a full replace.
type Input struct {
	UserID      *int64
	RoomID      int64
	CheckIn     dates.Date
	CheckOut    dates.Date
	NumGuests   int
	TotalPrice  float64
	FirstName   string
	LastName    *string
	Email       *string
	PhoneNumber string
	Age         *int
	Message     *string
	Status      Status
	Services    []ServiceSelection
}

// Stay is the minimal projection returned by the overlap check.
type Stay struct {
	ID           int64      `json:"id"`
	RoomID       int64      `json:"room_id"`
	CheckInDate  dates.Date `json:"check_in_date"`
	CheckOutDate dates.Date `json:"check_out_date"`
	Status       Status     `json:"booking_status"`
}

type BookingsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewBookingsRepository(db *store.DB, log *zap.Logger) *BookingsRepository {
	return &BookingsRepository{db: db, log: log}
}

const insertBookingSQL = `
	INSERT INTO bookings (user_id, room_id, check_in_date, check_out_date, num_guests, total_price,
	                      first_name, last_name, email, phone_number, age, message, booking_status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING id`

const replaceBookingSQL = `
	UPDATE bookings
	SET room_id = $1, check_in_date = $2, check_out_date = $3, num_guests = $4, total_price = $5,
	    first_name = $6, last_name = $7, email = $8, phone_number = $9, age = $10, message = $11,
	    booking_status = COALESCE(NULLIF($12, ''), booking_status),
	    user_id = COALESCE($14, user_id)
	WHERE id = $13
	RETURNING id`

// insertLineSQL re-prices the line from the live services row. An unknown
// service id inserts nothing.
const insertLineSQL = `
	INSERT INTO service_bookings (booking_id, service_id, quantity, subtotal)
	SELECT $1, s.id, $2::int, s.price * $2::int
	FROM services s
	WHERE s.id = $3`

// Create inserts the booking and its service lines in one transaction.
// When strict is set the room row is locked and overlapping active stays are
// rejected with ErrOverlap.
func (r *BookingsRepository) Create(ctx context.Context, in Input, strict bool) (int64, error) {
	var id int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if strict {
			if err := checkRoomFree(ctx, tx, in, 0); err != nil {
				return err
			}
		}
		err := tx.QueryRow(ctx, insertBookingSQL,
			in.UserID, in.RoomID, in.CheckIn.Time, in.CheckOut.Time, in.NumGuests, in.TotalPrice,
			in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.Age, in.Message, string(in.Status),
		).Scan(&id)
		if err != nil {
			return err
		}
		return insertLines(ctx, tx, id, in.Services)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Replace overwrites every booking column and swaps the full set of service
// lines. Omitted optional fields become NULL; an empty status keeps the stored one
// and a nil UserID keeps the stored owner.
func (r *BookingsRepository) Replace(ctx context.Context, id int64, in Input, strict bool) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if strict {
			if err := checkRoomFree(ctx, tx, in, id); err != nil {
				return err
			}
		}
		var updated int64
		err := tx.QueryRow(ctx, replaceBookingSQL,
			in.RoomID, in.CheckIn.Time, in.CheckOut.Time, in.NumGuests, in.TotalPrice,
			in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.Age, in.Message, string(in.Status), id, in.UserID,
		).Scan(&updated)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM service_bookings WHERE booking_id = $1`, id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, in.Services)
	})
}

func insertLines(ctx context.Context, tx pgx.Tx, bookingID int64, lines []ServiceSelection) error {
	for _, l := range lines {
		qty := l.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, err := tx.Exec(ctx, insertLineSQL, bookingID, qty, l.ServiceID); err != nil {
			return err
		}
	}
	return nil
}

// checkRoomFree serializes bookings per room by locking the room row, then
// applies Overlaps to the room's active stays, ignoring the booking being replaced.
func checkRoomFree(ctx context.Context, tx pgx.Tx, in Input, ignoreID int64) error {
	var roomID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, in.RoomID).Scan(&roomID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, check_in_date, check_out_date
		FROM bookings
		WHERE room_id = $1 AND booking_status = ANY($2) AND id <> $3`,
		in.RoomID, ActiveStatuses, ignoreID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var checkIn, checkOut dates.Date
		if err := rows.Scan(&id, &checkIn.Time, &checkOut.Time); err != nil {
			return err
		}
		if Overlaps(checkIn, checkOut, in.CheckIn, in.CheckOut) {
			return ErrOverlap
		}
	}
	return rows.Err()
}

// Overlapping lists the room's bookings whose range intersects [checkIn, checkOut],
// earliest check-in first.
func (r *BookingsRepository) Overlapping(ctx context.Context, roomID int64, checkIn, checkOut dates.Date) ([]Stay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, room_id, check_in_date, check_out_date, booking_status
		FROM bookings
		WHERE room_id = $1 AND `+overlapPredicate+`
		ORDER BY check_in_date ASC`, roomID, checkIn.Time, checkOut.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stays := []Stay{}
	for rows.Next() {
		var s Stay
		var status string
		if err := rows.Scan(&s.ID, &s.RoomID, &s.CheckInDate.Time, &s.CheckOutDate.Time, &status); err != nil {
			return nil, err
		}
		s.Status = Status(status)
		stays = append(stays, s)
	}
	return stays, rows.Err()
}

const selectBookingSQL = `
	SELECT b.id, b.user_id, b.room_id, r.room_name, h.name, b.check_in_date, b.check_out_date,
	       b.num_guests, b.total_price, b.first_name, b.last_name, b.email, b.phone_number, b.age,
	       b.message, b.booking_status, b.created_at,
	       COALESCE(json_agg(json_build_object(
	           'id', sb.id, 'service_id', sb.service_id, 'service_name', s.name,
	           'quantity', sb.quantity, 'subtotal', sb.subtotal) ORDER BY sb.id)
	         FILTER (WHERE sb.id IS NOT NULL), '[]') AS services
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN hotels h ON h.id = r.hotel_id
	LEFT JOIN service_bookings sb ON sb.booking_id = b.id
	LEFT JOIN services s ON s.id = sb.service_id`

const groupBookingSQL = ` GROUP BY b.id, r.room_name, h.name`

func (r *BookingsRepository) List(ctx context.Context) ([]*Booking, error) {
	return r.query(ctx, selectBookingSQL+groupBookingSQL+` ORDER BY b.created_at DESC`)
}

func (r *BookingsRepository) ListByUser(ctx context.Context, userID int64) ([]*Booking, error) {
	return r.query(ctx, selectBookingSQL+` WHERE b.user_id = $1`+groupBookingSQL+` ORDER BY b.check_in_date DESC`, userID)
}

func (r *BookingsRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	list, err := r.query(ctx, selectBookingSQL+` WHERE b.id = $1`+groupBookingSQL, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (r *BookingsRepository) query(ctx context.Context, sql string, args ...any) ([]*Booking, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Booking{}
	for rows.Next() {
		b := &Booking{}
		var status string
		var services []byte
		err := rows.Scan(
			&b.ID, &b.UserID, &b.RoomID, &b.RoomName, &b.HotelName, &b.CheckInDate.Time, &b.CheckOutDate.Time,
			&b.NumGuests, &b.TotalPrice, &b.FirstName, &b.LastName, &b.Email, &b.PhoneNumber, &b.Age,
			&b.Message, &status, &b.CreatedAt, &services,
		)
		if err != nil {
			return nil, err
		}
		b.Status = Status(status)
		b.Services = []ServiceLine{}
		if len(services) > 0 {
			if err := json.Unmarshal(services, &b.Services); err != nil {
				return nil, err
			}
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *BookingsRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE bookings SET booking_status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes the booking; its service lines cascade.
func (r *BookingsRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
