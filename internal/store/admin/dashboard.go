package admin

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/dates"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

type AdminRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewAdminRepository(db *store.DB, log *zap.Logger) *AdminRepository {
	return &AdminRepository{db: db, log: log}
}

// PeriodCounts holds booking creation counts for each window and the window before it.
type PeriodCounts struct {
	Today, Yesterday int
	Week, PrevWeek   int
	Month, PrevMonth int
}

// CancellationCounts is the cumulative total plus the last 30 days against the 30 before.
type CancellationCounts struct {
	Total    int
	Recent   int
	Previous int
}

type UpcomingStay struct {
	BookingID int64      `json:"booking_id"`
	GuestName string     `json:"guest_name"`
	RoomName  string     `json:"room_name"`
	HotelName string     `json:"hotel_name"`
	Date      dates.Date `json:"date"`
}

type PendingPayment struct {
	BookingID   int64      `json:"booking_id"`
	GuestName   string     `json:"guest_name"`
	RoomName    string     `json:"room_name"`
	CheckInDate dates.Date `json:"check_in_date"`
	TotalPrice  float64    `json:"total_price"`
	DaysPending int        `json:"days_pending"`
}

type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DailyRevenue struct {
	Date   dates.Date `json:"date"`
	Amount float64    `json:"amount"`
}

func (r *AdminRepository) PeriodCounts(ctx context.Context, today dates.Date) (PeriodCounts, error) {
	var p PeriodCounts
	err := r.db.Pool.QueryRow(ctx, `
		WITH b AS (SELECT (created_at AT TIME ZONE 'Asia/Kuala_Lumpur')::date AS day FROM bookings)
		SELECT
			COUNT(*) FILTER (WHERE day = $1::date),
			COUNT(*) FILTER (WHERE day = $1::date - 1),
			COUNT(*) FILTER (WHERE day > $1::date - 7 AND day <= $1::date),
			COUNT(*) FILTER (WHERE day > $1::date - 14 AND day <= $1::date - 7),
			COUNT(*) FILTER (WHERE day > $1::date - 30 AND day <= $1::date),
			COUNT(*) FILTER (WHERE day > $1::date - 60 AND day <= $1::date - 30)
		FROM b`, today.Time,
	).Scan(&p.Today, &p.Yesterday, &p.Week, &p.PrevWeek, &p.Month, &p.PrevMonth)
	return p, err
}

func (r *AdminRepository) Cancellations(ctx context.Context, today dates.Date) (CancellationCounts, error) {
	var c CancellationCounts
	err := r.db.Pool.QueryRow(ctx, `
		WITH b AS (
			SELECT (created_at AT TIME ZONE 'Asia/Kuala_Lumpur')::date AS day
			FROM bookings WHERE booking_status = $2
		)
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE day > $1::date - 30 AND day <= $1::date),
			COUNT(*) FILTER (WHERE day > $1::date - 60 AND day <= $1::date - 30)
		FROM b`, today.Time, string(bookings.StatusCancelled),
	).Scan(&c.Total, &c.Recent, &c.Previous)
	return c, err
}

// OccupiedRooms counts distinct rooms with an active stay covering day. The
// checkout day itself is not occupied.
func (r *AdminRepository) OccupiedRooms(ctx context.Context, day dates.Date) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT room_id)
		FROM bookings
		WHERE check_in_date <= $1 AND check_out_date > $1 AND booking_status = ANY($2)`,
		day.Time, bookings.ActiveStatuses,
	).Scan(&n)
	return n, err
}

func (r *AdminRepository) TotalRooms(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n)
	return n, err
}

func (r *AdminRepository) GrossRevenue(ctx context.Context) (float64, error) {
	var gross float64
	err := r.db.Pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::float8 FROM payments`).Scan(&gross)
	return gross, err
}

// DailyRevenue returns payment totals per day in [from, to]. Days without
// payments are absent.
func (r *AdminRepository) DailyRevenue(ctx context.Context, from, to dates.Date) ([]DailyRevenue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT (payment_date AT TIME ZONE 'Asia/Kuala_Lumpur')::date AS day, SUM(amount)::float8
		FROM payments
		WHERE (payment_date AT TIME ZONE 'Asia/Kuala_Lumpur')::date BETWEEN $1 AND $2
		GROUP BY day
		ORDER BY day`, from.Time, to.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		var day time.Time
		if err := rows.Scan(&day, &d.Amount); err != nil {
			return nil, err
		}
		d.Date = dates.FromTime(day)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *AdminRepository) upcoming(ctx context.Context, column string, from, to dates.Date, limit int) ([]UpcomingStay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT b.id, TRIM(b.first_name || ' ' || COALESCE(b.last_name, '')), r.room_name, h.name, b.`+column+`
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		JOIN hotels h ON h.id = r.hotel_id
		WHERE b.`+column+` BETWEEN $1 AND $2 AND b.booking_status = ANY($3)
		ORDER BY b.`+column+` ASC, b.id ASC
		LIMIT $4`, from.Time, to.Time, bookings.ActiveStatuses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []UpcomingStay{}
	for rows.Next() {
		var s UpcomingStay
		if err := rows.Scan(&s.BookingID, &s.GuestName, &s.RoomName, &s.HotelName, &s.Date.Time); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *AdminRepository) UpcomingCheckIns(ctx context.Context, from, to dates.Date, limit int) ([]UpcomingStay, error) {
	return r.upcoming(ctx, "check_in_date", from, to, limit)
}

func (r *AdminRepository) UpcomingCheckOuts(ctx context.Context, from, to dates.Date, limit int) ([]UpcomingStay, error) {
	return r.upcoming(ctx, "check_out_date", from, to, limit)
}

// PendingPayments lists unpaid bookings by soonest check-in. DaysPending is
// left for the caller to fill relative to its own today.
func (r *AdminRepository) PendingPayments(ctx context.Context, limit int) ([]PendingPayment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT b.id, TRIM(b.first_name || ' ' || COALESCE(b.last_name, '')), r.room_name, b.check_in_date, b.total_price::float8
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.booking_status = $1
		ORDER BY b.check_in_date ASC, b.id ASC
		LIMIT $2`, string(bookings.StatusPendingPayment), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PendingPayment{}
	for rows.Next() {
		var p PendingPayment
		if err := rows.Scan(&p.BookingID, &p.GuestName, &p.RoomName, &p.CheckInDate.Time, &p.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *AdminRepository) grouped(ctx context.Context, column string, since *dates.Date) ([]GroupCount, error) {
	var sinceArg *time.Time
	if since != nil {
		sinceArg = &since.Time
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+column+`, COUNT(b.id)
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		JOIN hotels h ON h.id = r.hotel_id
		WHERE $1::date IS NULL OR (b.created_at AT TIME ZONE 'Asia/Kuala_Lumpur')::date >= $1::date
		GROUP BY `+column+`
		ORDER BY COUNT(b.id) DESC, `+column+` ASC`, sinceArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GroupCount{}
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// BookingsByHotel counts bookings per hotel created on or after since; nil means all time.
func (r *AdminRepository) BookingsByHotel(ctx context.Context, since *dates.Date) ([]GroupCount, error) {
	return r.grouped(ctx, "h.name", since)
}

func (r *AdminRepository) BookingsByState(ctx context.Context, since *dates.Date) ([]GroupCount, error) {
	return r.grouped(ctx, "h.state", since)
}
