package admin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seniorstay/staycation-api/internal/dates"
	"github.com/seniorstay/staycation-api/internal/metrics"
	"github.com/seniorstay/staycation-api/internal/store/admin"
)

const (
	upcomingWindowDays = 3
	panelLimit         = 5
	revenueSeriesDays  = 30
	netShare           = 0.9
)

var ErrInvalidFilter = errors.New("invalid filter")

// Store is the set of aggregate queries behind the dashboard.
type Store interface {
	PeriodCounts(ctx context.Context, today dates.Date) (admin.PeriodCounts, error)
	Cancellations(ctx context.Context, today dates.Date) (admin.CancellationCounts, error)
	OccupiedRooms(ctx context.Context, day dates.Date) (int, error)
	TotalRooms(ctx context.Context) (int, error)
	GrossRevenue(ctx context.Context) (float64, error)
	DailyRevenue(ctx context.Context, from, to dates.Date) ([]admin.DailyRevenue, error)
	UpcomingCheckIns(ctx context.Context, from, to dates.Date, limit int) ([]admin.UpcomingStay, error)
	UpcomingCheckOuts(ctx context.Context, from, to dates.Date, limit int) ([]admin.UpcomingStay, error)
	PendingPayments(ctx context.Context, limit int) ([]admin.PendingPayment, error)
	BookingsByHotel(ctx context.Context, since *dates.Date) ([]admin.GroupCount, error)
	BookingsByState(ctx context.Context, since *dates.Date) ([]admin.GroupCount, error)
}

// Filter selects the time window of the hotel and state breakdowns.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterWeek  Filter = "week"
	FilterMonth Filter = "month"
)

func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterWeek, FilterMonth:
		return Filter(s), nil
	}
	return "", fmt.Errorf("%w: %q, expected all, week or month", ErrInvalidFilter, s)
}

// Since is the first day included by the filter, or nil for all time.
func (f Filter) Since(today dates.Date) *dates.Date {
	var d dates.Date
	switch f {
	case FilterWeek:
		d = today.AddDays(-7)
	case FilterMonth:
		d = today.AddDays(-30)
	default:
		return nil
	}
	return &d
}

type Params struct {
	OccupancyDate string
	HotelFilter   string
	StateFilter   string
}

type Metric struct {
	Value int    `json:"value"`
	Trend string `json:"trend"`
}

type Stats struct {
	TodayBookings   Metric `json:"today_bookings"`
	WeeklyBookings  Metric `json:"weekly_bookings"`
	MonthlyBookings Metric `json:"monthly_bookings"`
	Cancellations   Metric `json:"cancellations"`
}

type Occupancy struct {
	Date          dates.Date `json:"date"`
	OccupiedRooms int        `json:"occupied_rooms"`
	TotalRooms    int        `json:"total_rooms"`
	Percentage    int        `json:"percentage"`
}

type Revenue struct {
	Gross      float64 `json:"gross"`
	Net        float64 `json:"net"`
	Commission float64 `json:"commission"`
}

type Dashboard struct {
	Stats             Stats                  `json:"stats"`
	Occupancy         Occupancy              `json:"occupancy"`
	Revenue           Revenue                `json:"revenue"`
	RevenueTrend      []admin.DailyRevenue   `json:"revenue_trend"`
	UpcomingCheckIns  []admin.UpcomingStay   `json:"upcoming_check_ins"`
	UpcomingCheckOuts []admin.UpcomingStay   `json:"upcoming_check_outs"`
	PendingPayments   []admin.PendingPayment `json:"pending_payments"`
	BookingsByHotel   []admin.GroupCount     `json:"bookings_by_hotel"`
	BookingsByState   []admin.GroupCount     `json:"bookings_by_state"`
}

type DashboardService struct {
	log   *zap.Logger
	store Store
	today func() dates.Date
}

func NewDashboardService(log *zap.Logger, store Store) *DashboardService {
	return &DashboardService{log: log, store: store, today: dates.Today}
}

// FormatTrend renders the change from prev to cur as a signed whole percentage.
func FormatTrend(cur, prev int) string {
	if prev == 0 {
		if cur > 0 {
			return "+100%"
		}
		return "0%"
	}
	pct := int(math.Round(float64(cur-prev) / float64(prev) * 100))
	if pct > 0 {
		return fmt.Sprintf("+%d%%", pct)
	}
	return fmt.Sprintf("%d%%", pct)
}

// OccupancyPercent is occupied/total rounded to a whole percent; 0 when there are no rooms.
func OccupancyPercent(occupied, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(occupied) / float64(total) * 100))
}

func SplitRevenue(gross float64) Revenue {
	net := roundCents(gross * netShare)
	return Revenue{Gross: roundCents(gross), Net: net, Commission: roundCents(gross - net)}
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }

// fillSeries returns one point per day in [from, from+days), zero where no payments exist.
func fillSeries(from dates.Date, days int, points []admin.DailyRevenue) []admin.DailyRevenue {
	byDay := make(map[string]float64, len(points))
	for _, p := range points {
		byDay[p.Date.String()] += p.Amount
	}
	out := make([]admin.DailyRevenue, 0, days)
	for i := 0; i < days; i++ {
		d := from.AddDays(i)
		out = append(out, admin.DailyRevenue{Date: d, Amount: byDay[d.String()]})
	}
	return out
}

// Build runs every panel query concurrently. Any failure fails the whole dashboard.
func (s *DashboardService) Build(ctx context.Context, p Params) (*Dashboard, error) {
	today := s.today()
	occDate := today
	if p.OccupancyDate != "" {
		d, err := dates.Parse(p.OccupancyDate)
		if err != nil {
			return nil, fmt.Errorf("%w: occupancyDate", ErrInvalidFilter)
		}
		occDate = d
	}
	hotelFilter, err := ParseFilter(p.HotelFilter)
	if err != nil {
		return nil, err
	}
	stateFilter, err := ParseFilter(p.StateFilter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.DashboardBuildDuration.Observe(time.Since(start).Seconds()) }()

	var (
		d        Dashboard
		periods  admin.PeriodCounts
		cancels  admin.CancellationCounts
		occupied int
		total    int
		gross    float64
		series   []admin.DailyRevenue
	)
	seriesFrom := today.AddDays(-(revenueSeriesDays - 1))
	upcomingTo := today.AddDays(upcomingWindowDays)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { periods, err = s.store.PeriodCounts(ctx, today); return })
	g.Go(func() (err error) { cancels, err = s.store.Cancellations(ctx, today); return })
	g.Go(func() (err error) { occupied, err = s.store.OccupiedRooms(ctx, occDate); return })
	g.Go(func() (err error) { total, err = s.store.TotalRooms(ctx); return })
	g.Go(func() (err error) { gross, err = s.store.GrossRevenue(ctx); return })
	g.Go(func() (err error) { series, err = s.store.DailyRevenue(ctx, seriesFrom, today); return })
	g.Go(func() (err error) {
		d.UpcomingCheckIns, err = s.store.UpcomingCheckIns(ctx, today, upcomingTo, panelLimit)
		return
	})
	g.Go(func() (err error) {
		d.UpcomingCheckOuts, err = s.store.UpcomingCheckOuts(ctx, today, upcomingTo, panelLimit)
		return
	})
	g.Go(func() (err error) { d.PendingPayments, err = s.store.PendingPayments(ctx, panelLimit); return })
	g.Go(func() (err error) {
		d.BookingsByHotel, err = s.store.BookingsByHotel(ctx, hotelFilter.Since(today))
		return
	})
	g.Go(func() (err error) {
		d.BookingsByState, err = s.store.BookingsByState(ctx, stateFilter.Since(today))
		return
	})
	if err := g.Wait(); err != nil {
		s.log.Error("dashboard query failed", zap.Error(err))
		return nil, err
	}

	d.Stats = Stats{
		TodayBookings:   Metric{Value: periods.Today, Trend: FormatTrend(periods.Today, periods.Yesterday)},
		WeeklyBookings:  Metric{Value: periods.Week, Trend: FormatTrend(periods.Week, periods.PrevWeek)},
		MonthlyBookings: Metric{Value: periods.Month, Trend: FormatTrend(periods.Month, periods.PrevMonth)},
		Cancellations:   Metric{Value: cancels.Total, Trend: FormatTrend(cancels.Recent, cancels.Previous)},
	}
	d.Occupancy = Occupancy{
		Date:          occDate,
		OccupiedRooms: occupied,
		TotalRooms:    total,
		Percentage:    OccupancyPercent(occupied, total),
	}
	d.Revenue = SplitRevenue(gross)
	d.RevenueTrend = fillSeries(seriesFrom, revenueSeriesDays, series)
	for i := range d.PendingPayments {
		d.PendingPayments[i].DaysPending = today.DaysSince(d.PendingPayments[i].CheckInDate)
	}
	return &d, nil
}
