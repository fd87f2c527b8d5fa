package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/dates"
	"github.com/seniorstay/staycation-api/internal/store/admin"
)

type fakeStore struct {
	failPanel   string
	occupiedArg dates.Date
	hotelSince  *dates.Date
	stateSince  *dates.Date
	total       int
}

func (f *fakeStore) fail(panel string) error {
	if f.failPanel == panel {
		return errors.New(panel + " failed")
	}
	return nil
}

func (f *fakeStore) PeriodCounts(context.Context, dates.Date) (admin.PeriodCounts, error) {
	return admin.PeriodCounts{Today: 10, Yesterday: 0, Week: 12, PrevWeek: 10, Month: 19, PrevMonth: 20}, f.fail("periods")
}

func (f *fakeStore) Cancellations(context.Context, dates.Date) (admin.CancellationCounts, error) {
	return admin.CancellationCounts{Total: 7}, f.fail("cancellations")
}

func (f *fakeStore) OccupiedRooms(_ context.Context, day dates.Date) (int, error) {
	f.occupiedArg = day
	return 3, f.fail("occupied")
}

func (f *fakeStore) TotalRooms(context.Context) (int, error) { return f.total, f.fail("rooms") }

func (f *fakeStore) GrossRevenue(context.Context) (float64, error) {
	return 1000, f.fail("revenue")
}

func (f *fakeStore) DailyRevenue(context.Context, dates.Date, dates.Date) ([]admin.DailyRevenue, error) {
	return []admin.DailyRevenue{{Date: dates.New(2025, time.March, 20), Amount: 300}}, f.fail("series")
}

func (f *fakeStore) UpcomingCheckIns(context.Context, dates.Date, dates.Date, int) ([]admin.UpcomingStay, error) {
	return []admin.UpcomingStay{}, f.fail("checkins")
}

func (f *fakeStore) UpcomingCheckOuts(context.Context, dates.Date, dates.Date, int) ([]admin.UpcomingStay, error) {
	return []admin.UpcomingStay{}, f.fail("checkouts")
}

func (f *fakeStore) PendingPayments(context.Context, int) ([]admin.PendingPayment, error) {
	return []admin.PendingPayment{{BookingID: 1, CheckInDate: dates.New(2025, time.March, 18)}}, f.fail("pending")
}

func (f *fakeStore) BookingsByHotel(_ context.Context, since *dates.Date) ([]admin.GroupCount, error) {
	f.hotelSince = since
	return []admin.GroupCount{}, f.fail("hotels")
}

func (f *fakeStore) BookingsByState(_ context.Context, since *dates.Date) ([]admin.GroupCount, error) {
	f.stateSince = since
	return []admin.GroupCount{}, f.fail("states")
}

var fixedToday = dates.New(2025, time.March, 20)

func newService(store Store) *DashboardService {
	s := NewDashboardService(zap.NewNop(), store)
	s.today = func() dates.Date { return fixedToday }
	return s
}

func TestFormatTrend(t *testing.T) {
	assert.Equal(t, "+100%", FormatTrend(10, 0))
	assert.Equal(t, "0%", FormatTrend(0, 0))
	assert.Equal(t, "+20%", FormatTrend(12, 10))
	assert.Equal(t, "-5%", FormatTrend(19, 20))
	assert.Equal(t, "0%", FormatTrend(10, 10))
	assert.Equal(t, "+33%", FormatTrend(4, 3))
}

func TestOccupancyPercent(t *testing.T) {
	assert.Equal(t, 0, OccupancyPercent(0, 0))
	assert.Equal(t, 0, OccupancyPercent(5, 0))
	assert.Equal(t, 33, OccupancyPercent(1, 3))
	assert.Equal(t, 67, OccupancyPercent(2, 3))
}

func TestSplitRevenue(t *testing.T) {
	assert.Equal(t, Revenue{Gross: 1000, Net: 900, Commission: 100}, SplitRevenue(1000))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)
	assert.Nil(t, f.Since(fixedToday))

	f, err = ParseFilter("week")
	require.NoError(t, err)
	assert.Equal(t, dates.New(2025, time.March, 13), *f.Since(fixedToday))

	_, err = ParseFilter("year")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestBuildAssemblesPanels(t *testing.T) {
	store := &fakeStore{total: 0}
	d, err := newService(store).Build(context.Background(), Params{
		OccupancyDate: "2025-03-22",
		HotelFilter:   "month",
	})
	require.NoError(t, err)

	assert.Equal(t, Metric{Value: 10, Trend: "+100%"}, d.Stats.TodayBookings)
	assert.Equal(t, Metric{Value: 12, Trend: "+20%"}, d.Stats.WeeklyBookings)
	assert.Equal(t, Metric{Value: 19, Trend: "-5%"}, d.Stats.MonthlyBookings)
	assert.Equal(t, Metric{Value: 7, Trend: "0%"}, d.Stats.Cancellations)

	assert.Equal(t, dates.New(2025, time.March, 22), store.occupiedArg)
	assert.Equal(t, 0, d.Occupancy.Percentage)
	assert.Equal(t, Revenue{Gross: 1000, Net: 900, Commission: 100}, d.Revenue)

	require.Len(t, d.RevenueTrend, 30)
	assert.Equal(t, dates.New(2025, time.February, 19), d.RevenueTrend[0].Date)
	assert.Equal(t, fixedToday, d.RevenueTrend[29].Date)
	assert.Equal(t, 300.0, d.RevenueTrend[29].Amount)
	assert.Equal(t, 0.0, d.RevenueTrend[0].Amount)

	assert.Equal(t, 2, d.PendingPayments[0].DaysPending)

	require.NotNil(t, store.hotelSince)
	assert.Equal(t, dates.New(2025, time.February, 18), *store.hotelSince)
	assert.Nil(t, store.stateSince)
}

func TestBuildFailsWhenAnyPanelFails(t *testing.T) {
	for _, panel := range []string{"periods", "cancellations", "occupied", "rooms", "revenue", "series", "checkins", "checkouts", "pending", "hotels", "states"} {
		t.Run(panel, func(t *testing.T) {
			d, err := newService(&fakeStore{failPanel: panel, total: 4}).Build(context.Background(), Params{})
			assert.Error(t, err)
			assert.Nil(t, d)
		})
	}
}

func TestBuildRejectsBadParams(t *testing.T) {
	_, err := newService(&fakeStore{}).Build(context.Background(), Params{StateFilter: "decade"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = newService(&fakeStore{}).Build(context.Background(), Params{OccupancyDate: "tomorrow"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
