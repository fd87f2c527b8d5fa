package bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/dates"
	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/bookings"
	"github.com/seniorstay/staycation-api/internal/store"
	storeBookings "github.com/seniorstay/staycation-api/internal/store/bookings"
)

const secret = "handler-secret"

type memRepo struct {
	rows  map[int64]storeBookings.Input
	stays []storeBookings.Stay
}

func (m *memRepo) Create(_ context.Context, in storeBookings.Input, _ bool) (int64, error) {
	id := int64(len(m.rows) + 1)
	m.rows[id] = in
	return id, nil
}

func (m *memRepo) Replace(_ context.Context, id int64, in storeBookings.Input, _ bool) error {
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	m.rows[id] = in
	return nil
}

func (m *memRepo) Overlapping(context.Context, int64, dates.Date, dates.Date) ([]storeBookings.Stay, error) {
	return m.stays, nil
}

func (m *memRepo) List(context.Context) ([]*storeBookings.Booking, error) {
	return []*storeBookings.Booking{}, nil
}

func (m *memRepo) ListByUser(context.Context, int64) ([]*storeBookings.Booking, error) {
	return []*storeBookings.Booking{}, nil
}

func (m *memRepo) GetByID(context.Context, int64) (*storeBookings.Booking, error) {
	return nil, store.ErrNotFound
}

func (m *memRepo) UpdateStatus(context.Context, int64, storeBookings.Status) error { return nil }
func (m *memRepo) Delete(context.Context, int64) error                             { return nil }

func setup(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := &memRepo{rows: map[int64]storeBookings.Input{}}
	svc := bookings.NewBookingsService(zap.NewNop(), repo, nil, false)
	r := gin.New()
	NewBookingsHandler(zap.NewNop(), svc, middleware.NewAuth(secret, nil, nil, zap.NewNop())).Register(r)
	return r, repo
}

const validBody = `{
	"room_id": 7,
	"check_in_date": "2025-03-10",
	"check_out_date": "2025-03-15",
	"num_guests": 2,
	"total_price": 950,
	"first_name": "Aminah",
	"phone_number": "+60123456789",
	"selected_services": [{"service_id": 3, "quantity": 2}]
}`

func send(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	r, repo := setup(t)

	w := send(r, http.MethodPost, "/api/bookings", validBody)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"booking_id":1,"message":"Booking created successfully"}`, w.Body.String())
	assert.Nil(t, repo.rows[1].UserID)
	assert.Equal(t, storeBookings.StatusPendingPayment, repo.rows[1].Status)
}

func TestCreateBookingAttachesCaller(t *testing.T) {
	r, repo := setup(t)
	tok, _, err := middleware.Issue(secret, 42, "a@example.com", middleware.RoleUser, time.Hour)
	require.NoError(t, err)

	w := send(r, http.MethodPost, "/api/bookings", validBody, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.rows[1].UserID)
	assert.EqualValues(t, 42, *repo.rows[1].UserID)
}

func TestCreateBookingMissingField(t *testing.T) {
	r, repo := setup(t)
	body := strings.Replace(validBody, `"phone_number": "+60123456789",`, ``, 1)

	w := send(r, http.MethodPost, "/api/bookings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"missing required field: phone_number"}`, w.Body.String())
	assert.Empty(t, repo.rows)
}

func TestReplaceBooking(t *testing.T) {
	r, _ := setup(t)

	w := send(r, http.MethodPut, "/api/bookings/1", validBody)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/bookings", validBody).Code)
	w = send(r, http.MethodPut, "/api/bookings/1", validBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"booking_id":1,"message":"Booking updated successfully"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/api/bookings/abc", validBody).Code)
}

func TestReplaceBookingAttachesCaller(t *testing.T) {
	r, repo := setup(t)
	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/bookings", validBody).Code)
	require.Nil(t, repo.rows[1].UserID)

	tok, _, err := middleware.Issue(secret, 42, "a@example.com", middleware.RoleUser, time.Hour)
	require.NoError(t, err)

	w := send(r, http.MethodPut, "/api/bookings/1", validBody, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.rows[1].UserID)
	assert.EqualValues(t, 42, *repo.rows[1].UserID)

	w = send(r, http.MethodPut, "/api/bookings/1", validBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, repo.rows[1].UserID)
}

func TestOverlapEndpoint(t *testing.T) {
	r, repo := setup(t)
	repo.stays = []storeBookings.Stay{{
		ID:           4,
		RoomID:       7,
		CheckInDate:  dates.New(2025, time.March, 10),
		CheckOutDate: dates.New(2025, time.March, 15),
		Status:       storeBookings.StatusComplete,
	}}

	w := send(r, http.MethodGet, "/api/bookings/overlap?room_id=7&check_in=2025-03-15&check_out=2025-03-20", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"id": 4,
		"room_id": 7,
		"check_in_date": "2025-03-10T00:00:00+08:00",
		"check_out_date": "2025-03-15T00:00:00+08:00",
		"booking_status": "Complete"
	}]`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/api/bookings/overlap?room_id=x&check_in=2025-03-15&check_out=2025-03-20", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/api/bookings/overlap?room_id=7&check_in=soon&check_out=2025-03-20", "").Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := setup(t)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodGet, "/api/bookings", "").Code)

	tok, _, err := middleware.Issue(secret, 42, "a@example.com", middleware.RoleUser, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, send(r, http.MethodGet, "/api/bookings", "", "Authorization", "Bearer "+tok).Code)
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/bookings/me", "", "Authorization", "Bearer "+tok).Code)
}

func TestBookingWritesRunRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &memRepo{rows: map[int64]storeBookings.Input{}}
	svc := bookings.NewBookingsService(zap.NewNop(), repo, nil, false)
	r := gin.New()
	NewBookingsHandler(zap.NewNop(), svc, middleware.NewAuth(secret, nil, nil, zap.NewNop())).
		WithRateLimit(middleware.UserRateLimit(nil, 1, 1)).
		Register(r)

	tok, _, err := middleware.Issue(secret, 42, "a@example.com", middleware.RoleUser, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/bookings", validBody, "Authorization", "Bearer "+tok).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(r, http.MethodPut, "/api/bookings/1", validBody, "Authorization", "Bearer "+tok).Code)
	assert.Len(t, repo.rows, 1)
}
