package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/admin"
)

const secret = "dash-secret"

type stubBuilder struct {
	got admin.Params
	err error
}

func (s *stubBuilder) Build(_ context.Context, p admin.Params) (*admin.Dashboard, error) {
	s.got = p
	if s.err != nil {
		return nil, s.err
	}
	return &admin.Dashboard{Revenue: admin.SplitRevenue(500)}, nil
}

func router(b DashboardBuilder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAdminHandler(zap.NewNop(), b, middleware.NewAuth(secret, nil, nil, zap.NewNop())).Register(r)
	return r
}

func get(t *testing.T, r http.Handler, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		tok, _, err := middleware.Issue(secret, 1, "admin@example.com", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDashboardRequiresAdmin(t *testing.T) {
	r := router(&stubBuilder{})
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/admin/dashboard", "").Code)
	assert.Equal(t, http.StatusForbidden, get(t, r, "/api/admin/dashboard", middleware.RoleUser).Code)
}

func TestDashboardPassesFilters(t *testing.T) {
	b := &stubBuilder{}
	w := get(t, router(b), "/api/admin/dashboard?occupancyDate=2025-03-22&hotelFilter=week&stateFilter=month", middleware.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, admin.Params{OccupancyDate: "2025-03-22", HotelFilter: "week", StateFilter: "month"}, b.got)
	assert.Contains(t, w.Body.String(), `"revenue":{"gross":500,"net":450,"commission":50}`)
}

func TestDashboardFailureHasNoPartialBody(t *testing.T) {
	w := get(t, router(&stubBuilder{err: errors.New("timeout")}), "/api/admin/dashboard", middleware.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to load dashboard"}`, w.Body.String())
}

func TestDashboardBadFilter(t *testing.T) {
	w := get(t, router(&stubBuilder{err: admin.ErrInvalidFilter}), "/api/admin/dashboard?hotelFilter=year", middleware.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
