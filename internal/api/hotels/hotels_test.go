package hotels

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

	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/hotels"
)

const secret = "hotels-secret"

type fakeRepo struct {
	filter  hotels.Filter
	created hotels.Input
}

func (f *fakeRepo) List(_ context.Context, flt hotels.Filter) ([]*hotels.Hotel, error) {
	f.filter = flt
	return []*hotels.Hotel{{ID: 1, Name: "Casa Penang", RoomCount: 4}}, nil
}
func (f *fakeRepo) Get(_ context.Context, id int64) (*hotels.Hotel, error) {
	if id != 1 {
		return nil, store.ErrNotFound
	}
	return &hotels.Hotel{ID: 1}, nil
}
func (f *fakeRepo) Create(_ context.Context, in hotels.Input) (int64, error) {
	f.created = in
	return 5, nil
}
func (f *fakeRepo) Update(context.Context, int64, hotels.Input) error { return nil }
func (f *fakeRepo) Delete(context.Context, int64) error               { return nil }

func setup(t *testing.T) (*gin.Engine, *fakeRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := &fakeRepo{}
	r := gin.New()
	NewHotelsHandler(zap.NewNop(), repo, middleware.NewAuth(secret, nil, nil, zap.NewNop())).Register(r)
	return r, repo
}

func TestListPassesFilters(t *testing.T) {
	r, repo := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hotels?q=casa&state=Penang", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, hotels.Filter{Q: "casa", State: "Penang"}, repo.filter)
	assert.Contains(t, w.Body.String(), `"room_count":4`)
}

func TestGetUnknownHotel(t *testing.T) {
	r, _ := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hotels/9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRequiresAdminAndFields(t *testing.T) {
	r, repo := setup(t)

	post := func(body, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/hotels", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if role != "" {
			tok, _, err := middleware.Issue(secret, 1, "a@example.com", role, time.Hour)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, post(`{}`, "").Code)
	assert.Equal(t, http.StatusForbidden, post(`{}`, middleware.RoleUser).Code)

	w := post(`{"name":"Casa","town":"George Town"}`, middleware.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"missing required field: state"}`, w.Body.String())

	w = post(`{"name":"Casa","town":"George Town","state":"Penang","tags":["sea"]}`, middleware.RoleAdmin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"sea"}, repo.created.Tags)
}
