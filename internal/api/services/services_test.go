package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/services"
)

const secret = "services-secret"

type fakeRepo struct {
	includeInactive bool
}

func (f *fakeRepo) List(_ context.Context, all bool) ([]*services.Service, error) {
	f.includeInactive = all
	return []*services.Service{}, nil
}
func (f *fakeRepo) Get(context.Context, int64) (*services.Service, error) {
	return &services.Service{ID: 1}, nil
}
func (f *fakeRepo) Create(context.Context, services.Input) (int64, error) { return 1, nil }
func (f *fakeRepo) Update(context.Context, int64, services.Input) error   { return nil }
func (f *fakeRepo) Deactivate(_ context.Context, id int64) error {
	if id == 9 {
		return store.ErrNotFound
	}
	return nil
}
func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if id == 2 {
		return services.ErrInUse
	}
	return nil
}

func setup(t *testing.T) (*gin.Engine, *fakeRepo, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := &fakeRepo{}
	r := gin.New()
	NewServicesHandler(zap.NewNop(), repo, middleware.NewAuth(secret, nil, nil, zap.NewNop())).Register(r)
	tok, _, err := middleware.Issue(secret, 1, "a@example.com", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return r, repo, tok
}

func do(r http.Handler, method, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListAll(t *testing.T) {
	r, repo, _ := setup(t)

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/services", "").Code)
	assert.False(t, repo.includeInactive)

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/services?all=true", "").Code)
	assert.True(t, repo.includeInactive)
}

func TestDeleteInUseIsConflict(t *testing.T) {
	r, _, tok := setup(t)

	w := do(r, http.MethodDelete, "/api/services/2", tok)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "deactivate it instead")

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/services/3", tok).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodDelete, "/api/services/3", "").Code)
}

func TestDeactivate(t *testing.T) {
	r, _, tok := setup(t)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, "/api/services/1/deactivate", tok).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/api/services/9/deactivate", tok).Code)
}
