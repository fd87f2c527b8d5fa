package users

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

func TestAddFavouriteIsIdempotent(t *testing.T) {
	list := AddFavourite([]int64{3, 5}, 7)
	assert.Equal(t, []int64{3, 5, 7}, list)
	assert.Equal(t, []int64{3, 5, 7}, AddFavourite(list, 5))
	assert.Equal(t, []int64{3, 5, 7}, AddFavourite(list, 7))
	assert.Equal(t, []int64{1}, AddFavourite(nil, 1))
}

func TestRemoveFavourite(t *testing.T) {
	assert.Equal(t, []int64{3, 7}, RemoveFavourite([]int64{3, 5, 7}, 5))
	assert.Equal(t, []int64{3, 5, 7}, RemoveFavourite([]int64{3, 5, 7}, 9))
	assert.Equal(t, []int64{}, RemoveFavourite(nil, 9))
}

func TestUpdateFavouritesPersistsResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUsersRepository(store.FromPool(mock), zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT favourites FROM users").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"favourites"}).AddRow([]byte(`[3,5]`)))
	mock.ExpectExec("UPDATE users SET favourites").
		WithArgs([]byte(`[3,5,8]`), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	list, err := repo.UpdateFavourites(context.Background(), 2, func(l []int64) []int64 { return AddFavourite(l, 8) })
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 8}, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUsersRepository(store.FromPool(mock), zap.NewNop())

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err = repo.Create(context.Background(), &User{Email: "a@example.com", Username: "a", PasswordHash: "x"})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
