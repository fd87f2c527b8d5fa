package rooms

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	in := Input{}
	assert.EqualError(t, in.Validate(), "missing required field: hotel_id")

	in = Input{
		HotelID:    ptr(int64(1)),
		RoomNumber: ptr("101"),
		RoomName:   ptr("Garden Suite"),
		Category:   ptr("Deluxe"),
		Rate:       ptr(120.0),
		MaxGuests:  ptr(2),
	}
	assert.ErrorIs(t, in.Validate(), ErrInvalidCategory)

	in.Category = ptr("Premium")
	assert.NoError(t, in.Validate())

	in.MaxGuests = nil
	assert.ErrorIs(t, in.Validate(), store.ErrMissingField)
}

func TestCreateDefaultsJSONAndAvailability(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRoomsRepository(store.FromPool(mock), zap.NewNop())

	features := []byte(`{"regions":[],"features":[],"categories":[],"rentalCategories":[]}`)
	mock.ExpectQuery("INSERT INTO rooms").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			true, features, []byte(`[]`), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))

	id, err := repo.Create(context.Background(), Input{
		HotelID:    ptr(int64(1)),
		RoomNumber: ptr("101"),
		RoomName:   ptr("Garden Suite"),
		Category:   ptr("Standard"),
		Rate:       ptr(99.0),
		MaxGuests:  ptr(2),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRoom(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRoomsRepository(store.FromPool(mock), zap.NewNop())

	mock.ExpectExec("DELETE FROM rooms").
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 5), store.ErrNotFound)
}
