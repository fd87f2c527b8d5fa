package kafkax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingEvent(t *testing.T) {
	ev, err := ParseBookingEvent([]byte(`{"type":"booking.created","booking_id":42,"room_id":7,"check_in_date":"2025-03-10","first_name":"Aminah","email":"a@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, EventBookingCreated, ev.Type)
	assert.EqualValues(t, 42, ev.BookingID)
	assert.Equal(t, "2025-03-10", ev.CheckIn)

	_, err = ParseBookingEvent([]byte(`not json`))
	assert.Error(t, err)
}
