package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"Pending Payment":      StatusPendingPayment,
		"pending payment":      StatusPendingPayment,
		"  PENDING   payment ": StatusPendingPayment,
		"pending":              StatusPendingPayment,
		"Complete":             StatusComplete,
		"completed":            StatusComplete,
		"CANCELLED":            StatusCancelled,
		"canceled":             StatusCancelled,
	}
	for in, want := range cases {
		got, ok := NormalizeStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeStatus("on hold")
	assert.False(t, ok)
}

func TestActive(t *testing.T) {
	assert.True(t, StatusPendingPayment.Active())
	assert.True(t, StatusComplete.Active())
	assert.False(t, StatusCancelled.Active())
}
