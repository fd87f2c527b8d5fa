package bookings

import "strings"

// Status is the canonical booking status.
type Status string

const (
	StatusPendingPayment Status = "Pending Payment"
	StatusComplete       Status = "Complete"
	StatusCancelled      Status = "Cancelled"
)

// ActiveStatuses are the statuses that occupy a room.
var ActiveStatuses = []string{string(StatusPendingPayment), string(StatusComplete)}

var statusAliases = map[string]Status{
	"pending payment": StatusPendingPayment,
	"pending_payment": StatusPendingPayment,
	"pending-payment": StatusPendingPayment,
	"pendingpayment":  StatusPendingPayment,
	"pending":         StatusPendingPayment,
	"unpaid":          StatusPendingPayment,
	"complete":        StatusComplete,
	"completed":       StatusComplete,
	"paid":            StatusComplete,
	"confirmed":       StatusComplete,
	"cancelled":       StatusCancelled,
	"canceled":        StatusCancelled,
	"cancel":          StatusCancelled,
}

// NormalizeStatus maps free-text status values, in any casing, to a canonical Status.
func NormalizeStatus(s string) (Status, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	st, ok := statusAliases[key]
	return st, ok
}

func (s Status) Active() bool {
	return s == StatusPendingPayment || s == StatusComplete
}
