package bookings

import (
	"errors"
	"fmt"

	"github.com/seniorstay/staycation-api/internal/dates"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

var (
	ErrMissingField = store.ErrMissingField
	ErrInvalidField = errors.New("invalid field")
)

type ServiceItem struct {
	ServiceID int64 `json:"service_id"`
	Quantity  *int  `json:"quantity"`
}

// BookingRequest is the create/replace payload. Pointer fields distinguish an
// omitted value from a supplied one; zero values count as missing for the
// required fields.
type BookingRequest struct {
	RoomID           *int64        `json:"room_id"`
	CheckInDate      *string       `json:"check_in_date"`
	CheckOutDate     *string       `json:"check_out_date"`
	NumGuests        *int          `json:"num_guests"`
	TotalPrice       *float64      `json:"total_price"`
	FirstName        *string       `json:"first_name"`
	LastName         *string       `json:"last_name"`
	Email            *string       `json:"email"`
	PhoneNumber      *string       `json:"phone_number"`
	Age              *int          `json:"age"`
	Message          *string       `json:"message"`
	BookingStatus    *string       `json:"booking_status"`
	SelectedServices []ServiceItem `json:"selected_services"`
}

func invalid(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidField, name)
}

// Validate checks required fields in a fixed order and converts the request
// into repository input. An empty status is returned as "".
func (r BookingRequest) Validate() (bookings.Input, error) {
	var in bookings.Input

	switch {
	case r.RoomID == nil || *r.RoomID == 0:
		return in, store.MissingField("room_id")
	case store.Blank(r.CheckInDate):
		return in, store.MissingField("check_in_date")
	case store.Blank(r.CheckOutDate):
		return in, store.MissingField("check_out_date")
	case r.NumGuests == nil || *r.NumGuests == 0:
		return in, store.MissingField("num_guests")
	case r.TotalPrice == nil || *r.TotalPrice == 0:
		return in, store.MissingField("total_price")
	case store.Blank(r.FirstName):
		return in, store.MissingField("first_name")
	case store.Blank(r.PhoneNumber):
		return in, store.MissingField("phone_number")
	}

	checkIn, err := dates.Parse(*r.CheckInDate)
	if err != nil {
		return in, invalid("check_in_date")
	}
	checkOut, err := dates.Parse(*r.CheckOutDate)
	if err != nil {
		return in, invalid("check_out_date")
	}

	if !store.Blank(r.BookingStatus) {
		st, ok := bookings.NormalizeStatus(*r.BookingStatus)
		if !ok {
			return in, invalid("booking_status")
		}
		in.Status = st
	}

	in.RoomID = *r.RoomID
	in.CheckIn = checkIn
	in.CheckOut = checkOut
	in.NumGuests = *r.NumGuests
	in.TotalPrice = *r.TotalPrice
	in.FirstName = *r.FirstName
	in.LastName = r.LastName
	in.Email = r.Email
	in.PhoneNumber = *r.PhoneNumber
	in.Age = r.Age
	in.Message = r.Message
	for _, item := range r.SelectedServices {
		sel := bookings.ServiceSelection{ServiceID: item.ServiceID}
		if item.Quantity != nil {
			sel.Quantity = *item.Quantity
		}
		in.Services = append(in.Services, sel)
	}
	return in, nil
}
