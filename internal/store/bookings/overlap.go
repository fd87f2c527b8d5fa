package bookings

import "github.com/seniorstay/staycation-api/internal/dates"

// Overlaps reports whether an existing stay conflicts with a candidate range.
// Ranges are excluded only when the existing stay ends strictly before the
// candidate starts or starts strictly after the candidate ends, so a stay that
// checks out on the candidate's check-in day still counts as overlapping.
func Overlaps(existingIn, existingOut, candidateIn, candidateOut dates.Date) bool {
	return !(existingOut.Before(candidateIn.Time) || existingIn.After(candidateOut.Time))
}

// overlapPredicate is the SQL form of Overlaps with $2/$3 as the candidate range.
const overlapPredicate = `NOT (check_out_date < $2 OR check_in_date > $3)`
