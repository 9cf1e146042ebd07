package enquiry

import (
	"github.com/yanizio/groupenquiry/internal/booking"
)

// requirement is one structural check: the path must hold a non-empty value.
type requirement struct {
	path booking.Path
	msg  string
}

// sectionRequirements are checked first; a missing section hides the leaf
// checks beneath it.
var sectionRequirements = []requirement{
	{booking.PathContactDetails, "Contact details are required"},
	{booking.PathBookingDetails, "Booking details are required"},
	{booking.PathRoomRequirements, "Room requirements are required"},
}

var leafRequirements = []requirement{
	{booking.PathFirstName, "First name is required"},
	{booking.PathLastName, "Last name is required"},
	{booking.PathEmail, "Email is required"},
	{booking.PathPhoneNumber, "Phone number is required"},
	{booking.PathPreferredHotel, "Preferred hotel is required"},
	{booking.PathCheckIn, "Check-in date is required"},
	{booking.PathCheckOut, "Check-out date is required"},
	{booking.PathRooms, "Room selection is required"},
}

// Precheck is the structural gate in front of schema validation.  It reports
// missing sections and missing required leaves, keyed by dot path.  An empty
// result means the payload is complete enough to validate.
func Precheck(payload map[string]any) map[string][]string {
	errs := make(map[string][]string)
	missing := make(map[booking.Path]bool)

	for _, r := range sectionRequirements {
		if _, ok := payload[r.path.String()].(map[string]any); !ok {
			errs[r.path.String()] = []string{r.msg}
			missing[r.path] = true
		}
	}
	for _, r := range leafRequirements {
		if missing[r.path.Root()] {
			continue
		}
		if !present(payload, r.path) {
			errs[r.path.String()] = []string{r.msg}
		}
	}
	return errs
}

// present reports whether p resolves to something other than null or "".
func present(m map[string]any, p booking.Path) bool {
	var cur any = m
	for _, seg := range p.Segments() {
		group, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		if cur, ok = group[seg]; !ok {
			return false
		}
	}
	switch v := cur.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}
