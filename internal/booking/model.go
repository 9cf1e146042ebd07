// internal/booking/model.go
//
// Group-booking enquiry aggregate.
//
// Context
// -------
// A BookingForm is the single payload the enquiry form collects and the mock
// backend stores.  It has four sections, each a plain struct with JSON tags
// that match the wire format.  The `validate` tags are consumed by the form
// package's schema validator, so the rules live next to the fields they
// constrain.
//
// Notes
// -----
//   - Room counts are ints.  Negative values are rejected by the validator,
//     and the store refuses to decrement below zero.
//   - Defaults() mirrors the values the form mounts with.

package booking

// BookingForm is the root aggregate.
type BookingForm struct {
	ContactDetails        ContactDetails        `json:"contactDetails"        mapstructure:"contactDetails"`
	BookingDetails        BookingDetails        `json:"bookingDetails"        mapstructure:"bookingDetails"`
	RoomRequirements      RoomRequirements      `json:"roomRequirements"      mapstructure:"roomRequirements"`
	AdditionalInformation AdditionalInformation `json:"additionalInformation" mapstructure:"additionalInformation"`
}

// ContactDetails identifies the person making the enquiry.
type ContactDetails struct {
	Title       string `json:"title"       mapstructure:"title"       validate:"oneof=Mr Mrs Ms Miss Mx Master Dr Lord Lady Sir Col Prof Rev"`
	FirstName   string `json:"firstName"   mapstructure:"firstName"   validate:"required,max=30"`
	LastName    string `json:"lastName"    mapstructure:"lastName"    validate:"required,max=30"`
	Email       string `json:"email"       mapstructure:"email"       validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" mapstructure:"phoneNumber" validate:"required,phone"`
}

// BookingDetails describes the stay.
type BookingDetails struct {
	BookerType      string `json:"bookerType"      mapstructure:"bookerType"      validate:"oneof=personal business travel-management-company travel-agent/tour-operator"`
	PurposeOfStay   string `json:"purposeOfStay"   mapstructure:"purposeOfStay"   validate:"oneof=business leisure"`
	IsSchoolOrYouth bool   `json:"isSchoolOrYouth" mapstructure:"isSchoolOrYouth"`
	ReasonForVisit  string `json:"reasonForVisit"  mapstructure:"reasonForVisit"  validate:"oneof=association bus-tour business-meeting charity-event convention-conference government graduation-reunion layover leisure-tour military music-band other religious-church-event school-group sport-event sport-team-adult sport-team-youth stag-hen-party trade-fair wedding work-crew youth-group"`
	PreferredHotel  string `json:"preferredHotel"  mapstructure:"preferredHotel"  validate:"required"`
	Dates           Dates  `json:"dates"           mapstructure:"dates"`
	PackageType     string `json:"packageType"     mapstructure:"packageType"     validate:"oneof=breakfast meal-deal"`
}

// Dates holds check-in and check-out as YYYY-MM-DD strings.
type Dates struct {
	CheckIn  string `json:"checkIn"  mapstructure:"checkIn"  validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"checkOut" mapstructure:"checkOut" validate:"required,datetime=2006-01-02"`
}

// RoomRequirements holds the room mix and the two accessibility flags.
type RoomRequirements struct {
	IsTravellingWithChild bool  `json:"isTravellingWithChild" mapstructure:"isTravellingWithChild"`
	IsAccessibleRoom      bool  `json:"isAccessibleRoom"      mapstructure:"isAccessibleRoom"`
	Rooms                 Rooms `json:"rooms"                 mapstructure:"rooms"`
}

// Rooms is the fixed set of ten room-type counters.
type Rooms struct {
	SingleOccupancy  int `json:"singleOccupancy"  mapstructure:"singleOccupancy"  validate:"min=0"`
	DoubleOccupancy  int `json:"doubleOccupancy"  mapstructure:"doubleOccupancy"  validate:"min=0"`
	TwinRooms        int `json:"twinRooms"        mapstructure:"twinRooms"        validate:"min=0"`
	FamilyOf21A1C    int `json:"familyOf21A1C"    mapstructure:"familyOf21A1C"    validate:"min=0"`
	FamilyOf32A1C    int `json:"familyOf32A1C"    mapstructure:"familyOf32A1C"    validate:"min=0"`
	FamilyOf31A2C    int `json:"familyOf31A2C"    mapstructure:"familyOf31A2C"    validate:"min=0"`
	FamilyOf42A2C    int `json:"familyOf42A2C"    mapstructure:"familyOf42A2C"    validate:"min=0"`
	AccessibleSingle int `json:"accessibleSingle" mapstructure:"accessibleSingle" validate:"min=0"`
	AccessibleDouble int `json:"accessibleDouble" mapstructure:"accessibleDouble" validate:"min=0"`
	AccessibleTwin   int `json:"accessibleTwin"   mapstructure:"accessibleTwin"   validate:"min=0"`
}

// AdditionalInformation carries free-text notes.
type AdditionalInformation struct {
	Comments string `json:"comments,omitempty" mapstructure:"comments" validate:"max=1000"`
}

// Allowed values per enum field, in display order.
var (
	Titles          = []string{"Mr", "Mrs", "Ms", "Miss", "Mx", "Master", "Dr", "Lord", "Lady", "Sir", "Col", "Prof", "Rev"}
	BookerTypes     = []string{"personal", "business", "travel-management-company", "travel-agent/tour-operator"}
	PurposesOfStay  = []string{"business", "leisure"}
	PackageTypes    = []string{"breakfast", "meal-deal"}
	ReasonsForVisit = []string{
		"association", "bus-tour", "business-meeting", "charity-event",
		"convention-conference", "government", "graduation-reunion", "layover",
		"leisure-tour", "military", "music-band", "other",
		"religious-church-event", "school-group", "sport-event",
		"sport-team-adult", "sport-team-youth", "stag-hen-party", "trade-fair",
		"wedding", "work-crew", "youth-group",
	}
)

// Defaults returns the aggregate the form mounts with.
func Defaults() BookingForm {
	return BookingForm{
		ContactDetails: ContactDetails{Title: "Mr"},
		BookingDetails: BookingDetails{
			BookerType:     "personal",
			PurposeOfStay:  "leisure",
			ReasonForVisit: "charity-event",
			PackageType:    "breakfast",
		},
	}
}

// Values flattens f into the nested map layout used by the form store.
// Ints stay ints so callers can compare against typed literals.
func (f BookingForm) Values() map[string]any {
	r := f.RoomRequirements.Rooms
	return map[string]any{
		"contactDetails": map[string]any{
			"title":       f.ContactDetails.Title,
			"firstName":   f.ContactDetails.FirstName,
			"lastName":    f.ContactDetails.LastName,
			"email":       f.ContactDetails.Email,
			"phoneNumber": f.ContactDetails.PhoneNumber,
		},
		"bookingDetails": map[string]any{
			"bookerType":      f.BookingDetails.BookerType,
			"purposeOfStay":   f.BookingDetails.PurposeOfStay,
			"isSchoolOrYouth": f.BookingDetails.IsSchoolOrYouth,
			"reasonForVisit":  f.BookingDetails.ReasonForVisit,
			"preferredHotel":  f.BookingDetails.PreferredHotel,
			"dates": map[string]any{
				"checkIn":  f.BookingDetails.Dates.CheckIn,
				"checkOut": f.BookingDetails.Dates.CheckOut,
			},
			"packageType": f.BookingDetails.PackageType,
		},
		"roomRequirements": map[string]any{
			"isTravellingWithChild": f.RoomRequirements.IsTravellingWithChild,
			"isAccessibleRoom":      f.RoomRequirements.IsAccessibleRoom,
			"rooms": map[string]any{
				"singleOccupancy":  r.SingleOccupancy,
				"doubleOccupancy":  r.DoubleOccupancy,
				"twinRooms":        r.TwinRooms,
				"familyOf21A1C":    r.FamilyOf21A1C,
				"familyOf32A1C":    r.FamilyOf32A1C,
				"familyOf31A2C":    r.FamilyOf31A2C,
				"familyOf42A2C":    r.FamilyOf42A2C,
				"accessibleSingle": r.AccessibleSingle,
				"accessibleDouble": r.AccessibleDouble,
				"accessibleTwin":   r.AccessibleTwin,
			},
		},
		"additionalInformation": map[string]any{
			"comments": f.AdditionalInformation.Comments,
		},
	}
}
