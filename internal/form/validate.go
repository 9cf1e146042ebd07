// internal/form/validate.go
//
// Enquiry form: schema validation.
//
// Context
//   The booking schema lives in `validate` struct tags on booking.BookingForm.
//   This file runs go-playground/validator over a form value, converts each
//   failure into a dot path (json tag names, so keys match the wire format),
//   and attaches the user-facing message for that field.  Two rules span more
//   than one field and run after the tag pass:
//
//   •  Room total.  The ten room counters must add up to at least one.  The
//      error sits on the rooms group, never on an individual counter.
//   •  Date order.  When both dates parse, check-out must follow check-in.
//
// Workflow
//   •  Validate checks the whole form.  It is pure: the input is passed by
//      value and never modified.
//   •  ValidateField narrows the result to one path and its descendants for
//      blur handling.
//   •  Validation failures are data (a Result), never an error return.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// Group-level and cross-field messages.
const (
	MsgNoRooms       = "At least one room must be selected"
	MsgCheckOutOrder = "Check-out date must be after check-in date"
	msgDefault       = "Invalid input."
	dateLayout       = "2006-01-02"
)

// phonePattern allows digits, plus, hyphen, whitespace, and parentheses.
var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

// messages maps path → validator tag → message.  "*" matches any tag, which
// is how enum fields get one message whether the value is absent or unknown.
var messages = map[booking.Path]map[string]string{
	booking.PathTitle: {"*": "Please select a valid title"},
	booking.PathFirstName: {
		"required": "Please enter your first name",
		"max":      "First name cannot exceed 30 characters",
	},
	booking.PathLastName: {
		"required": "Please enter your last name",
		"max":      "Last name cannot exceed 30 characters",
	},
	booking.PathEmail: {
		"required": "Please enter your email address",
		"*":        "Please enter a valid email address",
	},
	booking.PathPhoneNumber: {
		"required": "Please enter your phone number",
		"*":        "Please enter a valid phone number",
	},
	booking.PathBookerType:     {"*": "Please select your booker type"},
	booking.PathPurposeOfStay:  {"*": "Please select whether your stay is for business or leisure"},
	booking.PathReasonForVisit: {"*": "Please select a reason for your visit"},
	booking.PathPreferredHotel: {"*": "Please enter your preferred hotel"},
	booking.PathCheckIn: {
		"required": "Please select a check-in date",
		"*":        "Please enter a valid check-in date",
	},
	booking.PathCheckOut: {
		"required": "Please select a check-out date",
		"*":        "Please enter a valid check-out date",
	},
	booking.PathPackageType: {"*": "Please select a package type"},
	booking.PathComments:    {"*": "Comments cannot exceed 1000 characters"},
}

const msgNegativeRoom = "Room count cannot be negative"

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Result is the outcome of a validation pass.
type Result struct {
	Valid       bool
	FieldErrors map[booking.Path]string
}

// Paths returns the failing paths in form order.
func (r Result) Paths() []booking.Path {
	return sortedPaths(r.FieldErrors)
}

// Validator checks BookingForm values.  It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator with the phone rule registered and json
// tag names used for error namespaces.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// RegisterValidation only fails on an empty tag or nil func.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate checks every rule and returns all failures, one message per path.
func (val *Validator) Validate(f booking.BookingForm) Result {
	errs := make(map[booking.Path]string)

	if err := val.v.Struct(f); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			// InvalidValidationError only happens on a nil or non-struct
			// input, which the typed signature rules out.
			errs[""] = msgDefault
		}
		for _, fe := range ves {
			p := namespacePath(fe.Namespace())
			if _, dup := errs[p]; dup {
				continue
			}
			errs[p] = messageFor(p, fe.Tag())
		}
	}

	if f.RoomRequirements.Rooms.Total() <= 0 {
		// The group error replaces per-counter noise when nothing is booked.
		for p := range errs {
			if p.Within(booking.PathRooms) {
				delete(errs, p)
			}
		}
		errs[booking.PathRooms] = MsgNoRooms
	}

	if _, bad := errs[booking.PathCheckOut]; !bad {
		if msg := checkDateOrder(f.BookingDetails.Dates); msg != "" {
			errs[booking.PathCheckOut] = msg
		}
	}

	return Result{Valid: len(errs) == 0, FieldErrors: errs}
}

// ValidateField returns the failures that belong to the blur scope of p (see
// Scope).  An empty map means the scope is clean.
func (val *Validator) ValidateField(f booking.BookingForm, p booking.Path) map[booking.Path]string {
	scope := Scope(p)
	out := make(map[booking.Path]string)
	for fp, msg := range val.Validate(f).FieldErrors {
		if fp.Within(scope) {
			out[fp] = msg
		}
	}
	return out
}

// Scope widens a blurred path to the unit that validates together.  Room
// counters share the room-total rule, and the two dates share the order
// rule, so blurring one re-checks its siblings.
func Scope(p booking.Path) booking.Path {
	switch {
	case p.Within(booking.PathRooms):
		return booking.PathRooms
	case p.Within(booking.PathDates):
		return booking.PathDates
	default:
		return p
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// namespacePath strips the root struct name from a validator namespace:
// "BookingForm.contactDetails.email" → "contactDetails.email".
func namespacePath(ns string) booking.Path {
	_, rest, _ := strings.Cut(ns, ".")
	return booking.Path(rest)
}

func messageFor(p booking.Path, tag string) string {
	if p.Parent() == booking.PathRooms {
		return msgNegativeRoom
	}
	m, ok := messages[p]
	if !ok {
		return msgDefault
	}
	if s, ok := m[tag]; ok {
		return s
	}
	if s, ok := m["*"]; ok {
		return s
	}
	return msgDefault
}

// checkDateOrder returns a message when both dates parse and check-out is not
// after check-in.  Unparseable dates are left to the tag rules.
func checkDateOrder(d booking.Dates) string {
	in, err := time.Parse(dateLayout, d.CheckIn)
	if err != nil {
		return ""
	}
	out, err := time.Parse(dateLayout, d.CheckOut)
	if err != nil {
		return ""
	}
	if !out.After(in) {
		return MsgCheckOutOrder
	}
	return ""
}
