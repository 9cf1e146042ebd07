// internal/booking/wire.go
//
// JSON envelopes shared by the HTTP client and the mock backend.
//
// Context
// -------
// The booking-submission interface answers with one envelope shape for both
// outcomes.  On success it carries the reference number and the stored
// record; on failure it carries a message and, for validation failures, a
// path-keyed list of messages per field.

package booking

import (
	"fmt"
	"time"
)

// StoredBooking is a persisted enquiry.
type StoredBooking struct {
	ID              string      `json:"id"`
	ReferenceNumber string      `json:"referenceNumber"`
	SubmittedAt     time.Time   `json:"submittedAt"`
	Locale          string      `json:"locale,omitempty"`
	Device          string      `json:"device,omitempty"`
	Data            BookingForm `json:"data"`
}

// SubmitResponse is the body of POST /api/bookings in both directions.
type SubmitResponse struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message,omitempty"`
	ReferenceNumber string              `json:"referenceNumber,omitempty"`
	Data            *StoredBooking      `json:"data,omitempty"`
	SubmittedAt     *time.Time          `json:"submittedAt,omitempty"`
	Errors          map[string][]string `json:"errors,omitempty"`
}

// Receipt is what a caller keeps after an accepted submission.
type Receipt struct {
	ReferenceNumber string
	SubmittedAt     time.Time
	Message         string
}

// Location is one entry of the hotel selector.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RejectedError reports a non-2xx answer from the booking service.  Errors
// holds structured field messages when the server supplied them.
type RejectedError struct {
	StatusCode int
	Message    string
	Errors     map[string][]string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("booking rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("booking rejected (%d)", e.StatusCode)
}

// Envelope is the success body of the read endpoints:
// {"success": true, "data": ...}.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}
