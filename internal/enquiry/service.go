// internal/enquiry/service.go
//
// Group-booking enquiry service (mock booking backend).
//
// Context
//   The service accepts a raw JSON payload, gates it in three steps, and
//   stores it under a fresh reference number:
//
//     1. Parse.  A body that is not a JSON object is rejected outright.
//     2. Pre-check.  Missing sections and missing required leaves are
//        reported together, keyed by dot path.
//     3. Schema validation.  The same validator the form uses runs over the
//        typed payload, so client and server never disagree on a rule.
//
//   Accepted enquiries get an ID, a reference number, and a UTC timestamp,
//   are saved to the repository, and are handed to the notifier.  A
//   notifier failure is logged and never fails the submission.
//
// Latency
//   By default bookings answer after 800 ms and locations after
//   300 ms.  Both delays are configurable, run before any work, and end
//   early when the request context is cancelled.
//
//------------------------------------------------------------------------------

package enquiry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/form"
	"github.com/yanizio/groupenquiry/internal/message"
	"github.com/yanizio/groupenquiry/internal/metrics"
)

// Response texts.
const (
	MsgCreated         = "Booking submitted successfully"
	MsgInvalidJSON     = "Invalid JSON"
	MsgInvalidData     = "Invalid booking data"
	MsgValidation      = "Validation failed"
	MsgInvalidValue    = "Invalid value"
	MsgCreateFailed    = "Failed to create booking"
	MsgFetchFailed     = "Failed to fetch bookings"
	MsgNotFound        = "Booking not found"
	MsgLocationsFailed = "Failed to fetch locations"
)

// saveAttempts bounds retries on a reference-number collision.
const saveAttempts = 3

// ErrMalformed reports a body that is not a JSON object.
var ErrMalformed = errors.New("malformed booking payload")

// ValidationError carries field messages for a 400 answer.
type ValidationError struct {
	Message string
	Errors  map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%d fields)", e.Message, len(e.Errors))
}

// Meta is request context recorded with a booking.
type Meta struct {
	Locale  string
	Device  string
	Country string // logged only
}

// Latency holds the simulated delays.
type Latency struct {
	Booking   time.Duration
	Locations time.Duration
}

// Options tunes a Service.  Zero fields take defaults.
type Options struct {
	Validator  *form.Validator
	References *ReferenceGenerator
	Notifier   message.Notifier
	Latency    Latency
	Now        func() time.Time
	NewID      func() string
	Logger     *zap.SugaredLogger
}

// Service implements the booking-submission interface over a Repository.
type Service struct {
	repo      Repository
	validator *form.Validator
	refs      *ReferenceGenerator
	notifier  message.Notifier
	latency   Latency
	now       func() time.Time
	newID     func() string
	log       *zap.SugaredLogger
}

// NewService wires repo with opts.
func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:      repo,
		validator: opts.Validator,
		refs:      opts.References,
		notifier:  opts.Notifier,
		latency:   opts.Latency,
		now:       opts.Now,
		newID:     opts.NewID,
		log:       opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.validator == nil {
		s.validator = form.NewValidator()
	}
	if s.refs == nil {
		s.refs = NewReferenceGenerator(s.now)
	}
	if s.newID == nil {
		s.newID = func() string { return "booking-" + uuid.NewString() }
	}
	if s.log == nil {
		s.log = zap.S()
	}
	return s
}

// -----------------------------------------------------------------------------
// Submission
// -----------------------------------------------------------------------------

// Submit validates raw and stores it.  Rejections come back as ErrMalformed
// or *ValidationError; anything else is a server-side failure.
func (s *Service) Submit(ctx context.Context, raw []byte, meta Meta) (booking.StoredBooking, error) {
	if err := wait(ctx, s.latency.Booking); err != nil {
		return booking.StoredBooking{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return booking.StoredBooking{}, ErrMalformed
	}

	if errs := Precheck(payload); len(errs) > 0 {
		metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomePrecheck).Inc()
		s.log.Infow("booking failed pre-check", "fields", len(errs))
		return booking.StoredBooking{}, &ValidationError{Message: MsgInvalidData, Errors: errs}
	}

	var f booking.BookingForm
	if err := json.Unmarshal(raw, &f); err != nil {
		var ute *json.UnmarshalTypeError
		if !errors.As(err, &ute) {
			metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
			return booking.StoredBooking{}, ErrMalformed
		}
		metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return booking.StoredBooking{}, &ValidationError{
			Message: MsgValidation,
			Errors:  map[string][]string{ute.Field: {MsgInvalidValue}},
		}
	}

	if res := s.validator.Validate(f); !res.Valid {
		metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		errs := make(map[string][]string, len(res.FieldErrors))
		for p, msg := range res.FieldErrors {
			errs[p.String()] = []string{msg}
		}
		s.log.Infow("booking failed validation", "fields", len(errs))
		return booking.StoredBooking{}, &ValidationError{Message: MsgValidation, Errors: errs}
	}

	stored, err := s.save(ctx, f, meta)
	if err != nil {
		metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return booking.StoredBooking{}, err
	}
	metrics.BookingSubmissionsTotal.WithLabelValues(metrics.OutcomeStored).Inc()

	s.log.Infow("booking stored",
		"id", stored.ID,
		"reference", stored.ReferenceNumber,
		"rooms", f.RoomRequirements.Rooms.Total(),
		"locale", meta.Locale,
		"device", meta.Device,
		"country", meta.Country,
	)

	if s.notifier != nil {
		if err := s.notifier.BookingStored(ctx, stored); err != nil {
			s.log.Warnw("booking notification failed", "reference", stored.ReferenceNumber, "err", err)
		}
	}
	return stored, nil
}

func (s *Service) save(ctx context.Context, f booking.BookingForm, meta Meta) (booking.StoredBooking, error) {
	for attempt := 1; ; attempt++ {
		ref, err := s.refs.Next()
		if err != nil {
			return booking.StoredBooking{}, err
		}
		b := booking.StoredBooking{
			ID:              s.newID(),
			ReferenceNumber: ref,
			SubmittedAt:     s.now().UTC(),
			Locale:          meta.Locale,
			Device:          meta.Device,
			Data:            f,
		}
		err = s.repo.Save(ctx, b)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrDuplicateReference) || attempt == saveAttempts {
			return booking.StoredBooking{}, fmt.Errorf("save booking: %w", err)
		}
		s.log.Warnw("reference collision, retrying", "reference", ref, "attempt", attempt)
	}
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// List returns every stored booking.
func (s *Service) List(ctx context.Context) ([]booking.StoredBooking, error) {
	return s.repo.List(ctx)
}

// ByReference returns one booking.  Strings that cannot be reference numbers
// are ErrNotFound without touching the repository.
func (s *Service) ByReference(ctx context.Context, ref string) (booking.StoredBooking, error) {
	if !ReferencePattern.MatchString(ref) {
		return booking.StoredBooking{}, ErrNotFound
	}
	return s.repo.ByReference(ctx, ref)
}

// Locations returns the hotel selector entries after the simulated delay.
func (s *Service) Locations(ctx context.Context) ([]booking.Location, error) {
	if err := wait(ctx, s.latency.Locations); err != nil {
		return nil, err
	}
	out := make([]booking.Location, len(locations))
	copy(out, locations)
	return out, nil
}

// wait sleeps for d or until ctx ends.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
