// internal/form/submit.go
//
// Enquiry form: submission orchestrator.
//
// Context
//   The orchestrator ties the store, the validator, and the section
//   controller to the booking-submission interface.  One call to Submit runs
//   the whole flow:
//
//     1. Validate the entire form.  On failure, write every message into the
//        store, build the summary banner, scroll to the top, open the panel of
//        the first failing field, and stop.  The network is not touched.
//     2. Mark the submission in flight and clear the previous banner.
//     3. Send the typed form through the Submitter.
//     4. On rejection or transport failure, set the banner and keep values.
//        Structured server errors are mapped onto fields, first message wins.
//     5. On success, reset the store to defaults, keep the reference number
//        and timestamp, and centre the confirmation in the viewport.
//
//   Only one submission may be in flight.  A Submit call that arrives while
//   another is pending returns OutcomeBusy without side effects.  There is no
//   timeout; the caller's context is the only way to abandon a request.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// User-facing texts owned by the orchestrator.
const (
	MsgGenericFailure  = "Something went wrong. Please try again."
	MsgSummaryHeading  = "Please fix the following errors:"
	AnchorConfirmation = "confirmation"
)

// Submitter is the booking-submission interface.  A non-2xx answer must be
// reported as *booking.RejectedError; any other error is treated as a
// transport failure.
type Submitter interface {
	SubmitBooking(ctx context.Context, f booking.BookingForm) (booking.Receipt, error)
}

// Viewport receives the scroll and focus side effects of a submission.
type Viewport interface {
	ScrollToTop()
	ScrollToCenter(anchor string)
	Focus(p booking.Path)
}

// NopViewport ignores every call.
type NopViewport struct{}

func (NopViewport) ScrollToTop()          {}
func (NopViewport) ScrollToCenter(string) {}
func (NopViewport) Focus(booking.Path)    {}

// Outcome classifies a Submit call.
type Outcome int

const (
	OutcomeAccepted Outcome = iota // stored; store reset
	OutcomeInvalid                 // client-side validation failed; no request sent
	OutcomeRejected                // server answered non-2xx
	OutcomeFailed                  // transport failure or unreadable answer
	OutcomeBusy                    // another submission is in flight
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Confirmation is shown after an accepted submission.
type Confirmation struct {
	ReferenceNumber string
	SubmittedAt     time.Time
	Message         string
}

// SubmissionResult describes what Submit did.
type SubmissionResult struct {
	Outcome      Outcome
	Confirmation *Confirmation
	Banner       string
	FieldErrors  map[booking.Path]string
	Summary      []string
}

// Options tunes an Orchestrator.  Zero fields take defaults.
type Options struct {
	Catalogue *Catalogue
	Validator *Validator
	Sections  *Sections
	Viewport  Viewport
	Defaults  *booking.BookingForm
	Locale    string
	Logger    *zap.SugaredLogger
}

// Orchestrator runs blur validation and submissions against one store.
type Orchestrator struct {
	store     *Store
	submitter Submitter
	validator *Validator
	sections  *Sections
	viewport  Viewport
	cat       *Catalogue
	defaults  booking.BookingForm
	locale    string
	log       *zap.SugaredLogger

	mu           sync.Mutex
	inFlight     bool // claimed for the whole Submit call
	submitting   bool // true only while the request is outstanding
	banner       string
	summary      []string
	confirmation *Confirmation
}

// NewOrchestrator wires store and submitter with opts.
func NewOrchestrator(store *Store, sub Submitter, opts Options) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		submitter: sub,
		validator: opts.Validator,
		sections:  opts.Sections,
		viewport:  opts.Viewport,
		cat:       opts.Catalogue,
		locale:    opts.Locale,
		log:       opts.Logger,
		defaults:  booking.Defaults(),
	}
	if opts.Defaults != nil {
		o.defaults = *opts.Defaults
	}
	if o.cat == nil {
		o.cat = DefaultCatalogue()
	}
	if o.validator == nil {
		o.validator = NewValidator()
	}
	if o.sections == nil {
		o.sections = NewSections(o.cat)
	}
	if o.viewport == nil {
		o.viewport = NopViewport{}
	}
	if o.locale == "" {
		o.locale = FallbackLocale
	}
	if o.log == nil {
		o.log = zap.S()
	}
	return o
}

// -----------------------------------------------------------------------------
// Field events
// -----------------------------------------------------------------------------

// Blur marks p touched and re-validates its scope, replacing any messages
// recorded there.  It returns the messages now in force for the scope.
func (o *Orchestrator) Blur(p booking.Path) map[booking.Path]string {
	o.store.Touch(p)
	errs := o.validator.ValidateField(o.store.Form(), p)
	o.store.clearErrorsWithin(Scope(p))
	for fp, msg := range errs {
		o.store.SetFieldError(fp, msg)
	}
	return errs
}

// -----------------------------------------------------------------------------
// Submission
// -----------------------------------------------------------------------------

// Submit validates the whole form and, when it passes, sends it.
func (o *Orchestrator) Submit(ctx context.Context) SubmissionResult {
	if !o.claim() {
		o.log.Debugw("submit ignored while pending")
		return SubmissionResult{Outcome: OutcomeBusy}
	}
	defer o.release()

	f := o.store.Form()
	res := o.validator.Validate(f)
	if !res.Valid {
		return o.invalid(res.FieldErrors)
	}

	o.mu.Lock()
	o.submitting = true
	o.banner = ""
	o.summary = nil
	o.confirmation = nil
	o.mu.Unlock()

	receipt, err := o.submitter.SubmitBooking(ctx, f)

	o.mu.Lock()
	o.submitting = false
	o.mu.Unlock()

	if err != nil {
		return o.failed(err)
	}
	return o.accepted(receipt)
}

func (o *Orchestrator) invalid(errs map[booking.Path]string) SubmissionResult {
	o.store.ClearErrors()
	for p, msg := range errs {
		o.store.SetFieldError(p, msg)
	}
	summary := o.summarize(errs)

	o.mu.Lock()
	o.summary = summary
	o.mu.Unlock()

	o.log.Infow("enquiry blocked by validation", "fields", len(errs))
	o.viewport.ScrollToTop()
	o.focusFirst(errs)

	return SubmissionResult{Outcome: OutcomeInvalid, FieldErrors: errs, Summary: summary}
}

func (o *Orchestrator) failed(err error) SubmissionResult {
	var rej *booking.RejectedError
	if !errors.As(err, &rej) {
		o.log.Errorw("enquiry submission failed", "err", err)
		o.setBanner(MsgGenericFailure, nil)
		o.viewport.ScrollToTop()
		return SubmissionResult{Outcome: OutcomeFailed, Banner: MsgGenericFailure}
	}

	banner := rej.Message
	if banner == "" {
		banner = MsgGenericFailure
	}

	fieldErrs := make(map[booking.Path]string, len(rej.Errors))
	for key, msgs := range rej.Errors {
		if len(msgs) == 0 {
			continue
		}
		p := booking.Path(key)
		o.store.SetFieldError(p, msgs[0])
		fieldErrs[p] = msgs[0]
	}
	summary := o.summarize(fieldErrs)
	o.setBanner(banner, summary)

	o.log.Warnw("enquiry rejected by server",
		"status", rej.StatusCode, "message", rej.Message, "fields", len(fieldErrs))
	o.viewport.ScrollToTop()
	o.focusFirst(fieldErrs)

	return SubmissionResult{
		Outcome:     OutcomeRejected,
		Banner:      banner,
		FieldErrors: fieldErrs,
		Summary:     summary,
	}
}

func (o *Orchestrator) accepted(r booking.Receipt) SubmissionResult {
	o.store.Reset(o.defaults)
	conf := &Confirmation{
		ReferenceNumber: r.ReferenceNumber,
		SubmittedAt:     r.SubmittedAt,
		Message:         r.Message,
	}

	o.mu.Lock()
	o.confirmation = conf
	o.mu.Unlock()

	o.log.Infow("enquiry accepted", "reference", r.ReferenceNumber)
	o.viewport.ScrollToCenter(AnchorConfirmation)

	c := *conf
	return SubmissionResult{Outcome: OutcomeAccepted, Confirmation: &c}
}

// -----------------------------------------------------------------------------
// State accessors
// -----------------------------------------------------------------------------

// IsSubmitting reports whether a request is outstanding.  The submit control
// is disabled while it returns true.
func (o *Orchestrator) IsSubmitting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.submitting
}

// Banner returns the submission-level error message, if any.
func (o *Orchestrator) Banner() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.banner
}

// Summary returns the "<Label>: <message>" lines of the last failed attempt.
func (o *Orchestrator) Summary() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.summary...)
}

// Confirmation returns the last accepted submission, or nil.
func (o *Orchestrator) Confirmation() *Confirmation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.confirmation == nil {
		return nil
	}
	c := *o.confirmation
	return &c
}

// Store returns the store this orchestrator drives.
func (o *Orchestrator) Store() *Store { return o.store }

// Sections returns the section controller.
func (o *Orchestrator) Sections() *Sections { return o.sections }

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (o *Orchestrator) claim() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return false
	}
	o.inFlight = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

func (o *Orchestrator) setBanner(msg string, summary []string) {
	o.mu.Lock()
	o.banner = msg
	o.summary = summary
	o.mu.Unlock()
}

// summarize renders one line per failing path in form order.
func (o *Orchestrator) summarize(errs map[booking.Path]string) []string {
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(errs))
	for _, p := range sortedPaths(errs) {
		lines = append(lines, o.cat.Label(p, o.locale)+": "+errs[p])
	}
	return lines
}

func (o *Orchestrator) focusFirst(errs map[booking.Path]string) {
	paths := sortedPaths(errs)
	if len(paths) == 0 {
		return
	}
	if o.sections.Reveal(paths[0]) {
		o.viewport.Focus(paths[0])
	}
}
