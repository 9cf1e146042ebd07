package form

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yanizio/groupenquiry/internal/booking"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	got     booking.BookingForm
	receipt booking.Receipt
	err     error
	block   chan struct{} // when set, SubmitBooking waits for it to close
	entered chan struct{}
}

func (f *fakeSubmitter) SubmitBooking(ctx context.Context, form booking.BookingForm) (booking.Receipt, error) {
	f.mu.Lock()
	f.calls++
	f.got = form
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.receipt, f.err
}

type recordingViewport struct {
	events []string
}

func (r *recordingViewport) ScrollToTop()            { r.events = append(r.events, "top") }
func (r *recordingViewport) ScrollToCenter(a string) { r.events = append(r.events, "center:"+a) }
func (r *recordingViewport) Focus(p booking.Path)    { r.events = append(r.events, "focus:"+p.String()) }

func loadForm(s *Store, f booking.BookingForm) {
	s.Reset(f)
}

func TestSubmit_Accepted(t *testing.T) {
	at := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	sub := &fakeSubmitter{receipt: booking.Receipt{
		ReferenceNumber: "PI-250520-AB12",
		SubmittedAt:     at,
		Message:         "Booking submitted successfully",
	}}
	vp := &recordingViewport{}
	store := NewStore(booking.Defaults())
	loadForm(store, sampleEnquiry())

	o := NewOrchestrator(store, sub, Options{Viewport: vp})
	res := o.Submit(context.Background())

	if res.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %v, want accepted", res.Outcome)
	}
	if sub.calls != 1 || sub.got != sampleEnquiry() {
		t.Fatalf("submitter got %d calls with %+v", sub.calls, sub.got)
	}
	if res.Confirmation == nil || res.Confirmation.ReferenceNumber != "PI-250520-AB12" {
		t.Fatalf("confirmation = %+v", res.Confirmation)
	}
	if !o.Confirmation().SubmittedAt.Equal(at) {
		t.Fatalf("timestamp not kept")
	}
	if !reflect.DeepEqual(store.Values(), booking.Defaults().Values()) {
		t.Fatalf("store not reset to defaults")
	}
	if o.IsSubmitting() || o.Banner() != "" {
		t.Fatalf("submitting=%v banner=%q", o.IsSubmitting(), o.Banner())
	}
	if want := []string{"center:" + AnchorConfirmation}; !reflect.DeepEqual(vp.events, want) {
		t.Fatalf("viewport events = %v, want %v", vp.events, want)
	}
}

func TestSubmit_InvalidNeverCallsSubmitter(t *testing.T) {
	sub := &fakeSubmitter{}
	vp := &recordingViewport{}
	store := NewStore(booking.Defaults())
	f := sampleEnquiry()
	f.RoomRequirements.Rooms = booking.Rooms{}
	loadForm(store, f)

	o := NewOrchestrator(store, sub, Options{Viewport: vp})
	o.Sections().Open(Contact)
	res := o.Submit(context.Background())

	if res.Outcome != OutcomeInvalid {
		t.Fatalf("outcome = %v, want invalid", res.Outcome)
	}
	if sub.calls != 0 {
		t.Fatalf("submitter called %d times", sub.calls)
	}
	if msg, _ := store.FieldError(booking.PathRooms); msg != MsgNoRooms {
		t.Fatalf("rooms error = %q", msg)
	}
	if want := []string{"Room selection: " + MsgNoRooms}; !reflect.DeepEqual(o.Summary(), want) {
		t.Fatalf("summary = %v, want %v", o.Summary(), want)
	}
	if o.Sections().Expanded() != Rooms {
		t.Fatalf("failing panel not revealed, got %v", o.Sections().Expanded())
	}
	want := []string{"top", "focus:" + booking.PathRooms.String()}
	if !reflect.DeepEqual(vp.events, want) {
		t.Fatalf("viewport events = %v, want %v", vp.events, want)
	}
	if v, _ := store.Value(booking.PathFirstName); v != "John" {
		t.Fatalf("values must be kept, firstName = %v", v)
	}
}

func TestSubmit_ServerRejection(t *testing.T) {
	sub := &fakeSubmitter{err: &booking.RejectedError{
		StatusCode: 500,
		Message:    "Internal server error",
	}}
	store := NewStore(booking.Defaults())
	loadForm(store, sampleEnquiry())

	o := NewOrchestrator(store, sub, Options{})
	res := o.Submit(context.Background())

	if res.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", res.Outcome)
	}
	if o.Banner() != "Internal server error" {
		t.Fatalf("banner = %q", o.Banner())
	}
	if o.IsSubmitting() {
		t.Fatalf("still submitting after rejection")
	}
	if store.Form() != sampleEnquiry() {
		t.Fatalf("values changed after rejection")
	}
	if o.Confirmation() != nil {
		t.Fatalf("unexpected confirmation")
	}
}

func TestSubmit_ServerFieldErrors(t *testing.T) {
	sub := &fakeSubmitter{err: &booking.RejectedError{
		StatusCode: 400,
		Message:    "Validation failed",
		Errors: map[string][]string{
			"contactDetails.email": {"Email already used", "second"},
			"bookingDetails.dates": {},
		},
	}}
	vp := &recordingViewport{}
	store := NewStore(booking.Defaults())
	loadForm(store, sampleEnquiry())

	o := NewOrchestrator(store, sub, Options{Viewport: vp, Locale: "de"})
	res := o.Submit(context.Background())

	if msg, _ := store.FieldError(booking.PathEmail); msg != "Email already used" {
		t.Fatalf("email error = %q", msg)
	}
	if _, ok := store.FieldError(booking.PathDates); ok {
		t.Fatalf("empty message list must not set an error")
	}
	if want := []string{"E-Mail-Adresse: Email already used"}; !reflect.DeepEqual(res.Summary, want) {
		t.Fatalf("summary = %v, want %v", res.Summary, want)
	}
	if o.Sections().Expanded() != Contact {
		t.Fatalf("expanded = %v", o.Sections().Expanded())
	}
	if vp.events[0] != "top" {
		t.Fatalf("viewport events = %v", vp.events)
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("dial tcp: connection refused")}
	store := NewStore(booking.Defaults())
	loadForm(store, sampleEnquiry())

	o := NewOrchestrator(store, sub, Options{})
	res := o.Submit(context.Background())

	if res.Outcome != OutcomeFailed || o.Banner() != MsgGenericFailure {
		t.Fatalf("outcome = %v banner = %q", res.Outcome, o.Banner())
	}
	if store.Form() != sampleEnquiry() {
		t.Fatalf("values changed after failure")
	}
}

func TestSubmit_BusyWhilePending(t *testing.T) {
	sub := &fakeSubmitter{
		block:   make(chan struct{}),
		entered: make(chan struct{}),
		receipt: booking.Receipt{ReferenceNumber: "PI-250520-ZZ99"},
	}
	store := NewStore(booking.Defaults())
	loadForm(store, sampleEnquiry())
	o := NewOrchestrator(store, sub, Options{})

	done := make(chan SubmissionResult)
	go func() { done <- o.Submit(context.Background()) }()

	<-sub.entered
	if !o.IsSubmitting() {
		t.Fatalf("IsSubmitting false while request outstanding")
	}
	if res := o.Submit(context.Background()); res.Outcome != OutcomeBusy {
		t.Fatalf("second submit outcome = %v, want busy", res.Outcome)
	}

	close(sub.block)
	if res := <-done; res.Outcome != OutcomeAccepted {
		t.Fatalf("first submit outcome = %v", res.Outcome)
	}
	if sub.calls != 1 {
		t.Fatalf("submitter called %d times, want 1", sub.calls)
	}
}

func TestBlur_ReplacesScopeErrors(t *testing.T) {
	store := NewStore(booking.Defaults())
	o := NewOrchestrator(store, &fakeSubmitter{}, Options{})

	errs := o.Blur(booking.PathFirstName)
	if errs[booking.PathFirstName] != "Please enter your first name" {
		t.Fatalf("blur errors = %v", errs)
	}
	if !store.Touched(booking.PathFirstName) {
		t.Fatalf("blur must mark the field touched")
	}
	if _, ok := store.FieldError(booking.PathEmail); ok {
		t.Fatalf("blur must not report fields outside its scope")
	}

	store.SetValue(booking.PathFirstName, "Ada")
	if errs := o.Blur(booking.PathFirstName); len(errs) != 0 {
		t.Fatalf("fixed field still failing: %v", errs)
	}
	if _, ok := store.FieldError(booking.PathFirstName); ok {
		t.Fatalf("stale error left on field")
	}

	store.AdjustCount(booking.PathTwinRooms, 1)
	store.AdjustCount(booking.PathTwinRooms, -1)
	if errs := o.Blur(booking.PathTwinRooms); errs[booking.PathRooms] != MsgNoRooms {
		t.Fatalf("counter blur must check the room total, got %v", errs)
	}
}
