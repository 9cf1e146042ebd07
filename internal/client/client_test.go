package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/enquiry"
	"github.com/yanizio/groupenquiry/internal/form"
)

func sampleEnquiry() booking.BookingForm {
	f := booking.Defaults()
	f.ContactDetails = booking.ContactDetails{
		Title: "Mr", FirstName: "John", LastName: "Doe",
		Email: "john.doe@example.com", PhoneNumber: "1234567890",
	}
	f.BookingDetails = booking.BookingDetails{
		BookerType: "business", PurposeOfStay: "leisure", ReasonForVisit: "wedding",
		PreferredHotel: "Premier Inn London",
		Dates:          booking.Dates{CheckIn: "2025-06-01", CheckOut: "2025-06-03"},
		PackageType:    "meal-deal",
	}
	f.RoomRequirements = booking.RoomRequirements{
		IsTravellingWithChild: true,
		IsAccessibleRoom:      true,
		Rooms:                 booking.Rooms{SingleOccupancy: 1, DoubleOccupancy: 2, TwinRooms: 1},
	}
	f.AdditionalInformation.Comments = "2 rooms night one, 3 rooms night two"
	return f
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url, Options{RetryWait: time.Millisecond, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	svc := enquiry.NewService(enquiry.NewMemoryRepository(), enquiry.Options{Logger: zap.NewNop().Sugar()})
	srv := httptest.NewServer(enquiry.NewRouter(enquiry.NewHandler(svc), enquiry.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitThroughOrchestrator_Accepted(t *testing.T) {
	srv := newBackend(t)
	c := newClient(t, srv.URL)

	store := form.NewStore(sampleEnquiry())
	o := form.NewOrchestrator(store, c, form.Options{Logger: zap.NewNop().Sugar()})

	res := o.Submit(context.Background())
	if res.Outcome != form.OutcomeAccepted {
		t.Fatalf("outcome = %v banner = %q errors = %v", res.Outcome, res.Banner, res.FieldErrors)
	}
	ref := res.Confirmation.ReferenceNumber
	if !enquiry.ReferencePattern.MatchString(ref) {
		t.Fatalf("reference %q does not match", ref)
	}
	if res.Confirmation.SubmittedAt.IsZero() {
		t.Fatalf("submission time missing")
	}
	if !reflect.DeepEqual(store.Values(), booking.Defaults().Values()) {
		t.Fatalf("store not reset after success")
	}

	got, err := c.Booking(context.Background(), ref)
	if err != nil {
		t.Fatalf("Booking: %v", err)
	}
	if got.Data != sampleEnquiry() {
		t.Fatalf("stored payload differs: %+v", got.Data)
	}
	list, err := c.Bookings(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("Bookings = %v, %v", list, err)
	}
	if _, err := c.Booking(context.Background(), "PI-000000-0000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing booking err = %v", err)
	}
}

func TestSubmitThroughOrchestrator_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to create booking"}`))
	}))
	defer srv.Close()

	store := form.NewStore(booking.Defaults())
	store.Reset(sampleEnquiry())
	o := form.NewOrchestrator(store, newClient(t, srv.URL), form.Options{Logger: zap.NewNop().Sugar()})

	res := o.Submit(context.Background())
	if res.Outcome != form.OutcomeRejected {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if o.Banner() != "Failed to create booking" {
		t.Fatalf("banner = %q", o.Banner())
	}
	if o.IsSubmitting() {
		t.Fatalf("still submitting")
	}
	if store.Form() != sampleEnquiry() {
		t.Fatalf("values lost after server error")
	}
}

func TestSubmitBooking_ErrorMapping(t *testing.T) {
	var status atomic.Int32
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/bookings" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	status.Store(http.StatusBadRequest)
	body.Store(`{"success":false,"message":"Validation failed","errors":{"contactDetails.email":["Please enter a valid email address"]}}`)
	_, err := c.SubmitBooking(context.Background(), sampleEnquiry())
	var rej *booking.RejectedError
	if !errors.As(err, &rej) || rej.StatusCode != 400 {
		t.Fatalf("err = %v", err)
	}
	if got := rej.Errors["contactDetails.email"]; len(got) != 1 {
		t.Fatalf("field errors = %v", rej.Errors)
	}

	status.Store(http.StatusBadGateway)
	body.Store(`<html>bad gateway</html>`)
	if _, err := c.SubmitBooking(context.Background(), sampleEnquiry()); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("non-JSON err = %v", err)
	}

	status.Store(http.StatusCreated)
	body.Store(`{"success":true,"message":"ok"}`)
	if _, err := c.SubmitBooking(context.Background(), sampleEnquiry()); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("missing reference err = %v", err)
	}
}

func TestLocationsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"leeds-city","name":"Leeds City Centre"}]}`))
	}))
	defer srv.Close()

	locs, err := newClient(t, srv.URL).Locations(context.Background())
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	if len(locs) != 1 || locs[0].ID != "leeds-city" {
		t.Fatalf("locations = %v", locs)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"ftp://example.com", "://nope", "localhost:8080"} {
		if _, err := New(u, Options{}); err == nil {
			t.Errorf("New(%q) should fail", u)
		}
	}
}
