// internal/enquiry/handler.go
//
// HTTP surface of the booking backend.
//
// Routes (mounted under /api)
//   POST /bookings              create; 201, 400, or 500
//   GET  /bookings              list every stored booking
//   GET  /bookings/{reference}  one booking or 404
//   GET  /locations             hotel selector entries
//
// Every answer uses the envelope {success, message?, ...}.  Validation
// failures add errors: {"<dot path>": ["message", ...]}.
//
//------------------------------------------------------------------------------

package enquiry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/requestinfo"
)

// maxBodyBytes caps a booking payload.  Comments are limited to 1000
// characters, so a legitimate enquiry is a few kilobytes.
const maxBodyBytes = 64 << 10

// Handler serves the booking routes.
type Handler struct {
	svc *Service
	log *zap.SugaredLogger
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, log: svc.log}
}

// Routes returns a router for mounting under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/bookings", h.createBooking)
	r.Get("/bookings", h.listBookings)
	r.Get("/bookings/{reference}", h.getBooking)
	r.Get("/locations", h.listLocations)
	return r
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, booking.SubmitResponse{Message: MsgInvalidJSON})
		return
	}

	var meta Meta
	if info := requestinfo.FromContext(r.Context()); info != nil {
		meta = Meta{Locale: info.Locale, Device: info.Device, Country: info.Country}
	}

	stored, err := h.svc.Submit(r.Context(), raw, meta)
	var verr *ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, booking.SubmitResponse{
			Success:         true,
			Message:         MsgCreated,
			ReferenceNumber: stored.ReferenceNumber,
			Data:            &stored,
			SubmittedAt:     &stored.SubmittedAt,
		})
	case errors.Is(err, ErrMalformed):
		writeJSON(w, http.StatusBadRequest, booking.SubmitResponse{Message: MsgInvalidJSON})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, booking.SubmitResponse{
			Message: verr.Message,
			Errors:  verr.Errors,
		})
	default:
		h.fail(w, r, err, MsgCreateFailed)
	}
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, err, MsgFetchFailed)
		return
	}
	writeJSON(w, http.StatusOK, booking.Envelope[[]booking.StoredBooking]{Success: true, Data: list})
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.ByReference(r.Context(), chi.URLParam(r, "reference"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, booking.Envelope[booking.StoredBooking]{Success: true, Data: b})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, booking.SubmitResponse{Message: MsgNotFound})
	default:
		h.fail(w, r, err, MsgFetchFailed)
	}
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.Locations(r.Context())
	if err != nil {
		h.fail(w, r, err, MsgLocationsFailed)
		return
	}
	writeJSON(w, http.StatusOK, booking.Envelope[[]booking.Location]{Success: true, Data: locs})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// fail logs err and answers 500, or 503 when the client gave up first.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
		h.log.Infow("request abandoned", "path", r.URL.Path, "err", err)
	} else {
		h.log.Errorw("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, booking.SubmitResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Debugw("response write failed", "err", err)
	}
}
