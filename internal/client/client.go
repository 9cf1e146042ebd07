// internal/client/client.go
//
// HTTP client for the booking-submission interface.
//
// Context
//   Client implements form.Submitter against the enquiry API and adds the
//   read endpoints (locations, bookings).  Status codes map onto errors the
//   orchestrator understands:
//
//     •  2xx with a success envelope     →  booking.Receipt
//     •  non-2xx with a JSON envelope    →  *booking.RejectedError
//     •  anything unreadable             →  a wrapped ErrUnreadable
//
//   POSTs are sent exactly once; a retried submission could store the same
//   enquiry twice.  GETs go through go-retryablehttp and retry on transport
//   errors and 5xx answers.
//
//------------------------------------------------------------------------------

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Errors returned by Client.
var (
	ErrUnreadable = errors.New("unreadable response from booking service")
	ErrNotFound   = errors.New("booking not found")
)

// Options tunes a Client.  Zero fields take defaults.
type Options struct {
	HTTPClient *http.Client  // default: 30 s timeout
	Retries    int           // GET retries; default 2, negative disables
	RetryWait  time.Duration // minimum back-off between GET retries; default 200 ms
	Logger     *zap.SugaredLogger
}

// Client talks to one enquiry API base URL, e.g. "http://localhost:8080".
type Client struct {
	base   *url.URL
	writes *http.Client
	reads  *http.Client
	log    *zap.SugaredLogger
}

// New parses baseURL and returns a Client.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	log := opts.Logger
	if log == nil {
		log = zap.S()
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.Logger = leveled{log}
	rc.RetryMax = 2
	if opts.Retries != 0 {
		rc.RetryMax = max(opts.Retries, 0)
	}
	rc.RetryWaitMin = 200 * time.Millisecond
	if opts.RetryWait > 0 {
		rc.RetryWaitMin = opts.RetryWait
	}
	rc.RetryWaitMax = 10 * rc.RetryWaitMin
	// Hand the last response back instead of a generic "giving up" error,
	// so a final 5xx still carries the server's message.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{base: u, writes: hc, reads: rc.StandardClient(), log: log}, nil
}

// -----------------------------------------------------------------------------
// Booking submission
// -----------------------------------------------------------------------------

// SubmitBooking posts f to /api/bookings.
func (c *Client) SubmitBooking(ctx context.Context, f booking.BookingForm) (booking.Receipt, error) {
	payload, err := json.Marshal(f)
	if err != nil {
		return booking.Receipt{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("api", "bookings"), bytes.NewReader(payload))
	if err != nil {
		return booking.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var body booking.SubmitResponse
	status, err := c.do(c.writes, req, &body)
	if err != nil {
		return booking.Receipt{}, err
	}
	if status/100 != 2 || !body.Success {
		return booking.Receipt{}, &booking.RejectedError{
			StatusCode: status,
			Message:    body.Message,
			Errors:     body.Errors,
		}
	}
	if body.ReferenceNumber == "" {
		return booking.Receipt{}, fmt.Errorf("%w: success without reference number", ErrUnreadable)
	}

	r := booking.Receipt{ReferenceNumber: body.ReferenceNumber, Message: body.Message}
	switch {
	case body.SubmittedAt != nil:
		r.SubmittedAt = *body.SubmittedAt
	case body.Data != nil:
		r.SubmittedAt = body.Data.SubmittedAt
	}
	c.log.Debugw("booking accepted", "reference", r.ReferenceNumber, "status", status)
	return r, nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Locations fetches the hotel selector entries.
func (c *Client) Locations(ctx context.Context) ([]booking.Location, error) {
	var env booking.Envelope[[]booking.Location]
	if err := c.get(ctx, &env, "api", "locations"); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Bookings lists every stored booking.
func (c *Client) Bookings(ctx context.Context) ([]booking.StoredBooking, error) {
	var env booking.Envelope[[]booking.StoredBooking]
	if err := c.get(ctx, &env, "api", "bookings"); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Booking fetches one booking by reference number.
func (c *Client) Booking(ctx context.Context, ref string) (booking.StoredBooking, error) {
	var env booking.Envelope[booking.StoredBooking]
	err := c.get(ctx, &env, "api", "bookings", ref)
	var rej *booking.RejectedError
	if errors.As(err, &rej) && rej.StatusCode == http.StatusNotFound {
		return booking.StoredBooking{}, ErrNotFound
	}
	return env.Data, err
}

// get decodes a success envelope into out, or returns *booking.RejectedError.
func (c *Client) get(ctx context.Context, out any, segs ...string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(segs...), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	raw, status, err := c.read(c.reads, req)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		var body booking.SubmitResponse
		_ = json.Unmarshal(raw, &body)
		return &booking.RejectedError{StatusCode: status, Message: body.Message}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Transport helpers
// -----------------------------------------------------------------------------

// do sends req and decodes the JSON body into out whatever the status.
func (c *Client) do(hc *http.Client, req *http.Request, out any) (int, error) {
	raw, status, err := c.read(hc, req)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warnw("booking service answered non-JSON", "status", status, "err", err)
		return 0, fmt.Errorf("%w (status %d): %v", ErrUnreadable, status, err)
	}
	return status, nil
}

func (c *Client) read(hc *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) endpoint(segs ...string) string {
	return c.base.JoinPath(segs...).String()
}

// leveled adapts a sugared logger to retryablehttp.LeveledLogger.
type leveled struct{ s *zap.SugaredLogger }

func (l leveled) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...any)  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
