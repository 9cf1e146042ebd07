// internal/message/message.go
//
// Enquiry confirmations: outbound message stub.
//
// Context
//   After a booking is stored the service hands the record to a Notifier.
//   The default Queue builds a confirmation email for the contact on the
//   enquiry and, until a real mail queue is wired, logs the payload and
//   returns nil so submissions never block on delivery.
//
//   Replace Queue.EnqueueEmail with a publisher for your queue of choice
//   when ready; the Notifier contract stays the same.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// Email represents a basic outbound email job.
type Email struct {
	To      []string
	Subject string
	Text    string
}

// Notifier is told about every stored booking.
type Notifier interface {
	BookingStored(ctx context.Context, b booking.StoredBooking) error
}

// Queue is the log-backed Notifier.
type Queue struct {
	log *zap.SugaredLogger
}

// NewQueue returns a Queue that logs through log, or zap.S() when nil.
func NewQueue(log *zap.SugaredLogger) *Queue {
	if log == nil {
		log = zap.S()
	}
	return &Queue{log: log}
}

// BookingStored enqueues the confirmation email for b.
func (q *Queue) BookingStored(ctx context.Context, b booking.StoredBooking) error {
	return q.EnqueueEmail(ctx, Confirmation(b))
}

// EnqueueEmail logs the email payload.  Swap with real queue publisher later.
func (q *Queue) EnqueueEmail(ctx context.Context, msg Email) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email %q has no recipients", msg.Subject)
	}
	q.log.Infow("queue email",
		"to", msg.To,
		"subject", msg.Subject,
		"len_text", len(msg.Text),
	)
	return nil
}

// Confirmation renders the acknowledgement sent to the enquiry contact.
func Confirmation(b booking.StoredBooking) Email {
	c := b.Data.ContactDetails
	d := b.Data.BookingDetails

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s %s,\n\n", c.Title, c.LastName)
	fmt.Fprintf(&sb, "Thank you for your group booking enquiry.  Your reference number is %s.\n\n", b.ReferenceNumber)
	fmt.Fprintf(&sb, "Hotel:     %s\n", d.PreferredHotel)
	fmt.Fprintf(&sb, "Check-in:  %s\n", d.Dates.CheckIn)
	fmt.Fprintf(&sb, "Check-out: %s\n", d.Dates.CheckOut)
	fmt.Fprintf(&sb, "Rooms:     %d\n\n", b.Data.RoomRequirements.Rooms.Total())
	sb.WriteString("Our groups team will be in touch shortly.\n")

	return Email{
		To:      []string{c.Email},
		Subject: "Your group booking enquiry " + b.ReferenceNumber,
		Text:    sb.String(),
	}
}
