package enquiry

import (
	"context"
	"errors"
	"sync"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/metrics"
)

// Repository errors.
var (
	ErrNotFound           = errors.New("booking not found")
	ErrDuplicateReference = errors.New("duplicate reference number")
)

// Repository persists stored bookings.  Implementations must be safe for
// concurrent use.
type Repository interface {
	// Save stores b.  It returns ErrDuplicateReference when the reference
	// number is already taken.
	Save(ctx context.Context, b booking.StoredBooking) error
	// List returns every booking in submission order.
	List(ctx context.Context) ([]booking.StoredBooking, error)
	// ByReference returns the booking with reference ref, or ErrNotFound.
	ByReference(ctx context.Context, ref string) (booking.StoredBooking, error)
}

// MemoryRepository keeps bookings for the life of the process.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []booking.StoredBooking
	byRef map[string]int
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byRef: make(map[string]int)}
}

func (m *MemoryRepository) Save(_ context.Context, b booking.StoredBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byRef[b.ReferenceNumber]; dup {
		return ErrDuplicateReference
	}
	m.byRef[b.ReferenceNumber] = len(m.items)
	m.items = append(m.items, b)
	metrics.BookingsStored.Set(float64(len(m.items)))
	return nil
}

func (m *MemoryRepository) List(_ context.Context) ([]booking.StoredBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]booking.StoredBooking, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MemoryRepository) ByReference(_ context.Context, ref string) (booking.StoredBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byRef[ref]
	if !ok {
		return booking.StoredBooking{}, ErrNotFound
	}
	return m.items[i], nil
}
