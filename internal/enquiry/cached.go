package enquiry

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/cache"
	"github.com/yanizio/groupenquiry/internal/metrics"
)

// CachedRepository keeps recently saved or fetched bookings in an LRU and
// collapses concurrent misses for one reference into a single lookup.
// Stored bookings are immutable, so entries never go stale.
type CachedRepository struct {
	next  Repository
	lru   *cache.LRU[string, booking.StoredBooking]
	group singleflight.Group
}

// NewCachedRepository wraps next with an LRU of the given size (≥1).
func NewCachedRepository(next Repository, size int) *CachedRepository {
	return &CachedRepository{
		next: next,
		lru:  cache.New[string, booking.StoredBooking](size),
	}
}

func (c *CachedRepository) Save(ctx context.Context, b booking.StoredBooking) error {
	if err := c.next.Save(ctx, b); err != nil {
		return err
	}
	c.lru.Add(b.ReferenceNumber, b)
	return nil
}

func (c *CachedRepository) List(ctx context.Context) ([]booking.StoredBooking, error) {
	return c.next.List(ctx)
}

func (c *CachedRepository) ByReference(ctx context.Context, ref string) (booking.StoredBooking, error) {
	if b, ok := c.lru.Get(ref); ok {
		metrics.BookingLookupsTotal.WithLabelValues("hit").Inc()
		return b, nil
	}
	metrics.BookingLookupsTotal.WithLabelValues("miss").Inc()

	// The shared lookup outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(ref, func() (any, error) {
		b, err := c.next.ByReference(shared, ref)
		if err != nil {
			return nil, err
		}
		c.lru.Add(ref, b)
		return b, nil
	})
	if err != nil {
		return booking.StoredBooking{}, err
	}
	return v.(booking.StoredBooking), nil
}
