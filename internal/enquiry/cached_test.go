package enquiry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yanizio/groupenquiry/internal/booking"
)

type countingRepo struct {
	*MemoryRepository
	lookups atomic.Int32
	gate    chan struct{}
}

func (c *countingRepo) ByReference(ctx context.Context, ref string) (booking.StoredBooking, error) {
	c.lookups.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if err := ctx.Err(); err != nil {
		return booking.StoredBooking{}, err
	}
	return c.MemoryRepository.ByReference(ctx, ref)
}

func TestCachedRepository_SaveWarmsCache(t *testing.T) {
	base := &countingRepo{MemoryRepository: NewMemoryRepository()}
	repo := NewCachedRepository(base, 8)
	b := sampleStored("PI-250520-AAAA")

	if err := repo.Save(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	got, err := repo.ByReference(context.Background(), b.ReferenceNumber)
	if err != nil || got.ID != b.ID {
		t.Fatalf("ByReference = %+v, %v", got, err)
	}
	if n := base.lookups.Load(); n != 0 {
		t.Fatalf("saved booking should be served from cache, %d lookups", n)
	}
	if err := repo.Save(context.Background(), b); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("duplicate must pass through, got %v", err)
	}
}

func TestCachedRepository_CollapsesConcurrentMisses(t *testing.T) {
	base := &countingRepo{MemoryRepository: NewMemoryRepository(), gate: make(chan struct{})}
	b := sampleStored("PI-250520-BBBB")
	_ = base.MemoryRepository.Save(context.Background(), b)
	repo := NewCachedRepository(base, 8)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ByReference(context.Background(), b.ReferenceNumber)
			errs <- err
		}()
	}
	// Let every goroutine reach the singleflight group before releasing.
	time.Sleep(50 * time.Millisecond)
	close(base.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
	}
	if n := base.lookups.Load(); n != 1 {
		t.Fatalf("backing lookups = %d, want 1", n)
	}

	if _, err := repo.ByReference(context.Background(), "PI-250520-NONE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("miss err = %v", err)
	}
}

func TestCachedRepository_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	base := &countingRepo{MemoryRepository: NewMemoryRepository(), gate: make(chan struct{})}
	b := sampleStored("PI-250520-CCCC")
	_ = base.MemoryRepository.Save(context.Background(), b)
	repo := NewCachedRepository(base, 8)

	firstCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := repo.ByReference(firstCtx, b.ReferenceNumber)
		first <- err
	}()
	for base.lookups.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := make(chan error, 1)
	go func() {
		_, err := repo.ByReference(context.Background(), b.ReferenceNumber)
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(base.gate)

	if err := <-second; err != nil {
		t.Fatalf("waiting caller got %v", err)
	}
	if err := <-first; err != nil {
		t.Fatalf("first caller got %v", err)
	}
	if n := base.lookups.Load(); n != 1 {
		t.Fatalf("backing lookups = %d, want 1", n)
	}
}
