// internal/form/store.go
//
// Enquiry form: field state store.
//
// Context
//   The store owns the live values of every field, the per-field error
//   messages, and the touched set.  Values sit in one nested map that mirrors
//   booking.BookingForm, addressed by booking.Path.  Nothing here fails on an
//   unknown path: reads report absence, writes create intermediate groups.
//
// Workflow
//   •  SetValue writes a value, clears errors on the path and its ancestors,
//      and notifies subscribers of the path and every enclosing group.
//      Writing an equal value is a no-op.
//   •  SetFieldError records a client- or server-side message independently of
//      the value.  ClearErrors and Reset drop them all.
//   •  Form decodes the map into a typed BookingForm for validation and
//      submission.  Values of the wrong type decode to zero and then fail
//      validation, so a bad value is an error message, not a crash.
//
// Notes
//   •  A mutex guards state.  Subscriber callbacks run after the lock is
//      released, so they may call back into the store.
//
//------------------------------------------------------------------------------

package form

import (
	"reflect"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// Store holds form values, errors, and touched flags.
type Store struct {
	mu      sync.Mutex
	values  map[string]any
	errors  map[booking.Path]string
	touched map[booking.Path]bool
	subs    map[booking.Path]map[int]func(any)
	nextSub int
}

// NewStore returns a store seeded with defaults.
func NewStore(defaults booking.BookingForm) *Store {
	s := &Store{subs: make(map[booking.Path]map[int]func(any))}
	s.Reset(defaults)
	return s
}

// -----------------------------------------------------------------------------
// Values
// -----------------------------------------------------------------------------

// Value returns the value at p.  Groups come back as deep copies.
func (s *Store) Value(p booking.Path) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := lookup(s.values, p)
	return deepCopy(v), ok
}

// SetValue writes v at p, creating intermediate groups as needed.
func (s *Store) SetValue(p booking.Path, v any) {
	if p == "" {
		return
	}
	s.mu.Lock()
	prev, had := lookup(s.values, p)
	if had && sameValue(prev, v) {
		s.mu.Unlock()
		return
	}
	assign(s.values, p, deepCopy(v))
	for q := p; q != ""; q = q.Parent() {
		delete(s.errors, q)
	}
	// A group write clears the errors of descendants whose value changed.
	for q := range s.errors {
		if q == p || !q.Within(p) {
			continue
		}
		before, _ := lookup(map[string]any{"v": prev}, "v"+q[len(p):])
		after, _ := lookup(s.values, q)
		if !had || !sameValue(before, after) {
			delete(s.errors, q)
		}
	}
	notes := s.pendingLocked(p)
	s.mu.Unlock()

	notes.fire()
}

// Values returns a deep copy of every value.
func (s *Store) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.values).(map[string]any)
}

// Form decodes the current values into a BookingForm.  Entries that cannot be
// converted are left at their zero value and logged at debug level.
func (s *Store) Form() booking.BookingForm {
	var f booking.BookingForm
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		zap.S().Errorw("form decoder setup failed", "err", err)
		return f
	}
	if err := dec.Decode(s.Values()); err != nil {
		zap.S().Debugw("form values partially decoded", "err", err)
	}
	return f
}

// Reset replaces every value with defaults and clears errors and touched
// flags.  Subscribers of every known path are notified.
func (s *Store) Reset(defaults booking.BookingForm) {
	s.mu.Lock()
	s.values = defaults.Values()
	s.errors = make(map[booking.Path]string)
	s.touched = make(map[booking.Path]bool)
	var notes notifications
	for p, subs := range s.subs {
		v, _ := lookup(s.values, p)
		for _, fn := range subs {
			notes = append(notes, notification{fn: fn, v: deepCopy(v)})
		}
	}
	s.mu.Unlock()

	notes.fire()
}

// -----------------------------------------------------------------------------
// Room counters
// -----------------------------------------------------------------------------

// AdjustCount adds delta to the counter at p.  The result never drops below
// zero; a decrement at zero is a no-op.  It returns the stored count.
func (s *Store) AdjustCount(p booking.Path, delta int) int {
	cur, _ := s.Value(p)
	n, _ := booking.AsInt(cur)
	next := n + delta
	if delta < 0 && next < 0 {
		if n <= 0 {
			return n
		}
		next = 0
	}
	s.SetValue(p, next)
	return next
}

// RoomTotal is the live room tally.
func (s *Store) RoomTotal() int {
	v, _ := s.Value(booking.PathRooms)
	rooms, _ := v.(map[string]any)
	return booking.TallyValues(rooms)
}

// -----------------------------------------------------------------------------
// Errors and touched state
// -----------------------------------------------------------------------------

// SetFieldError records msg against p.
func (s *Store) SetFieldError(p booking.Path, msg string) {
	s.mu.Lock()
	s.errors[p] = msg
	s.mu.Unlock()
}

// FieldError returns the message recorded for p.
func (s *Store) FieldError(p booking.Path) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.errors[p]
	return msg, ok
}

// Errors returns a copy of every recorded message.
func (s *Store) Errors() map[booking.Path]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[booking.Path]string, len(s.errors))
	for p, m := range s.errors {
		out[p] = m
	}
	return out
}

// ClearErrors drops every recorded message.
func (s *Store) ClearErrors() {
	s.mu.Lock()
	s.errors = make(map[booking.Path]string)
	s.mu.Unlock()
}

// clearErrorsWithin drops messages at scope and below.
func (s *Store) clearErrorsWithin(scope booking.Path) {
	s.mu.Lock()
	for p := range s.errors {
		if p.Within(scope) {
			delete(s.errors, p)
		}
	}
	s.mu.Unlock()
}

// Touch marks p as visited by the user.
func (s *Store) Touch(p booking.Path) {
	s.mu.Lock()
	s.touched[p] = true
	s.mu.Unlock()
}

// Touched reports whether p was visited since the last Reset.
func (s *Store) Touched(p booking.Path) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched[p]
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Subscribe calls fn with the new value of p whenever p or anything beneath
// it changes.  The returned func removes the subscription.
func (s *Store) Subscribe(p booking.Path, fn func(any)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[p] == nil {
		s.subs[p] = make(map[int]func(any))
	}
	s.subs[p][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs[p], id)
		if len(s.subs[p]) == 0 {
			delete(s.subs, p)
		}
		s.mu.Unlock()
	}
}

type notification struct {
	fn func(any)
	v  any
}

type notifications []notification

func (n notifications) fire() {
	for _, x := range n {
		x.fn(x.v)
	}
}

// pendingLocked collects callbacks for p and every ancestor of p.
func (s *Store) pendingLocked(p booking.Path) notifications {
	var out notifications
	for q := p; q != ""; q = q.Parent() {
		subs := s.subs[q]
		if len(subs) == 0 {
			continue
		}
		v, _ := lookup(s.values, q)
		for _, fn := range subs {
			out = append(out, notification{fn: fn, v: deepCopy(v)})
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Nested map helpers
// -----------------------------------------------------------------------------

func lookup(m map[string]any, p booking.Path) (any, bool) {
	segs := p.Segments()
	if len(segs) == 0 {
		return nil, false
	}
	var cur any = m
	for _, seg := range segs {
		group, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = group[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// assign writes v at p.  A non-group value sitting where a group is needed
// is replaced by an empty group.
func assign(m map[string]any, p booking.Path, v any) {
	segs := p.Segments()
	group := m
	for _, seg := range segs[:len(segs)-1] {
		next, ok := group[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			group[seg] = next
		}
		group = next
	}
	group[segs[len(segs)-1]] = v
}

// sameValue is reflect.DeepEqual with numbers compared by value, so a
// float64 0 from a JSON event equals a stored int 0.
func sameValue(a, b any) bool {
	if x, ok := asFloat(a); ok {
		y, ok := asFloat(b)
		return ok && x == y
	}
	ma, okA := a.(map[string]any)
	mb, okB := b.(map[string]any)
	if okA || okB {
		if !okA || !okB || len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !sameValue(va, vb) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func deepCopy(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, x := range m {
		out[k] = deepCopy(x)
	}
	return out
}

// sortedPaths returns the keys of m in form order, ties broken by name.
func sortedPaths(m map[booking.Path]string) []booking.Path {
	out := make([]booking.Path, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := out[i].Order(), out[j].Order()
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}
