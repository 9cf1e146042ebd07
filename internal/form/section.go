// internal/form/section.go
//
// Enquiry form: section controller.
//
// Context
//   The form is shown as an accordion of three panels: Contact, Booking, and
//   Rooms.  Exactly one panel is expanded at a time (or none, after the user
//   collapses the open one).  Opening a panel collapses the others, so the
//   whole view is described by a single value, the expanded section.
//
//   Navigation is never gated on the current panel's validity.  The user may
//   jump to any panel by its header, and Continue/Back simply step through
//   the order.  Submission is gated elsewhere, on full-form validation.
//
//------------------------------------------------------------------------------

package form

import (
	"sync"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// Section identifies one accordion panel.
type Section int

// Panels in display order.  None means every panel is collapsed.
const (
	None    Section = -1
	Contact Section = iota - 1
	Booking
	Rooms
)

// sectionIDs are the catalogue IDs, indexed by Section.
var sectionIDs = []string{"contact", "booking", "rooms"}

func (s Section) valid() bool { return s >= Contact && s <= Rooms }

func (s Section) String() string {
	if !s.valid() {
		return "none"
	}
	return sectionIDs[s]
}

// ParseSection maps a catalogue ID back to a Section.
func ParseSection(id string) (Section, bool) {
	for i, v := range sectionIDs {
		if v == id {
			return Section(i), true
		}
	}
	return None, false
}

// ViewState is everything the accordion needs to render.
type ViewState struct {
	Expanded      Section
	SubmitVisible bool
}

// Sections is the section controller.  The zero value is not usable; call
// NewSections.
type Sections struct {
	mu       sync.Mutex
	cat      *Catalogue
	expanded Section
	onChange []func(ViewState)
}

// NewSections starts with the Contact panel expanded.
func NewSections(cat *Catalogue) *Sections {
	if cat == nil {
		cat = DefaultCatalogue()
	}
	return &Sections{cat: cat, expanded: Contact}
}

// State returns the current view state.
func (s *Sections) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Sections) stateLocked() ViewState {
	return ViewState{Expanded: s.expanded, SubmitVisible: s.expanded == Rooms}
}

// Expanded returns the open panel, or None.
func (s *Sections) Expanded() Section { return s.State().Expanded }

// IsExpanded reports whether sec is the open panel.
func (s *Sections) IsExpanded(sec Section) bool { return s.Expanded() == sec }

// Open expands sec and collapses the rest.  Invalid sections collapse all.
func (s *Sections) Open(sec Section) {
	if !sec.valid() {
		sec = None
	}
	s.set(func(Section) Section { return sec })
}

// Toggle behaves like clicking a panel header: an open panel closes, a
// closed one opens.
func (s *Sections) Toggle(sec Section) {
	if !sec.valid() {
		return
	}
	s.set(func(cur Section) Section {
		if cur == sec {
			return None
		}
		return sec
	})
}

// Advance moves to the next panel.  Rooms is terminal; from None it opens
// Contact.
func (s *Sections) Advance() {
	s.set(func(cur Section) Section {
		switch {
		case cur == None:
			return Contact
		case cur < Rooms:
			return cur + 1
		default:
			return cur
		}
	})
}

// Back moves to the previous panel.  Contact and None stay put.
func (s *Sections) Back() {
	s.set(func(cur Section) Section {
		if cur > Contact {
			return cur - 1
		}
		return cur
	})
}

// Reveal opens the panel that owns p so the field can take focus.  It
// returns false when p belongs to no panel.
func (s *Sections) Reveal(p booking.Path) bool {
	sec := s.cat.SectionOf(p)
	if sec == None {
		return false
	}
	s.Open(sec)
	return true
}

// OnChange registers fn to run after every transition that changes state.
func (s *Sections) OnChange(fn func(ViewState)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Sections) set(next func(Section) Section) {
	s.mu.Lock()
	prev := s.expanded
	s.expanded = next(prev)
	if s.expanded == prev {
		s.mu.Unlock()
		return
	}
	st := s.stateLocked()
	fns := make([]func(ViewState), len(s.onChange))
	copy(fns, s.onChange)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
