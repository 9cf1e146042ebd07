package form

import (
	"reflect"
	"testing"

	"github.com/yanizio/groupenquiry/internal/booking"
)

func TestStore_ResetRoundTrip(t *testing.T) {
	s := NewStore(booking.Defaults())
	s.SetValue(booking.PathFirstName, "Ada")
	s.SetFieldError(booking.PathEmail, "bad")

	defaults := sampleEnquiry()
	s.Reset(defaults)

	if !reflect.DeepEqual(s.Values(), defaults.Values()) {
		t.Fatalf("Values after Reset differ from defaults")
	}
	if s.Form() != defaults {
		t.Fatalf("Form after Reset = %+v, want %+v", s.Form(), defaults)
	}
	if len(s.Errors()) != 0 {
		t.Fatalf("Reset must clear errors")
	}
}

func TestStore_GetSetUnknownPaths(t *testing.T) {
	s := NewStore(booking.Defaults())

	if _, ok := s.Value("contactDetails.nickname"); ok {
		t.Fatalf("unknown path reported present")
	}
	if _, ok := s.Value(""); ok {
		t.Fatalf("empty path reported present")
	}

	s.SetValue("extras.parking.spaces", 3)
	v, ok := s.Value("extras.parking.spaces")
	if !ok || v != 3 {
		t.Fatalf("value = %v, %v", v, ok)
	}
	group, ok := s.Value("extras.parking")
	if !ok {
		t.Fatalf("intermediate group not created")
	}
	if _, isMap := group.(map[string]any); !isMap {
		t.Fatalf("intermediate group has type %T", group)
	}
}

func TestStore_SetValueIdempotent(t *testing.T) {
	s := NewStore(booking.Defaults())
	calls := 0
	s.Subscribe(booking.PathFirstName, func(any) { calls++ })

	s.SetValue(booking.PathFirstName, "Ada")
	snapshot := s.Values()
	s.SetFieldError(booking.PathFirstName, "server says no")
	s.SetValue(booking.PathFirstName, "Ada")

	if !reflect.DeepEqual(snapshot, s.Values()) {
		t.Fatalf("second identical write changed values")
	}
	if calls != 1 {
		t.Fatalf("subscriber called %d times, want 1", calls)
	}
	if msg, ok := s.FieldError(booking.PathFirstName); !ok || msg != "server says no" {
		t.Fatalf("identical write must not clear the error, got %q %v", msg, ok)
	}
}

func TestStore_ChangeClearsErrors(t *testing.T) {
	s := NewStore(booking.Defaults())
	s.SetFieldError(booking.PathRooms, MsgNoRooms)
	s.SetFieldError(booking.PathSingleOccupancy, "x")
	s.SetFieldError(booking.PathEmail, "keep")

	s.AdjustCount(booking.PathSingleOccupancy, 1)

	if _, ok := s.FieldError(booking.PathSingleOccupancy); ok {
		t.Fatalf("field error not cleared")
	}
	if _, ok := s.FieldError(booking.PathRooms); ok {
		t.Fatalf("group error not cleared by child change")
	}
	if _, ok := s.FieldError(booking.PathEmail); !ok {
		t.Fatalf("unrelated error cleared")
	}

	s.ClearErrors()
	if len(s.Errors()) != 0 {
		t.Fatalf("ClearErrors left %v", s.Errors())
	}
}

func TestStore_GroupWriteClearsChangedChildErrors(t *testing.T) {
	s := NewStore(booking.Defaults())
	s.SetFieldError(booking.PathSingleOccupancy, msgNegativeRoom)
	s.SetFieldError(booking.PathTwinRooms, "kept")

	v, _ := s.Value(booking.PathRooms)
	rooms := v.(map[string]any)
	rooms["singleOccupancy"] = 3
	s.SetValue(booking.PathRooms, rooms)

	if msg, ok := s.FieldError(booking.PathSingleOccupancy); ok {
		t.Fatalf("changed counter kept its error %q", msg)
	}
	if _, ok := s.FieldError(booking.PathTwinRooms); !ok {
		t.Fatalf("unchanged counter lost its error")
	}
	if got := s.RoomTotal(); got != 3 {
		t.Fatalf("RoomTotal = %d, want 3", got)
	}
}

func TestStore_NumericKindsCompareByValue(t *testing.T) {
	s := NewStore(booking.Defaults())
	calls := 0
	s.Subscribe(booking.PathDoubleOccupancy, func(any) { calls++ })
	s.SetFieldError(booking.PathDoubleOccupancy, "server says no")

	s.SetValue(booking.PathDoubleOccupancy, float64(0))

	if calls != 0 {
		t.Fatalf("float64 0 over int 0 notified %d times", calls)
	}
	if _, ok := s.FieldError(booking.PathDoubleOccupancy); !ok {
		t.Fatalf("float64 0 over int 0 cleared the error")
	}

	s.SetValue(booking.PathDoubleOccupancy, 1.0)
	if calls != 1 {
		t.Fatalf("real change notified %d times, want 1", calls)
	}
	if _, ok := s.FieldError(booking.PathDoubleOccupancy); ok {
		t.Fatalf("real change must clear the error")
	}
}

func TestStore_AdjustCountFloorsAtZero(t *testing.T) {
	s := NewStore(booking.Defaults())

	if got := s.AdjustCount(booking.PathTwinRooms, -1); got != 0 {
		t.Fatalf("decrement at zero = %d, want 0", got)
	}
	s.AdjustCount(booking.PathTwinRooms, 2)
	if got := s.AdjustCount(booking.PathTwinRooms, -5); got != 0 {
		t.Fatalf("large decrement = %d, want 0", got)
	}
	v, _ := s.Value(booking.PathTwinRooms)
	if v != 0 {
		t.Fatalf("stored = %v, want 0", v)
	}
	for i := 0; i < 12; i++ {
		s.AdjustCount(booking.PathTwinRooms, 1)
	}
	if got := s.RoomTotal(); got != 12 {
		t.Fatalf("no upper bound expected, total = %d", got)
	}
}

func TestStore_SubscribeGroupTally(t *testing.T) {
	s := NewStore(booking.Defaults())

	var totals []int
	unsubscribe := s.Subscribe(booking.PathRooms, func(v any) {
		rooms, _ := v.(map[string]any)
		totals = append(totals, booking.TallyValues(rooms))
	})

	s.AdjustCount(booking.PathSingleOccupancy, 1)
	s.AdjustCount(booking.PathDoubleOccupancy, 2)
	s.SetValue(booking.PathFirstName, "Ada") // outside the group
	unsubscribe()
	s.AdjustCount(booking.PathTwinRooms, 1)

	want := []int{1, 3}
	if !reflect.DeepEqual(totals, want) {
		t.Fatalf("totals = %v, want %v", totals, want)
	}
	if s.RoomTotal() != 4 {
		t.Fatalf("RoomTotal = %d, want 4", s.RoomTotal())
	}
}

func TestStore_FormToleratesBadTypes(t *testing.T) {
	s := NewStore(booking.Defaults())
	s.SetValue(booking.PathSingleOccupancy, "lots")
	s.SetValue(booking.PathDoubleOccupancy, float64(2))
	s.SetValue(booking.PathFirstName, "Ada")

	f := s.Form()
	if f.RoomRequirements.Rooms.SingleOccupancy != 0 {
		t.Fatalf("unconvertible count should decode to zero")
	}
	if f.RoomRequirements.Rooms.DoubleOccupancy != 2 {
		t.Fatalf("float count not converted")
	}
	if f.ContactDetails.FirstName != "Ada" {
		t.Fatalf("valid fields must still decode")
	}
}

func TestStore_ValuesAreCopies(t *testing.T) {
	s := NewStore(booking.Defaults())
	v := s.Values()
	v["contactDetails"].(map[string]any)["firstName"] = "Mallory"

	got, _ := s.Value(booking.PathFirstName)
	if got != "" {
		t.Fatalf("external mutation leaked into store: %v", got)
	}
}

func TestStore_Touched(t *testing.T) {
	s := NewStore(booking.Defaults())
	s.Touch(booking.PathCheckIn)
	if !s.Touched(booking.PathCheckIn) {
		t.Fatalf("touch not recorded")
	}
	s.Reset(booking.Defaults())
	if s.Touched(booking.PathCheckIn) {
		t.Fatalf("Reset must clear touched flags")
	}
}
