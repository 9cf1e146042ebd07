package booking

import "testing"

func TestPathHelpers(t *testing.T) {
	p := PathCheckIn

	if got := p.Parent(); got != PathDates {
		t.Fatalf("Parent = %q, want %q", got, PathDates)
	}
	if got := p.Root(); got != PathBookingDetails {
		t.Fatalf("Root = %q, want %q", got, PathBookingDetails)
	}
	if got := p.Leaf(); got != "checkIn" {
		t.Fatalf("Leaf = %q, want checkIn", got)
	}
	if segs := p.Segments(); len(segs) != 3 || segs[2] != "checkIn" {
		t.Fatalf("Segments = %v", segs)
	}
	if !p.Within(PathDates) || !p.Within(PathBookingDetails) || !p.Within(p) {
		t.Fatalf("Within failed for ancestors of %q", p)
	}
	if Path("bookingDetails.datesX").Within(PathDates) {
		t.Fatalf("Within must respect segment boundaries")
	}
	if PathContactDetails.Parent() != "" {
		t.Fatalf("section root must have no parent")
	}
}

func TestPathsOrderAndKnown(t *testing.T) {
	all := Paths()
	for i := 1; i < len(all); i++ {
		if all[i-1].Order() >= all[i].Order() {
			t.Fatalf("Paths not in form order at %d", i)
		}
	}
	if !PathRooms.Known() || !PathContactDetails.Known() {
		t.Fatalf("declared paths must be known")
	}
	if Path("contactDetails.nickname").Known() {
		t.Fatalf("undeclared path reported as known")
	}
	if Path("nope").Order() != len(all) {
		t.Fatalf("unknown path should sort last")
	}
	if len(RoomPaths()) != 10 {
		t.Fatalf("want 10 room paths, got %d", len(RoomPaths()))
	}
}
