package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/form"
)

const sample = `
contactDetails:
  title: Mr
  firstName: John
  lastName: Doe
  email: john@example.com
  phoneNumber: "+44 20 7946 0958"
bookingDetails:
  bookerType: Individual
  purposeOfStay: Leisure
  isSchoolOrYouth: false
  reasonForVisit: Holiday
  preferredHotel: london-central
  dates:
    checkIn: 2025-06-01
    checkOut: "2025-06-05"
  packageType: Room only
roomRequirements:
  rooms:
    doubleOccupancy: 2
    twinRooms: 1
additionalInformation:
  comments:
  nickname: JD
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enquiry.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEnquiry(t *testing.T) {
	store := form.NewStore(booking.Defaults())
	unknown, err := loadEnquiry(writeFile(t, sample), store)
	if err != nil {
		t.Fatalf("loadEnquiry: %v", err)
	}

	if len(unknown) != 1 || unknown[0] != "additionalInformation.nickname" {
		t.Fatalf("unknown = %v", unknown)
	}

	f := store.Form()
	if f.BookingDetails.Dates.CheckIn != "2025-06-01" {
		t.Fatalf("unquoted date = %q", f.BookingDetails.Dates.CheckIn)
	}
	if f.BookingDetails.Dates.CheckOut != "2025-06-05" {
		t.Fatalf("quoted date = %q", f.BookingDetails.Dates.CheckOut)
	}
	if got := store.RoomTotal(); got != 3 {
		t.Fatalf("RoomTotal = %d, want 3", got)
	}
	if f.AdditionalInformation.Comments != "" {
		t.Fatalf("null comments = %q", f.AdditionalInformation.Comments)
	}
	if f.ContactDetails.PhoneNumber != "+44 20 7946 0958" {
		t.Fatalf("phone = %q", f.ContactDetails.PhoneNumber)
	}
}

func TestLoadEnquiryErrors(t *testing.T) {
	store := form.NewStore(booking.Defaults())
	if _, err := loadEnquiry(filepath.Join(t.TempDir(), "missing.yaml"), store); err == nil {
		t.Fatal("missing file: want error")
	}
	if _, err := loadEnquiry(writeFile(t, "contactDetails: [unclosed"), store); err == nil {
		t.Fatal("bad yaml: want error")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTemplate(&buf); err != nil {
		t.Fatalf("writeTemplate: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("template is not YAML: %v", err)
	}
	for _, root := range []string{"contactDetails", "bookingDetails", "roomRequirements", "additionalInformation"} {
		if _, ok := doc[root]; !ok {
			t.Errorf("template missing %s", root)
		}
	}

	store := form.NewStore(booking.Defaults())
	unknown, err := loadEnquiry(writeFile(t, buf.String()), store)
	if err != nil || len(unknown) != 0 {
		t.Fatalf("reload template: unknown=%v err=%v", unknown, err)
	}
	if got := store.RoomTotal(); got != 0 {
		t.Fatalf("blank template rooms = %d", got)
	}
}
