package booking

import "strings"

// Path addresses a leaf or group inside a BookingForm using the dot-delimited
// wire format, e.g. "bookingDetails.dates.checkIn".  Use the declared
// constants; a Path built from an arbitrary string is still accepted by the
// store but will never match a validation rule.
type Path string

// Section roots.
const (
	PathContactDetails        Path = "contactDetails"
	PathBookingDetails        Path = "bookingDetails"
	PathRoomRequirements      Path = "roomRequirements"
	PathAdditionalInformation Path = "additionalInformation"
)

// Contact details.
const (
	PathTitle       Path = "contactDetails.title"
	PathFirstName   Path = "contactDetails.firstName"
	PathLastName    Path = "contactDetails.lastName"
	PathEmail       Path = "contactDetails.email"
	PathPhoneNumber Path = "contactDetails.phoneNumber"
)

// Booking details.
const (
	PathBookerType      Path = "bookingDetails.bookerType"
	PathPurposeOfStay   Path = "bookingDetails.purposeOfStay"
	PathIsSchoolOrYouth Path = "bookingDetails.isSchoolOrYouth"
	PathReasonForVisit  Path = "bookingDetails.reasonForVisit"
	PathPreferredHotel  Path = "bookingDetails.preferredHotel"
	PathDates           Path = "bookingDetails.dates"
	PathCheckIn         Path = "bookingDetails.dates.checkIn"
	PathCheckOut        Path = "bookingDetails.dates.checkOut"
	PathPackageType     Path = "bookingDetails.packageType"
)

// Room requirements.
const (
	PathTravellingWithChild Path = "roomRequirements.isTravellingWithChild"
	PathAccessibleRoom      Path = "roomRequirements.isAccessibleRoom"
	PathRooms               Path = "roomRequirements.rooms"

	PathSingleOccupancy  Path = "roomRequirements.rooms.singleOccupancy"
	PathDoubleOccupancy  Path = "roomRequirements.rooms.doubleOccupancy"
	PathTwinRooms        Path = "roomRequirements.rooms.twinRooms"
	PathFamilyOf21A1C    Path = "roomRequirements.rooms.familyOf21A1C"
	PathFamilyOf32A1C    Path = "roomRequirements.rooms.familyOf32A1C"
	PathFamilyOf31A2C    Path = "roomRequirements.rooms.familyOf31A2C"
	PathFamilyOf42A2C    Path = "roomRequirements.rooms.familyOf42A2C"
	PathAccessibleSingle Path = "roomRequirements.rooms.accessibleSingle"
	PathAccessibleDouble Path = "roomRequirements.rooms.accessibleDouble"
	PathAccessibleTwin   Path = "roomRequirements.rooms.accessibleTwin"
)

// Additional information.
const (
	PathComments Path = "additionalInformation.comments"
)

// roomPaths lists the ten room counters in display order.
var roomPaths = []Path{
	PathSingleOccupancy, PathDoubleOccupancy, PathTwinRooms,
	PathFamilyOf21A1C, PathFamilyOf32A1C, PathFamilyOf31A2C, PathFamilyOf42A2C,
	PathAccessibleSingle, PathAccessibleDouble, PathAccessibleTwin,
}

// formOrder is every addressable path in the order fields appear on screen.
// Group paths sit directly after their last child so an error on the group
// sorts next to the inputs it describes.
var formOrder = []Path{
	PathTitle, PathFirstName, PathLastName, PathEmail, PathPhoneNumber,
	PathBookerType, PathPurposeOfStay, PathIsSchoolOrYouth, PathReasonForVisit,
	PathPreferredHotel, PathCheckIn, PathCheckOut, PathDates, PathPackageType,
	PathTravellingWithChild, PathAccessibleRoom,
	PathSingleOccupancy, PathDoubleOccupancy, PathTwinRooms,
	PathFamilyOf21A1C, PathFamilyOf32A1C, PathFamilyOf31A2C, PathFamilyOf42A2C,
	PathAccessibleSingle, PathAccessibleDouble, PathAccessibleTwin, PathRooms,
	PathComments,
}

var orderIndex = func() map[Path]int {
	m := make(map[Path]int, len(formOrder))
	for i, p := range formOrder {
		m[p] = i
	}
	return m
}()

// Paths returns every known field and group path in form order.
func Paths() []Path {
	out := make([]Path, len(formOrder))
	copy(out, formOrder)
	return out
}

// RoomPaths returns the ten room counter paths.
func RoomPaths() []Path {
	out := make([]Path, len(roomPaths))
	copy(out, roomPaths)
	return out
}

// Known reports whether p is one of the declared paths (sections included).
func (p Path) Known() bool {
	if _, ok := orderIndex[p]; ok {
		return true
	}
	switch p {
	case PathContactDetails, PathBookingDetails, PathRoomRequirements, PathAdditionalInformation:
		return true
	}
	return false
}

// Order returns the on-screen position of p.  Unknown paths sort last.
func (p Path) Order() int {
	if i, ok := orderIndex[p]; ok {
		return i
	}
	return len(formOrder)
}

// Segments splits p at dots.  The empty path has no segments.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// Parent returns the enclosing group, or "" for a section root.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '.')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Leaf returns the last segment.
func (p Path) Leaf() string {
	i := strings.LastIndexByte(string(p), '.')
	return string(p[i+1:])
}

// Within reports whether p equals prefix or lies beneath it.
func (p Path) Within(prefix Path) bool {
	if prefix == "" || p == prefix {
		return true
	}
	return strings.HasPrefix(string(p), string(prefix)+".")
}

// Root returns the first segment as a section path.
func (p Path) Root() Path {
	if i := strings.IndexByte(string(p), '.'); i >= 0 {
		return p[:i]
	}
	return p
}

func (p Path) String() string { return string(p) }
