package enquiry

import "github.com/yanizio/groupenquiry/internal/booking"

// locations backs GET /api/locations.
var locations = []booking.Location{
	{ID: "london-central", Name: "London Central"},
	{ID: "london-kings-cross", Name: "London Kings Cross"},
	{ID: "manchester-central", Name: "Manchester Central"},
	{ID: "birmingham-city", Name: "Birmingham City Centre"},
	{ID: "edinburgh-central", Name: "Edinburgh Central"},
	{ID: "glasgow-central", Name: "Glasgow Central"},
	{ID: "cardiff-city", Name: "Cardiff City Centre"},
	{ID: "liverpool-central", Name: "Liverpool Central"},
	{ID: "leeds-city", Name: "Leeds City Centre"},
	{ID: "newcastle-central", Name: "Newcastle Central"},
}
