//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight per-request metadata for the enquiry API: the negotiated
//  form locale, a coarse device class, and the arrival timestamp.  These
//  structs are inert, so they are safe to log or store with a booking.
//
//  Dependencies
//  • github.com/avct/uasurfer        (UA parsing)
//  • golang.org/x/text/language      (Accept-Language matching)
//  • github.com/oschwald/geoip2-golang (optional country lookup, geo.go)
//

package requestinfo

import (
	"context"
	"time"

	surfer "github.com/avct/uasurfer"
	"golang.org/x/text/language"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// Device classes recorded with each booking.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceOther   = "other"
)

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	Locale    string // "en" or "de"
	Device    string // one of the Device* constants
	Browser   string // "Chrome", "Firefox", ...
	Country   string // ISO code; empty without a GeoDB
	Timestamp time.Time
}

//
//  -----------------------------
//  Locale negotiation
//  -----------------------------
//

// Locales are the label languages the form catalogue ships, preferred first.
var Locales = []string{"en", "de"}

var matcher = language.NewMatcher([]language.Tag{language.English, language.German})

// NegotiateLocale picks a supported locale.  An explicit override (the
// ?locale= query value) wins when it parses; otherwise the Accept-Language
// list is matched.  Anything unparseable yields the first supported locale.
func NegotiateLocale(override, acceptLanguage string) string {
	if override != "" {
		if tag, err := language.Parse(override); err == nil {
			_, idx, conf := matcher.Match(tag)
			if conf != language.No {
				return Locales[idx]
			}
		}
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Locales[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return Locales[idx]
}

//
//  -----------------------------
//  User-agent classification
//  -----------------------------
//

// DeviceClass maps a raw User-Agent header onto a Device* constant.
func DeviceClass(raw string) (device, browser string) {
	if raw == "" {
		return DeviceOther, ""
	}
	ua := surfer.Parse(raw)
	browser = ua.Browser.Name.StringTrimPrefix()

	if ua.IsBot() {
		return DeviceBot, browser
	}
	switch ua.DeviceType {
	case surfer.DeviceComputer:
		return DeviceDesktop, browser
	case surfer.DeviceTablet:
		return DeviceTablet, browser
	case surfer.DevicePhone, surfer.DeviceWearable:
		return DeviceMobile, browser
	default:
		return DeviceOther, browser
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo returns ctx carrying info.  Enrich uses it; tests and the CLI
// may call it directly.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}
