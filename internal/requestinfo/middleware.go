// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits directly after logging and recovery.  For every request it:

  1. Negotiates the form locale from ?locale= or Accept-Language.
  2. Classifies the User-Agent header into a device class.
  3. Looks up the client country when a GeoDB is configured.
  4. Stores a `*RequestInfo` value in `request.Context` under an
     unexported key, so the booking handler can record locale and device
     without reparsing.

Instrumentation
---------------
At debug level each invocation logs locale, device, browser, and path.
*/
package requestinfo

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return EnrichWith(nil)(next)
}

// EnrichWith is Enrich with a country lookup.  geo may be nil.
func EnrichWith(geo *GeoDB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return enrich(geo, next)
	}
}

func enrich(geo *GeoDB, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device, browser := DeviceClass(r.UserAgent())
		info := &RequestInfo{
			Locale:    NegotiateLocale(r.URL.Query().Get("locale"), r.Header.Get("Accept-Language")),
			Device:    device,
			Browser:   browser,
			Country:   geo.Country(ClientIP(r)),
			Timestamp: time.Now().UTC(),
		}

		zap.S().Debugw("request info",
			"locale", info.Locale,
			"device", info.Device,
			"browser", info.Browser,
			"country", info.Country,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}
