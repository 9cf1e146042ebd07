// internal/requestinfo/geo.go
//
// Optional MaxMind country lookup.
//
// Context
// -------
// When a GeoLite2/GeoIP2 Country or City database is configured, Enrich
// records the ISO country code of the client with each request.  Without
// one, Country stays empty and nothing else changes.  A nil *GeoDB is valid
// and answers "" for every address.

package requestinfo

import (
	"net"
	"net/http"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// GeoDB is a MaxMind reader.  It is safe for concurrent reads.
type GeoDB struct {
	r *geoip2.Reader
}

// OpenGeo opens the database at path.
func OpenGeo(path string) (*GeoDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoDB{r: r}, nil
}

// Country returns the ISO 3166-1 alpha-2 code for ip, or "" when unknown.
func (g *GeoDB) Country(ip net.IP) string {
	if g == nil || g.r == nil || ip == nil {
		return ""
	}
	rec, err := g.r.Country(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}

// Close releases the database.
func (g *GeoDB) Close() error {
	if g == nil || g.r == nil {
		return nil
	}
	return g.r.Close()
}

// ClientIP picks the first X-Forwarded-For hop, falling back to RemoteAddr.
func ClientIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
