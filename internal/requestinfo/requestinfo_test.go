package requestinfo

import (
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func TestNegotiateLocale(t *testing.T) {
	cases := []struct {
		override, accept, want string
	}{
		{"", "", "en"},
		{"", "de-DE,de;q=0.9,en;q=0.8", "de"},
		{"", "fr-FR,fr;q=0.9", "en"},
		{"de", "en-GB", "de"},
		{"xx-not-a-tag!", "de", "de"},
		{"", "%%%", "en"},
	}
	for _, tc := range cases {
		if got := NegotiateLocale(tc.override, tc.accept); got != tc.want {
			t.Errorf("NegotiateLocale(%q, %q) = %q, want %q", tc.override, tc.accept, got, tc.want)
		}
	}
}

func TestDeviceClass(t *testing.T) {
	cases := map[string]string{
		"": DeviceOther,
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36":                   DeviceDesktop,
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1": DeviceMobile,
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)":                                                                DeviceBot,
	}
	for raw, want := range cases {
		if got, _ := DeviceClass(raw); got != want {
			t.Errorf("DeviceClass(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestEnrich(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/locations?locale=de", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatalf("RequestInfo not attached")
	}
	if got.Locale != "de" {
		t.Fatalf("locale = %q, want de", got.Locale)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
	if FromContext(req.Context()) != nil {
		t.Fatalf("original request context must be untouched")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:51234"
	if got := ClientIP(req); got.String() != "198.51.100.7" {
		t.Fatalf("RemoteAddr ip = %v", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got.String() != "203.0.113.9" {
		t.Fatalf("forwarded ip = %v", got)
	}

	req.Header.Set("X-Forwarded-For", "garbage")
	if got := ClientIP(req); got.String() != "198.51.100.7" {
		t.Fatalf("bad forwarded header should fall back, got %v", got)
	}
}

func TestGeoWithoutDatabase(t *testing.T) {
	var geo *GeoDB
	if got := geo.Country(net.ParseIP("203.0.113.9")); got != "" {
		t.Fatalf("nil GeoDB country = %q", got)
	}
	if err := geo.Close(); err != nil {
		t.Fatalf("nil GeoDB Close: %v", err)
	}
	if _, err := OpenGeo(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Fatal("OpenGeo on a missing file: want error")
	}

	var got *RequestInfo
	h := EnrichWith(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got == nil || got.Country != "" {
		t.Fatalf("info = %+v", got)
	}
}
