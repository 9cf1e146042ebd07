package enquiry

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"
)

// ReferencePattern matches a reference number: PI-YYMMDD-XXXX.
var ReferencePattern = regexp.MustCompile(`^PI-\d{6}-[A-Z0-9]{4}$`)

const (
	refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	refSuffix   = 4
	// refCutoff is the largest multiple of len(refAlphabet) below 256;
	// bytes at or above it are discarded so every symbol is equally likely.
	refCutoff = 252
)

// ReferenceGenerator issues reference numbers stamped with the UTC date of
// submission and a random four-symbol suffix.
type ReferenceGenerator struct {
	now  func() time.Time
	rand io.Reader
}

// NewReferenceGenerator returns a generator reading crypto/rand.  A nil now
// uses time.Now.
func NewReferenceGenerator(now func() time.Time) *ReferenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReferenceGenerator{now: now, rand: rand.Reader}
}

// Next returns a fresh reference number.
func (g *ReferenceGenerator) Next() (string, error) {
	suffix := make([]byte, 0, refSuffix)
	buf := make([]byte, 8)
	for len(suffix) < refSuffix {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("reference entropy: %w", err)
		}
		for _, b := range buf {
			if b >= refCutoff {
				continue
			}
			suffix = append(suffix, refAlphabet[int(b)%len(refAlphabet)])
			if len(suffix) == refSuffix {
				break
			}
		}
	}
	return "PI-" + g.now().UTC().Format("060102") + "-" + string(suffix), nil
}
