package webhooksig

import (
	"crypto/hmac"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the accepted distance between delivery timestamp and now.
const DefaultTolerance = 300 * time.Second

// Delivery is the signed envelope plus its signature header, as received.
type Delivery struct {
	MessageID string
	Timestamp string
	Signature string
	Body      []byte
}

// DeliveryFromRequest reads the webhook headers. Body must be the raw bytes read off the wire.
func DeliveryFromRequest(h http.Header, body []byte) Delivery {
	return Delivery{
		MessageID: h.Get(HeaderID),
		Timestamp: h.Get(HeaderTimestamp),
		Signature: h.Get(HeaderSignature),
		Body:      body,
	}
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// WithTolerance overrides the freshness window. Non-positive values keep the default.
func WithTolerance(tolerance time.Duration) Option {
	return func(v *Verifier) {
		if tolerance > 0 {
			v.tolerance = tolerance
		}
	}
}

// Verifier checks deliveries against a fixed set of secrets.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	keys      []Secret
	keyErr    error
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier builds a verifier for the given whsec_ secrets, active first.
// A malformed secret is reported by Verify, after header and timestamp checks.
func NewVerifier(secrets []string, opts ...Option) *Verifier {
	keys, err := parseSecrets(secrets)
	v := &Verifier{
		keys:      keys,
		keyErr:    err,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify returns nil when any signature token matches any configured secret.
func (v *Verifier) Verify(d Delivery) error {
	if d.MessageID == "" || d.Timestamp == "" || d.Signature == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(d.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedTimestamp, d.Timestamp)
	}
	if !v.fresh(ts) {
		return fmt.Errorf("%w: timestamp=%d", ErrStaleTimestamp, ts)
	}

	if v.keyErr != nil {
		return v.keyErr
	}

	candidates := strings.Split(d.Signature, tokenSep)
	matched := false
	for _, key := range v.keys {
		expected := []byte(token(key, d.MessageID, d.Timestamp, d.Body))
		for _, candidate := range candidates {
			if hmac.Equal([]byte(candidate), expected) {
				matched = true
			}
		}
	}
	if !matched {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyRequest verifies headers and raw body.
func (v *Verifier) VerifyRequest(h http.Header, body []byte) error {
	return v.Verify(DeliveryFromRequest(h, body))
}

func (v *Verifier) fresh(ts int64) bool {
	now := v.now().Unix()
	window := int64(v.tolerance / time.Second)
	// Bounds check instead of abs(now-ts), which overflows for extreme ts.
	return ts >= now-window && ts <= now+window
}

// Verify checks one delivery against a single secret at the given time.
func Verify(d Delivery, secret string, now time.Time) error {
	return NewVerifier([]string{secret}, WithClock(func() time.Time { return now })).Verify(d)
}
