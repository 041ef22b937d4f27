package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"
)

const (
	fixtureSecret = "whsec_AAAAAAAAAAAAAAAAAAAAAA=="
	fixtureID     = "msg_1"
	fixtureTS     = int64(1700000000)
	fixtureBody   = `{"a":1}`
	fixtureToken  = "v1,HA9nSvEEuynF+mEPWgOAUWbrVA21G6kMzfOt+yEvB3I="
)

func referenceToken(t *testing.T, secret, id string, ts int64, body string) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret[len(SecretPrefix):])
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(fmt.Sprintf("%s.%d.%s", id, ts, body)))
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func fixedClock(ts int64) Option {
	return WithClock(func() time.Time { return time.Unix(ts, 0) })
}

func signedDelivery(t *testing.T, id string, ts int64, body []byte, secrets ...string) Delivery {
	t.Helper()
	sig, err := SignWithTimestamp(id, ts, body, secrets...)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return Delivery{MessageID: id, Timestamp: strconv.FormatInt(ts, 10), Signature: sig.Header, Body: body}
}

func TestVerifyFixtureMatchesReferenceHMAC(t *testing.T) {
	t.Parallel()

	want := referenceToken(t, fixtureSecret, fixtureID, fixtureTS, fixtureBody)
	if want != fixtureToken {
		t.Fatalf("reference token drifted: got=%s want=%s", want, fixtureToken)
	}

	sig, err := SignWithTimestamp(fixtureID, fixtureTS, []byte(fixtureBody), fixtureSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if sig.Header != fixtureToken {
		t.Fatalf("unexpected signature: got=%s want=%s", sig.Header, fixtureToken)
	}

	err = Verify(Delivery{
		MessageID: fixtureID,
		Timestamp: "1700000000",
		Signature: fixtureToken,
		Body:      []byte(fixtureBody),
	}, fixtureSecret, time.Unix(fixtureTS, 0))
	if err != nil {
		t.Fatalf("expected fixture to verify, got %v", err)
	}
}

func TestVerifyToleranceBoundary(t *testing.T) {
	t.Parallel()

	body := []byte(fixtureBody)
	d := signedDelivery(t, fixtureID, fixtureTS, body, fixtureSecret)

	cases := []struct {
		name    string
		offset  int64
		wantErr error
	}{
		{name: "same second", offset: 0},
		{name: "late inside window", offset: 300},
		{name: "early inside window", offset: -300},
		{name: "late outside window", offset: 301, wantErr: ErrStaleTimestamp},
		{name: "early outside window", offset: -301, wantErr: ErrStaleTimestamp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS+tc.offset))
			err := v.Verify(d)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected accept, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("unexpected error: got=%v want=%v", err, tc.wantErr)
			}
		})
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event":"invoice.paid","amount":100}`)
	d := signedDelivery(t, fixtureID, fixtureTS, body, fixtureSecret)
	v := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS))

	for i := range body {
		tampered := append([]byte(nil), body...)
		tampered[i] ^= 0x01
		d.Body = tampered
		if err := v.Verify(d); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("byte %d: expected invalid signature, got %v", i, err)
		}
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	t.Parallel()

	other, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	d := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), other)

	err = NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS)).Verify(d)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestVerifyRotationAcceptsEitherSecret(t *testing.T) {
	t.Parallel()

	oldSecret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate old secret: %v", err)
	}
	newSecret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate new secret: %v", err)
	}
	d := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), newSecret, oldSecret)

	for name, secrets := range map[string][]string{
		"old only":     {oldSecret},
		"new only":     {newSecret},
		"active+prior": {newSecret, oldSecret},
	} {
		if err := NewVerifier(secrets, fixedClock(fixtureTS)).Verify(d); err != nil {
			t.Fatalf("%s: expected accept, got %v", name, err)
		}
	}

	single := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), oldSecret)
	if err := NewVerifier([]string{newSecret, oldSecret}, fixedClock(fixtureTS)).Verify(single); err != nil {
		t.Fatalf("receiver holding previous secret should accept old-only signature, got %v", err)
	}
}

func TestVerifyMissingHeaders(t *testing.T) {
	t.Parallel()

	full := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), fixtureSecret)
	cases := map[string]Delivery{
		"id":        {Timestamp: full.Timestamp, Signature: full.Signature, Body: full.Body},
		"timestamp": {MessageID: full.MessageID, Signature: full.Signature, Body: full.Body},
		"signature": {MessageID: full.MessageID, Timestamp: full.Timestamp, Body: full.Body},
		"all":       {Body: full.Body},
	}
	// Missing headers win even over a broken secret and a stale clock.
	v := NewVerifier([]string{"whsec_%%%"}, fixedClock(fixtureTS+10_000))
	for name, d := range cases {
		if err := v.Verify(d); !errors.Is(err, ErrMissingHeaders) {
			t.Fatalf("%s: expected missing headers, got %v", name, err)
		}
	}
}

func TestVerifyMalformedTimestamp(t *testing.T) {
	t.Parallel()

	for _, ts := range []string{"abc", "1700000000.5", "0x10", " 1700000000", "99999999999999999999"} {
		d := Delivery{MessageID: fixtureID, Timestamp: ts, Signature: fixtureToken, Body: []byte(fixtureBody)}
		err := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS)).Verify(d)
		if !errors.Is(err, ErrMalformedTimestamp) {
			t.Fatalf("%q: expected malformed timestamp, got %v", ts, err)
		}
	}
}

func TestVerifyMalformedSecret(t *testing.T) {
	t.Parallel()

	d := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), fixtureSecret)
	for _, secrets := range [][]string{{"whsec_not base64!"}, {"whsec_"}, {}, {fixtureSecret, "whsec_***"}} {
		err := NewVerifier(secrets, fixedClock(fixtureTS)).Verify(d)
		if !errors.Is(err, ErrMalformedSecret) {
			t.Fatalf("%v: expected malformed secret, got %v", secrets, err)
		}
	}
}

func TestVerifyStaleBeforeSecretCheck(t *testing.T) {
	t.Parallel()

	d := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), fixtureSecret)
	err := NewVerifier([]string{"whsec_***"}, fixedClock(fixtureTS+301)).Verify(d)
	if !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("expected stale timestamp, got %v", err)
	}
}

func TestVerifyExtremeTimestampIsStale(t *testing.T) {
	t.Parallel()

	d := Delivery{MessageID: fixtureID, Timestamp: "-9223372036854775808", Signature: fixtureToken, Body: []byte(fixtureBody)}
	if err := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS)).Verify(d); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("expected stale timestamp, got %v", err)
	}
}

func TestVerifySkipsUnknownTokens(t *testing.T) {
	t.Parallel()

	d := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), fixtureSecret)
	d.Signature = "v2,c29tZXRoaW5n v1,AAAA " + d.Signature
	if err := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS)).Verify(d); err != nil {
		t.Fatalf("expected accept with extra tokens, got %v", err)
	}
}

func TestVerifyUsesTimestampAsReceived(t *testing.T) {
	t.Parallel()

	// "+1700000000" parses to the same instant but signs different content.
	d := signedDelivery(t, fixtureID, fixtureTS, []byte(fixtureBody), fixtureSecret)
	d.Timestamp = "+1700000000"
	if err := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS)).Verify(d); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestVerifyRequestReadsHeaders(t *testing.T) {
	t.Parallel()

	body := []byte(fixtureBody)
	sig, err := SignWithTimestamp(fixtureID, fixtureTS, body, fixtureSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	h := http.Header{}
	sig.Apply(h)
	if h.Get("x-webhook-id") != fixtureID || h.Get("X-WEBHOOK-TIMESTAMP") != "1700000000" {
		t.Fatalf("unexpected headers: %#v", h)
	}

	v := NewVerifier([]string{fixtureSecret}, fixedClock(fixtureTS))
	if err := v.VerifyRequest(h, body); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestRoundTripIsDeterministic(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	v := NewVerifier([]string{secret}, fixedClock(fixtureTS))
	bodies := [][]byte{nil, []byte(""), []byte("plain text"), []byte("{\n  \"spaced\" : true\n}"), {0x00, 0xff, 0x10}}
	for _, body := range bodies {
		id := NewMessageID()
		d := signedDelivery(t, id, fixtureTS, body, secret)
		for i := 0; i < 3; i++ {
			if err := v.Verify(d); err != nil {
				t.Fatalf("body %q attempt %d: %v", body, i, err)
			}
		}
	}
}
