package main

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fr0stylo/hooksig/pkg/webhooksig"
)

const testSecret = "whsec_AAAAAAAAAAAAAAAAAAAAAA=="

func TestSignPrintsFixtureHeaders(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"sign", "-secrets", testSecret, "-id", "msg_1", "-timestamp", "1700000000"}, strings.NewReader(`{"a":1}`), &out)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	want := "X-Webhook-Id: msg_1\nX-Webhook-Timestamp: 1700000000\nX-Webhook-Signature: v1,HA9nSvEEuynF+mEPWgOAUWbrVA21G6kMzfOt+yEvB3I=\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestVerifyAcceptsAndRejects(t *testing.T) {
	now := time.Now().Unix()
	ts := strconv.FormatInt(now, 10)
	sig, err := webhooksig.SignWithTimestamp("msg_cli", now, []byte("hello"), testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var out bytes.Buffer
	args := []string{"verify", "-secrets", testSecret, "-id", "msg_cli", "-timestamp", ts, "-signature", sig.Header}
	if err := run(args, strings.NewReader("hello"), &out); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if strings.TrimSpace(out.String()) != "accepted" {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	err = run(args, strings.NewReader("hellO"), &out)
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if !strings.Contains(out.String(), string(webhooksig.ErrorInvalidSignature)) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSecretUsesEnvDefaults(t *testing.T) {
	t.Setenv("HOOKSIG_SECRETS", testSecret)

	var out bytes.Buffer
	if err := run([]string{"sign", "-id", "msg_1", "-timestamp", "1700000000"}, strings.NewReader(`{"a":1}`), &out); err != nil {
		t.Fatalf("sign with env secrets: %v", err)
	}

	out.Reset()
	if err := run([]string{"secret"}, nil, &out); err != nil {
		t.Fatalf("secret: %v", err)
	}
	if _, err := webhooksig.ParseSecret(strings.TrimSpace(out.String())); err != nil {
		t.Fatalf("generated secret does not parse: %v", err)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(nil, nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected usage error")
	}
	if err := run([]string{"bogus"}, nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown command error")
	}
}
