package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fr0stylo/hooksig/pkg/webhooksig"
)

var errRejected = errors.New("delivery rejected")

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: webhooksig <sign|verify|secret> [flags]")
	}
	v := viper.New()
	v.AutomaticEnv()
	defaultSecrets := strings.TrimSpace(v.GetString("HOOKSIG_SECRETS"))

	switch args[0] {
	case "sign":
		return runSign(args[1:], defaultSecrets, stdin, stdout)
	case "verify":
		return runVerify(args[1:], defaultSecrets, stdin, stdout)
	case "secret":
		secret, err := webhooksig.GenerateSecret()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, secret)
		return err
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runSign(args []string, defaultSecrets string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	secrets := fs.String("secrets", defaultSecrets, "Comma separated signing secrets (or HOOKSIG_SECRETS)")
	messageID := fs.String("id", "", "Message id (default: generated)")
	timestamp := fs.Int64("timestamp", 0, "Unix timestamp (default: now)")
	bodyPath := fs.String("body", "-", "Body file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	body, err := readBody(*bodyPath, stdin)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(*messageID)
	if id == "" {
		id = webhooksig.NewMessageID()
	}
	ts := *timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}

	sig, err := webhooksig.SignWithTimestamp(id, ts, body, splitSecrets(*secrets)...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s: %s\n%s: %d\n%s: %s\n",
		webhooksig.HeaderID, sig.MessageID,
		webhooksig.HeaderTimestamp, sig.Timestamp,
		webhooksig.HeaderSignature, sig.Header,
	)
	return err
}

func runVerify(args []string, defaultSecrets string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	secrets := fs.String("secrets", defaultSecrets, "Comma separated signing secrets (or HOOKSIG_SECRETS)")
	messageID := fs.String("id", "", "X-Webhook-Id value")
	timestamp := fs.String("timestamp", "", "X-Webhook-Timestamp value")
	signature := fs.String("signature", "", "X-Webhook-Signature value")
	bodyPath := fs.String("body", "-", "Body file, - for stdin")
	tolerance := fs.Duration("tolerance", webhooksig.DefaultTolerance, "Accepted clock skew")
	if err := fs.Parse(args); err != nil {
		return err
	}

	body, err := readBody(*bodyPath, stdin)
	if err != nil {
		return err
	}
	verifier := webhooksig.NewVerifier(splitSecrets(*secrets), webhooksig.WithTolerance(*tolerance))
	verifyErr := verifier.Verify(webhooksig.Delivery{
		MessageID: *messageID,
		Timestamp: *timestamp,
		Signature: *signature,
		Body:      body,
	})
	if verifyErr == nil {
		_, err = fmt.Fprintln(stdout, "accepted")
		return err
	}
	fmt.Fprintf(stdout, "rejected: %s (%d)\n", webhooksig.Classify(verifyErr), webhooksig.HTTPStatus(verifyErr))
	return errRejected
}

func readBody(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func splitSecrets(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
