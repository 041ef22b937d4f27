package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// HeaderID carries the delivery message identifier.
	HeaderID = "X-Webhook-Id"
	// HeaderTimestamp carries the unix seconds at signing time.
	HeaderTimestamp = "X-Webhook-Timestamp"
	// HeaderSignature carries space-separated signature tokens.
	HeaderSignature = "X-Webhook-Signature"

	// Version prefixes every signature token.
	Version     = "v1"
	tokenSep    = " "
	tokenPrefix = Version + ","
)

// Signature is one signed delivery.
type Signature struct {
	MessageID string
	Timestamp int64
	Header    string
}

// NewMessageID returns a fresh msg_ prefixed delivery id.
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}

// Sign signs body for delivery at the current time.
func Sign(messageID string, body []byte, secrets ...string) (Signature, error) {
	return SignWithTimestamp(messageID, time.Now().Unix(), body, secrets...)
}

// SignWithTimestamp signs body with every secret. Passing both the new and the
// previous secret during rotation yields a header either receiver accepts.
func SignWithTimestamp(messageID string, timestamp int64, body []byte, secrets ...string) (Signature, error) {
	keys, err := parseSecrets(secrets)
	if err != nil {
		return Signature{}, err
	}
	ts := strconv.FormatInt(timestamp, 10)
	tokens := make([]string, 0, len(keys))
	for _, key := range keys {
		tokens = append(tokens, token(key, messageID, ts, body))
	}
	return Signature{
		MessageID: messageID,
		Timestamp: timestamp,
		Header:    strings.Join(tokens, tokenSep),
	}, nil
}

// Apply writes the delivery headers.
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderID, s.MessageID)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	h.Set(HeaderSignature, s.Header)
}

func token(key Secret, messageID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, key.key)
	mac.Write([]byte(messageID))
	mac.Write([]byte{'.'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return tokenPrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
