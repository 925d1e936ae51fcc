package muxvideo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Mux-Signature"

// maxWebhookAge bounds the replay window for captured payloads.
const maxWebhookAge = 5 * time.Minute

type parsedSignature struct {
	timestamp  string
	signatures []string
}

// parseSignatureHeader splits "t=1700000000,v1=abc[,v1=def]". Multiple v1
// entries appear during secret rotation. Returns nil if the header carries
// no timestamp or no signature.
func parseSignatureHeader(headerValue string) *parsedSignature {
	if strings.TrimSpace(headerValue) == "" {
		return nil
	}

	parsed := parsedSignature{}
	for _, part := range strings.Split(headerValue, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key == "" || value == "" {
			continue
		}
		switch key {
		case "t":
			parsed.timestamp = value
		case "v1":
			parsed.signatures = append(parsed.signatures, value)
		}
	}

	if parsed.timestamp == "" || len(parsed.signatures) == 0 {
		return nil
	}
	return &parsed
}

// VerifyWebhookSignature checks that rawBody was signed by the provider with
// secret and that the signature is fresh. Fails closed: any parse error,
// stale timestamp or mismatch returns false, and callers must reject the
// request without reading the body.
func VerifyWebhookSignature(rawBody []byte, headerValue, secret string, now time.Time) bool {
	parsed := parseSignatureHeader(headerValue)
	if parsed == nil || secret == "" {
		return false
	}

	timestamp, err := strconv.ParseInt(parsed.timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Unix() - timestamp
	if age < 0 {
		age = -age
	}
	if time.Duration(age)*time.Second > maxWebhookAge {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parsed.timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	for _, sig := range parsed.signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}
