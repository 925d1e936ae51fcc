package muxvideo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func signBody(t *testing.T, secret string, timestamp int64, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature_Valid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"type":"video.asset.ready"}`)
	sig := signBody(t, testSecret, now.Unix(), body)

	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig)
	require.True(t, VerifyWebhookSignature(body, header, testSecret, now))
}

func TestVerifyWebhookSignature_SecretRotation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{}`)
	oldSig := signBody(t, "whsec_old", now.Unix(), body)
	newSig := signBody(t, testSecret, now.Unix(), body)

	// Provider sends one v1 per active secret during rotation.
	header := fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(), oldSig, newSig)
	require.True(t, VerifyWebhookSignature(body, header, testSecret, now))
}

func TestVerifyWebhookSignature_StaleTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{}`)

	// Correct HMAC, but signed six minutes ago.
	stale := now.Add(-6 * time.Minute)
	sig := signBody(t, testSecret, stale.Unix(), body)
	header := fmt.Sprintf("t=%d,v1=%s", stale.Unix(), sig)
	require.False(t, VerifyWebhookSignature(body, header, testSecret, now))

	// A future timestamp outside the window is just as invalid.
	future := now.Add(6 * time.Minute)
	sig = signBody(t, testSecret, future.Unix(), body)
	header = fmt.Sprintf("t=%d,v1=%s", future.Unix(), sig)
	require.False(t, VerifyWebhookSignature(body, header, testSecret, now))
}

func TestVerifyWebhookSignature_WithinTolerance(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{}`)

	signed := now.Add(-4 * time.Minute)
	sig := signBody(t, testSecret, signed.Unix(), body)
	header := fmt.Sprintf("t=%d,v1=%s", signed.Unix(), sig)
	require.True(t, VerifyWebhookSignature(body, header, testSecret, now))
}

func TestVerifyWebhookSignature_Rejections(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{}`)
	goodSig := signBody(t, testSecret, now.Unix(), body)

	tests := []struct {
		name   string
		header string
		secret string
	}{
		{"empty header", "", testSecret},
		{"missing timestamp", "v1=" + goodSig, testSecret},
		{"missing signature", fmt.Sprintf("t=%d", now.Unix()), testSecret},
		{"non-numeric timestamp", "t=soon,v1=" + goodSig, testSecret},
		{"non-hex signature", fmt.Sprintf("t=%d,v1=zz", now.Unix()), testSecret},
		{"wrong secret", fmt.Sprintf("t=%d,v1=%s", now.Unix(), goodSig), "whsec_other"},
		{"empty secret", fmt.Sprintf("t=%d,v1=%s", now.Unix(), goodSig), ""},
		{"garbage header", "not-a-signature", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, VerifyWebhookSignature(body, tt.header, tt.secret, now))
		})
	}
}

func TestVerifyWebhookSignature_TamperedBody(t *testing.T) {
	now := time.Unix(1700000000, 0)
	sig := signBody(t, testSecret, now.Unix(), []byte(`{"a":1}`))
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig)

	require.False(t, VerifyWebhookSignature([]byte(`{"a":2}`), header, testSecret, now))
}
