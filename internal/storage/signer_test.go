package storage

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignSourceURL_RoundTrip(t *testing.T) {
	s := NewSigner("https://startupmanch.example/", "signing-secret")
	now := time.Unix(1700000000, 0)

	signed, err := s.SignSourceURL("2026/pitch-1.mp4", now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(signed, "https://startupmanch.example/media/pitch-videos/2026/pitch-1.mp4?"))

	u, err := url.Parse(signed)
	require.NoError(t, err)

	err = s.Verify("/media/pitch-videos", "2026/pitch-1.mp4",
		u.Query().Get("expires"), u.Query().Get("signature"), now.Add(SourceURLTTL-time.Minute))
	require.NoError(t, err)
}

func TestVerify_Expired(t *testing.T) {
	s := NewSigner("https://startupmanch.example", "signing-secret")
	now := time.Unix(1700000000, 0)

	signed, err := s.SignSourceURL("pitch-1.mp4", now)
	require.NoError(t, err)

	u, _ := url.Parse(signed)
	err = s.Verify("/media/pitch-videos", "pitch-1.mp4",
		u.Query().Get("expires"), u.Query().Get("signature"), now.Add(SourceURLTTL+time.Second))
	require.ErrorIs(t, err, ErrInvalidSignedURL)
}

func TestVerify_TamperedPath(t *testing.T) {
	s := NewSigner("https://startupmanch.example", "signing-secret")
	now := time.Unix(1700000000, 0)

	signed, err := s.SignSourceURL("pitch-1.mp4", now)
	require.NoError(t, err)

	u, _ := url.Parse(signed)
	err = s.Verify("/media/pitch-videos", "pitch-2.mp4",
		u.Query().Get("expires"), u.Query().Get("signature"), now)
	require.ErrorIs(t, err, ErrInvalidSignedURL)
}

func TestSignSourceURL_EmptyPath(t *testing.T) {
	s := NewSigner("https://startupmanch.example", "signing-secret")
	_, err := s.SignSourceURL("  ", time.Now())
	require.Error(t, err)
}
