// Package storage issues time-limited signed URLs for raw pitch-video
// uploads. The transcoding provider fetches the source through these URLs;
// nothing else in the system reads the raw object.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// SourceURLTTL matches the window the provider has to start fetching
	// the source after a job submission.
	SourceURLTTL = 20 * time.Minute

	// UploadURLTTL bounds how long a founder's issued upload URL stays valid.
	UploadURLTTL = 60 * time.Minute
)

var ErrInvalidSignedURL = errors.New("invalid or expired signed url")

// Signer builds and verifies HMAC-signed expiring URLs under a base URL.
type Signer struct {
	baseURL string
	secret  []byte
}

func NewSigner(baseURL, secret string) *Signer {
	return &Signer{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secret:  []byte(secret),
	}
}

// SignSourceURL builds a time-limited fetch URL for a stored video path,
// suitable to hand to the transcoding provider.
func (s *Signer) SignSourceURL(videoPath string, now time.Time) (string, error) {
	return s.sign("/media/pitch-videos", videoPath, now.Add(SourceURLTTL))
}

// SignUploadURL builds a time-limited PUT target for a founder's raw upload.
func (s *Signer) SignUploadURL(videoPath string, now time.Time) (string, error) {
	return s.sign("/media/uploads", videoPath, now.Add(UploadURLTTL))
}

func (s *Signer) sign(prefix, videoPath string, expires time.Time) (string, error) {
	videoPath = strings.TrimLeft(strings.TrimSpace(videoPath), "/")
	if videoPath == "" {
		return "", fmt.Errorf("video path is required")
	}

	exp := strconv.FormatInt(expires.Unix(), 10)
	q := url.Values{}
	q.Set("expires", exp)
	q.Set("signature", s.signature(prefix, videoPath, exp))

	return s.baseURL + prefix + "/" + videoPath + "?" + q.Encode(), nil
}

// Verify checks the signature and expiry on an inbound media request.
func (s *Signer) Verify(prefix, videoPath, expires, signature string, now time.Time) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignedURL
	}
	if now.Unix() > exp {
		return ErrInvalidSignedURL
	}

	expected := s.signature(prefix, strings.TrimLeft(videoPath, "/"), expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignedURL
	}
	return nil
}

func (s *Signer) signature(prefix, videoPath, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(prefix + "/" + videoPath + ":" + expires))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
