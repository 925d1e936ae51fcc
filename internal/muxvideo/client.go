package muxvideo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.mux.com/video/v1"

// ProviderError is a failed call to the transcoding provider. Callers must
// not persist any transcode state when they receive one.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("mux: %s (status %d)", e.Message, e.StatusCode)
	}
	return "mux: " + e.Message
}

// Client submits transcode jobs to Mux.
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	http        *http.Client
}

func NewClient(tokenID, tokenSecret string) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		tokenID:     tokenID,
		tokenSecret: tokenSecret,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL, tokenID, tokenSecret string) *Client {
	c := NewClient(tokenID, tokenSecret)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Asset is the provider's view of a submitted transcode job.
type Asset struct {
	AssetID    string
	PlaybackID string // empty unless the provider policied one inline
	Status     Status
}

// CreateAssetInput describes a transcode job submission. PassthroughPitchID
// is echoed back verbatim in webhook events so they can be correlated before
// the asset id is persisted.
type CreateAssetInput struct {
	SourceURL          string
	PassthroughPitchID string
}

type assetEnvelope struct {
	Data *struct {
		ID          string       `json:"id"`
		Status      string       `json:"status"`
		Passthrough string       `json:"passthrough"`
		PlaybackIDs []PlaybackID `json:"playback_ids"`
	} `json:"data"`
	Error *struct {
		Type     string   `json:"type"`
		Message  string   `json:"message"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

// extractErrorMessage pulls the most specific message out of the provider
// error envelope.
func (e *assetEnvelope) extractErrorMessage(fallback string) string {
	if e.Error != nil {
		if e.Error.Message != "" {
			return e.Error.Message
		}
		if len(e.Error.Messages) > 0 && e.Error.Messages[0] != "" {
			return e.Error.Messages[0]
		}
		if e.Error.Type != "" {
			return e.Error.Type
		}
	}
	return fallback
}

// CreateAsset submits a transcode job for a time-limited signed source URL,
// requesting a public playback policy. Returns a *ProviderError on any
// non-success response or when the provider omits the asset id.
func (c *Client) CreateAsset(ctx context.Context, input CreateAssetInput) (*Asset, error) {
	sourceURL := strings.TrimSpace(input.SourceURL)
	if sourceURL == "" {
		return nil, fmt.Errorf("sourceURL is required")
	}
	passthrough := strings.TrimSpace(input.PassthroughPitchID)
	if passthrough == "" {
		return nil, fmt.Errorf("passthroughPitchID is required")
	}

	body, err := json.Marshal(map[string]any{
		"input":           sourceURL,
		"playback_policy": []string{"public"},
		"mp4_support":     "standard",
		"passthrough":     passthrough,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assets", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.basicAuthToken())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	var envelope assetEnvelope
	if len(raw) > 0 {
		// Tolerate a non-JSON error body; the envelope stays zero.
		_ = json.Unmarshal(raw, &envelope)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    envelope.extractErrorMessage("asset request failed"),
		}
	}

	if envelope.Data == nil || strings.TrimSpace(envelope.Data.ID) == "" {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    envelope.extractErrorMessage("asset id missing from response"),
		}
	}

	return &Asset{
		AssetID:    strings.TrimSpace(envelope.Data.ID),
		PlaybackID: PickPlaybackID(envelope.Data.PlaybackIDs),
		Status:     MapAssetStatus(envelope.Data.Status),
	}, nil
}

func (c *Client) basicAuthToken() string {
	return base64.StdEncoding.EncodeToString([]byte(c.tokenID + ":" + c.tokenSecret))
}
