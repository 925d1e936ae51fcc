package muxvideo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAsset_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/assets", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "token-id", user)
		require.Equal(t, "token-secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"asset-1","status":"preparing","passthrough":"pitch-1","playback_ids":[{"id":"pb-1","policy":"public"}]}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "token-id", "token-secret")
	asset, err := c.CreateAsset(context.Background(), CreateAssetInput{
		SourceURL:          "https://storage.example/signed/video.mp4",
		PassthroughPitchID: "pitch-1",
	})
	require.NoError(t, err)
	require.Equal(t, "asset-1", asset.AssetID)
	require.Equal(t, "pb-1", asset.PlaybackID)
	require.Equal(t, StatusProcessing, asset.Status)

	require.Equal(t, "https://storage.example/signed/video.mp4", gotBody["input"])
	require.Equal(t, "pitch-1", gotBody["passthrough"])
	require.Equal(t, "standard", gotBody["mp4_support"])
	require.Equal(t, []any{"public"}, gotBody["playback_policy"])
}

func TestCreateAsset_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_parameters","messages":["input url is not reachable"]}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "id", "secret")
	asset, err := c.CreateAsset(context.Background(), CreateAssetInput{
		SourceURL:          "https://storage.example/video.mp4",
		PassthroughPitchID: "pitch-1",
	})
	require.Nil(t, asset)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, http.StatusUnprocessableEntity, provErr.StatusCode)
	require.Equal(t, "input url is not reachable", provErr.Message)
}

func TestCreateAsset_MissingAssetID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"preparing"}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "id", "secret")
	_, err := c.CreateAsset(context.Background(), CreateAssetInput{
		SourceURL:          "https://storage.example/video.mp4",
		PassthroughPitchID: "pitch-1",
	})

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, "asset id missing from response", provErr.Message)
}

func TestCreateAsset_InputValidation(t *testing.T) {
	c := NewClient("id", "secret")

	_, err := c.CreateAsset(context.Background(), CreateAssetInput{PassthroughPitchID: "pitch-1"})
	require.Error(t, err)

	_, err = c.CreateAsset(context.Background(), CreateAssetInput{SourceURL: "https://x"})
	require.Error(t, err)
}
