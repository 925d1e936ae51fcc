package muxvideo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapAssetStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"ready", StatusReady},
		{"READY", StatusReady},
		{"errored", StatusFailed},
		{"preparing", StatusProcessing},
		{"processing", StatusProcessing},
		{"waiting", StatusProcessing},
		{"created", StatusQueued},
		{"", StatusQueued},
		{"some_future_status", StatusQueued},
	}

	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, MapAssetStatus(tt.raw))
		})
	}
}

func TestPickPlaybackID(t *testing.T) {
	require.Equal(t, "", PickPlaybackID(nil))
	require.Equal(t, "", PickPlaybackID([]PlaybackID{{Policy: "public"}}))

	// Public policy wins over order.
	require.Equal(t, "pub", PickPlaybackID([]PlaybackID{
		{ID: "signed", Policy: "signed"},
		{ID: "pub", Policy: "public"},
	}))

	// Fall back to the first non-empty id.
	require.Equal(t, "signed", PickPlaybackID([]PlaybackID{
		{ID: "", Policy: "public"},
		{ID: "signed", Policy: "signed"},
	}))
}

func TestPlaybackURL(t *testing.T) {
	require.Equal(t, "https://stream.mux.com/pb123/medium.mp4", PlaybackURL("pb123"))
	require.Equal(t, "", PlaybackURL("  "))
}
