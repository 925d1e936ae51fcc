package muxvideo

import "strings"

// Status is the system's own transcode vocabulary at the provider boundary.
// Provider status strings are translated exactly once, here; nothing else
// in the codebase looks at a raw Mux status.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// MapAssetStatus translates a provider status string. Unknown values map to
// queued: the provider's catalog grows over time and a new in-flight status
// must not be treated as terminal.
func MapAssetStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ready":
		return StatusReady
	case "errored":
		return StatusFailed
	case "preparing", "processing", "waiting":
		return StatusProcessing
	default:
		return StatusQueued
	}
}

// PlaybackID is one streamable rendition of an asset.
type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// PickPlaybackID prefers a publicly policied playback id, falling back to
// the first non-empty one. Returns "" when none is usable.
func PickPlaybackID(ids []PlaybackID) string {
	for _, p := range ids {
		if p.Policy == "public" && p.ID != "" {
			return p.ID
		}
	}
	for _, p := range ids {
		if p.ID != "" {
			return p.ID
		}
	}
	return ""
}

// PlaybackURL builds the streamable URL for a playback id, or "" if the id
// is empty.
func PlaybackURL(playbackID string) string {
	playbackID = strings.TrimSpace(playbackID)
	if playbackID == "" {
		return ""
	}
	return "https://stream.mux.com/" + playbackID + "/medium.mp4"
}
