package pitch_api

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

type feedItem struct {
	PitchID     string `json:"pitch_id"`
	StartupName string `json:"startup_name"`
	Title       string `json:"title"`
	FounderName string `json:"founder_name"`
	PlaybackURL string `json:"playback_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// HandleListPitches serves the public feed of approved pitches. Playback
// URLs are derived from the stored playback id; approved legacy pitches
// without one simply omit the field.
func HandleListPitches(store *db.PitchStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))

		pitches, err := store.ListPitchesByStatus(c.Request().Context(), db.ApprovalApproved, limit)
		if err != nil {
			slog.Error("failed to list approved pitches", "error", err)
			return c.JSON(500, map[string]string{"error": "failed to list pitches"})
		}

		items := make([]feedItem, 0, len(pitches))
		for _, p := range pitches {
			item := feedItem{
				PitchID:     p.ID.String(),
				StartupName: p.StartupName,
				Title:       p.Title,
				FounderName: p.FounderName,
				CreatedAt:   p.CreatedAt.Time.Format("2006-01-02T15:04:05Z07:00"),
			}
			if p.PlaybackID.Valid && p.PlaybackID.String != "" {
				item.PlaybackURL = muxvideo.PlaybackURL(p.PlaybackID.String)
			}
			items = append(items, item)
		}

		return c.JSON(200, map[string]any{"pitches": items})
	}
}
