package admin

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

type queueItem struct {
	PitchID     string `json:"pitch_id"`
	StartupID   string `json:"startup_id"`
	StartupName string `json:"startup_name"`
	Title       string `json:"title"`
	FounderName string `json:"founder_name"`
	Status      string `json:"status"`
	VideoStage  string `json:"video_stage"`
	PlaybackURL string `json:"playback_url,omitempty"`
	VideoError  string `json:"video_error,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// HandleModerationQueue lists pitches awaiting review, newest first. The
// status query parameter defaults to pending.
func HandleModerationQueue(store *db.PitchStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := db.ApprovalStatus(c.QueryParam("status"))
		switch status {
		case db.ApprovalPending, db.ApprovalApproved, db.ApprovalRejected:
		case "":
			status = db.ApprovalPending
		default:
			return c.JSON(400, map[string]string{"error": "unknown status"})
		}

		limit, _ := strconv.Atoi(c.QueryParam("limit"))

		pitches, err := store.ListPitchesByStatus(c.Request().Context(), status, limit)
		if err != nil {
			slog.Error("failed to list moderation queue", "status", status, "error", err)
			return c.JSON(500, map[string]string{"error": "failed to list pitches"})
		}

		items := make([]queueItem, 0, len(pitches))
		for _, p := range pitches {
			item := queueItem{
				PitchID:     p.ID.String(),
				StartupID:   p.StartupID.String(),
				StartupName: p.StartupName,
				Title:       p.Title,
				FounderName: p.FounderName,
				Status:      string(p.Status),
				VideoStage:  string(p.Stage),
				CreatedAt:   p.CreatedAt.Time.Format("2006-01-02T15:04:05Z07:00"),
			}
			if p.PlaybackID.Valid && p.PlaybackID.String != "" {
				item.PlaybackURL = muxvideo.PlaybackURL(p.PlaybackID.String)
			}
			if p.ErrorText.Valid {
				item.VideoError = p.ErrorText.String
			}
			items = append(items, item)
		}

		return c.JSON(200, map[string]any{"pitches": items})
	}
}
