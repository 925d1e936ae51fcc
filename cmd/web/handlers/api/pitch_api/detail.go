package pitch_api

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/cmd/web/handlers/common"
	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

type pitchDetail struct {
	PitchID     string `json:"pitch_id"`
	StartupID   string `json:"startup_id"`
	Status      string `json:"status"`
	VideoStage  string `json:"video_stage"`
	PlaybackURL string `json:"playback_url,omitempty"`
	VideoError  string `json:"video_error,omitempty"`
	RequestedAt string `json:"transcode_requested_at,omitempty"`
	ReadyAt     string `json:"video_ready_at,omitempty"`
}

// HandlePitchDetail reports a single pitch's review and transcode state.
// Against a degraded store the stage comes back as legacy with no
// transcode timestamps.
func HandlePitchDetail(store *db.PitchStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		pitchUUID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		pv, err := store.GetPitchVideo(c.Request().Context(), pitchUUID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(404, map[string]string{"error": "pitch not found"})
			}
			slog.Error("failed to load pitch", "pitch_id", pitchUUID.String(), "error", err)
			return c.JSON(500, map[string]string{"error": "failed to load pitch"})
		}

		detail := pitchDetail{
			PitchID:    pv.ID.String(),
			StartupID:  pv.StartupID.String(),
			Status:     string(pv.Status),
			VideoStage: string(pv.Stage),
		}
		if pv.PlaybackID.Valid && pv.PlaybackID.String != "" {
			detail.PlaybackURL = muxvideo.PlaybackURL(pv.PlaybackID.String)
		}
		if pv.ErrorText.Valid {
			detail.VideoError = pv.ErrorText.String
		}
		if pv.RequestedAt.Valid {
			detail.RequestedAt = pv.RequestedAt.Time.Format("2006-01-02T15:04:05Z07:00")
		}
		if pv.ReadyAt.Valid {
			detail.ReadyAt = pv.ReadyAt.Time.Format("2006-01-02T15:04:05Z07:00")
		}

		return c.JSON(200, detail)
	}
}
