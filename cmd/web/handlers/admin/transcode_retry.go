package admin

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/cmd/web/handlers/common"
	"github.com/saharsh4u/startupmanch/internal/pitchflow"
)

// HandleRetryTranscode resubmits a failed transcode. Only failed pitches
// are retryable; everything else answers 409 with the reason.
func HandleRetryTranscode(flow *pitchflow.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pitchUUID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		outcome, err := flow.RetryTranscode(c.Request().Context(), pitchUUID)
		if err != nil {
			switch {
			case errors.Is(err, pitchflow.ErrPitchNotFound):
				return c.JSON(404, map[string]string{"error": "pitch not found"})
			case errors.Is(err, pitchflow.ErrVideoRequired):
				return c.JSON(400, map[string]string{"error": "pitch has no video to transcode"})
			case errors.Is(err, pitchflow.ErrNotRetryable), errors.Is(err, pitchflow.ErrRetryUnavailable):
				return c.JSON(409, map[string]string{"error": err.Error()})
			default:
				slog.Error("transcode retry failed", "pitch_id", pitchUUID.String(), "error", err)
				return c.JSON(500, map[string]string{"error": "transcode retry failed"})
			}
		}

		if outcome == pitchflow.OutcomeApproved {
			return c.JSON(200, map[string]string{"status": "approved", "pitch_id": pitchUUID.String()})
		}
		return c.JSON(202, map[string]string{"status": "queued_for_transcode", "pitch_id": pitchUUID.String()})
	}
}
