// package admin provides admin moderation API handlers.
package admin

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/cmd/web/handlers/common"
	"github.com/saharsh4u/startupmanch/internal/pitchflow"
)

// HandleApprovePitch runs the transcode-gated approval. A not-yet-ready
// pitch answers 202 queued_for_transcode rather than an error; the admin
// revisits once the webhook has landed.
func HandleApprovePitch(flow *pitchflow.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		pitchUUID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		var req struct {
			StartupID string `json:"startup_id"`
		}
		// The body is optional; an empty POST approves without the
		// ownership cross-check.
		_ = c.Bind(&req)

		var startupUUID pgtype.UUID
		if s := strings.TrimSpace(req.StartupID); s != "" {
			if err := startupUUID.Scan(s); err != nil {
				return common.ErrBadRequest("invalid startup_id")
			}
		}

		approvedBy, _ := c.Get("currentUsername").(string)

		outcome, err := flow.ApprovePitch(c.Request().Context(), pitchflow.ApproveInput{
			PitchID:    pitchUUID,
			StartupID:  startupUUID,
			ApprovedBy: approvedBy,
		})
		if err != nil {
			switch {
			case errors.Is(err, pitchflow.ErrPitchNotFound):
				return c.JSON(404, map[string]string{"error": "pitch not found"})
			case errors.Is(err, pitchflow.ErrStartupMismatch):
				return c.JSON(400, map[string]string{"error": "pitch does not belong to startup_id"})
			case errors.Is(err, pitchflow.ErrVideoRequired):
				return c.JSON(400, map[string]string{"error": "pitch video is required before approval"})
			default:
				slog.Error("pitch approval failed", "pitch_id", pitchUUID.String(), "error", err)
				return c.JSON(500, map[string]string{"error": "approval workflow failed"})
			}
		}

		if outcome == pitchflow.OutcomeApproved {
			return c.JSON(200, map[string]string{"status": "approved", "pitch_id": pitchUUID.String()})
		}
		return c.JSON(202, map[string]string{"status": "queued_for_transcode", "pitch_id": pitchUUID.String()})
	}
}
