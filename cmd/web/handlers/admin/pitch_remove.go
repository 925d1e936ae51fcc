package admin

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/cmd/web/handlers/common"
	"github.com/saharsh4u/startupmanch/internal/db"
)

// HandleRemovePitch rejects a pending pitch. A pitch that is no longer
// pending answers 409; rejection never races an approval into reversal.
func HandleRemovePitch(store *db.PitchStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		pitchUUID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		rejected, err := store.RejectPitchIfPending(c.Request().Context(), pitchUUID)
		if err != nil {
			slog.Error("failed to reject pitch", "pitch_id", pitchUUID.String(), "error", err)
			return c.JSON(500, map[string]string{"error": "failed to reject pitch"})
		}
		if !rejected {
			return c.JSON(409, map[string]string{"error": "pitch is not pending"})
		}

		return c.JSON(200, map[string]string{"status": "rejected", "pitch_id": pitchUUID.String()})
	}
}
