// package pitch_api provides the public pitch submission and browse API.
package pitch_api

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/internal/db"
)

type createPitchRequest struct {
	StartupName string `json:"startup_name"`
	Title       string `json:"title"`
	FounderName string `json:"founder_name"`
	VideoPath   string `json:"video_path"`
}

// HandleCreatePitch registers a startup and its pitch in one transaction.
// Both rows start pending; the video path may be attached later via the
// upload flow.
func HandleCreatePitch(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createPitchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(400, map[string]string{"error": "invalid json"})
		}

		req.StartupName = strings.TrimSpace(req.StartupName)
		req.Title = strings.TrimSpace(req.Title)
		req.FounderName = strings.TrimSpace(req.FounderName)

		if req.StartupName == "" || req.Title == "" || req.FounderName == "" {
			return c.JSON(400, map[string]string{"error": "startup_name, title and founder_name are required"})
		}

		ctx := c.Request().Context()
		queries, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			slog.Error("failed to begin transaction", "error", err)
			return c.JSON(500, map[string]string{"error": "failed to create pitch"})
		}
		defer tx.Rollback(ctx)

		startup, err := queries.NewStartup(ctx, db.NewStartupParams{Name: req.StartupName})
		if err != nil {
			slog.Error("failed to create startup", "error", err)
			return c.JSON(500, map[string]string{"error": "failed to create pitch"})
		}

		pitch, err := queries.NewPitch(ctx, db.NewPitchParams{
			StartupID:   startup.ID,
			Title:       req.Title,
			FounderName: req.FounderName,
			VideoPath:   strings.TrimSpace(req.VideoPath),
		})
		if err != nil {
			slog.Error("failed to create pitch", "startup_id", startup.ID.String(), "error", err)
			return c.JSON(500, map[string]string{"error": "failed to create pitch"})
		}

		if err := tx.Commit(ctx); err != nil {
			slog.Error("failed to commit pitch creation", "error", err)
			return c.JSON(500, map[string]string{"error": "failed to create pitch"})
		}

		return c.JSON(201, map[string]string{
			"pitch_id":   pitch.ID.String(),
			"startup_id": startup.ID.String(),
			"status":     string(pitch.Status),
		})
	}
}
