// package upload_api issues signed upload URLs for raw pitch videos.
package upload_api

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/cmd/web/auth"
	"github.com/saharsh4u/startupmanch/cmd/web/handlers/common"
	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/storage"
)

var allowedVideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
}

type signUploadRequest struct {
	PitchID  string `json:"pitch_id"`
	Filename string `json:"filename"`
}

// HandleSignUpload mints a time-limited upload URL for a pitch video and
// records the destination path on the pitch. Requires a logged-in founder.
// Any previous path is replaced; the transcode is only re-run when an
// admin acts on the pitch.
func HandleSignUpload(sm *auth.SessionManager, signer *storage.Signer, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, _, err := common.RequireSessionUser(c, sm); err != nil {
			return err
		}

		var req signUploadRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(400, map[string]string{"error": "invalid json"})
		}

		pitchUUID, err := common.ParseUUID(req.PitchID)
		if err != nil {
			return c.JSON(400, map[string]string{"error": "invalid pitch_id"})
		}

		ext := strings.ToLower(path.Ext(req.Filename))
		if !allowedVideoExtensions[ext] {
			return c.JSON(400, map[string]string{"error": "unsupported video format"})
		}

		ctx := c.Request().Context()
		if _, err := dbc.Queries(ctx).SelectPitchByID(ctx, pitchUUID); err != nil {
			return c.JSON(404, map[string]string{"error": "pitch not found"})
		}

		videoPath := "pitch-videos/" + pitchUUID.String() + "/" + uuid.NewString() + ext

		uploadURL, err := signer.SignUploadURL(videoPath, time.Now())
		if err != nil {
			slog.Error("failed to sign upload url", "pitch_id", pitchUUID.String(), "error", err)
			return c.JSON(500, map[string]string{"error": "failed to sign upload url"})
		}

		if err := dbc.Queries(ctx).SetPitchVideoPath(ctx, pitchUUID, videoPath); err != nil {
			slog.Error("failed to record video path", "pitch_id", pitchUUID.String(), "error", err)
			return c.JSON(500, map[string]string{"error": "failed to record video path"})
		}

		return c.JSON(200, map[string]string{
			"upload_url": uploadURL,
			"video_path": videoPath,
		})
	}
}
