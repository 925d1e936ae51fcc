// package media serves the raw pitch-video store behind signed URLs.
// Founders PUT uploads here; the transcoding provider GETs the source.
// Both paths are authenticated by the URL signature alone.
package media

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/internal/storage"
)

const maxUploadBytes = 1 << 30 // 1 GiB

// cleanMediaPath normalizes the wildcard path and rejects traversal.
func cleanMediaPath(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "..") || strings.Contains(raw, "\\") {
		return "", false
	}
	p := path.Clean("/" + raw)
	if p == "/" {
		return "", false
	}
	return strings.TrimPrefix(p, "/"), true
}

func verifyRequest(c echo.Context, signer *storage.Signer, prefix string) (string, error) {
	videoPath, ok := cleanMediaPath(c.Param("*"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid media path")
	}

	err := signer.Verify(prefix, videoPath, c.QueryParam("expires"), c.QueryParam("signature"), time.Now())
	if err != nil {
		return "", echo.NewHTTPError(http.StatusForbidden, "invalid or expired signed url")
	}
	return videoPath, nil
}

// HandleUpload accepts a founder's raw video over a signed PUT URL and
// stores it under the media root.
func HandleUpload(signer *storage.Signer, mediaRoot string) echo.HandlerFunc {
	return func(c echo.Context) error {
		videoPath, err := verifyRequest(c, signer, "/media/uploads")
		if err != nil {
			return err
		}

		dest := filepath.Join(mediaRoot, filepath.FromSlash(videoPath))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			slog.Error("failed to create media directory", "path", dest, "error", err)
			return c.JSON(500, map[string]string{"error": "failed to store upload"})
		}

		f, err := os.Create(dest)
		if err != nil {
			slog.Error("failed to create media file", "path", dest, "error", err)
			return c.JSON(500, map[string]string{"error": "failed to store upload"})
		}
		defer f.Close()

		written, err := io.Copy(f, io.LimitReader(c.Request().Body, maxUploadBytes))
		if err != nil {
			os.Remove(dest)
			slog.Error("failed to write upload", "path", dest, "error", err)
			return c.JSON(500, map[string]string{"error": "failed to store upload"})
		}

		slog.Info("stored pitch video upload", "path", videoPath, "bytes", written)
		return c.JSON(201, map[string]any{"video_path": videoPath, "bytes": written})
	}
}

// HandleSource serves a stored raw video to the transcoding provider over
// a signed GET URL.
func HandleSource(signer *storage.Signer, mediaRoot string) echo.HandlerFunc {
	return func(c echo.Context) error {
		videoPath, err := verifyRequest(c, signer, "/media/pitch-videos")
		if err != nil {
			return err
		}

		dest := filepath.Join(mediaRoot, filepath.FromSlash(videoPath))
		if _, err := os.Stat(dest); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return c.JSON(404, map[string]string{"error": "video not found"})
			}
			slog.Error("failed to stat media file", "path", dest, "error", err)
			return c.JSON(500, map[string]string{"error": "failed to read video"})
		}

		return c.File(dest)
	}
}
