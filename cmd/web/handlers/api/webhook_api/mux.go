// package webhook_api receives transcode lifecycle events from Mux.
package webhook_api

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saharsh4u/startupmanch/internal/muxvideo"
	"github.com/saharsh4u/startupmanch/internal/pitchflow"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// HandleMuxWebhook verifies the webhook signature over the raw body and
// hands the event to the state machine. Events the machine chooses to
// ignore are still acknowledged with 200 so the provider stops retrying;
// only transient persistence failures return 500.
func HandleMuxWebhook(flow *pitchflow.Service, webhookSecret string) echo.HandlerFunc {
	return func(c echo.Context) error {
		rawBody, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
		if err != nil {
			return c.JSON(400, map[string]string{"error": "failed to read request body"})
		}

		signature := c.Request().Header.Get(muxvideo.SignatureHeader)
		if !muxvideo.VerifyWebhookSignature(rawBody, signature, webhookSecret, time.Now()) {
			return c.JSON(401, map[string]string{"error": "invalid webhook signature"})
		}

		if len(rawBody) == 0 {
			return c.JSON(200, map[string]any{"received": true, "ignored": "empty_body"})
		}

		// A body that authenticated but does not parse is a provider or
		// integration defect, not a client error.
		var event pitchflow.Event
		if err := json.Unmarshal(rawBody, &event); err != nil {
			slog.Error("failed to parse webhook payload", "error", err)
			return c.JSON(500, map[string]string{"error": "failed to parse webhook payload"})
		}

		result, err := flow.ApplyWebhookEvent(c.Request().Context(), event)
		if err != nil {
			slog.Error("failed to apply webhook event", "event_type", event.Type, "error", err)
			return c.JSON(500, map[string]string{"error": "failed to apply webhook event"})
		}

		if result.Ignored != "" {
			return c.JSON(200, map[string]any{"received": true, "ignored": result.Ignored})
		}
		return c.JSON(200, map[string]any{"received": true, "status": result.Status})
	}
}
