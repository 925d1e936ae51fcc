package pitchflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

const eventTypePrefix = "video.asset."

// EventErrors is the provider's error detail on an errored asset.
type EventErrors struct {
	Type     string   `json:"type"`
	Messages []string `json:"messages"`
}

// EventData is the asset payload of a webhook event.
type EventData struct {
	ID          string                `json:"id"`
	Passthrough string                `json:"passthrough"`
	PlaybackIDs []muxvideo.PlaybackID `json:"playback_ids"`
	Errors      *EventErrors          `json:"errors"`
}

// Event is an inbound, already signature-verified webhook event.
type Event struct {
	Type string     `json:"type"`
	Data *EventData `json:"data"`
}

// WebhookResult tells the handler what to acknowledge. Exactly one of
// Status and Ignored is set; both map to a 200 acknowledgement so the
// provider never retries over state it cannot fix.
type WebhookResult struct {
	Status  string
	Ignored string
}

func ignored(reason string) *WebhookResult {
	return &WebhookResult{Ignored: reason}
}

// ApplyWebhookEvent applies a provider event to the owning pitch record.
// Every transition is idempotent: re-delivery of the same event lands in
// the same end state. Unknown event families, unknown assets and degraded
// stores are acknowledged without action.
func (s *Service) ApplyWebhookEvent(ctx context.Context, event Event) (*WebhookResult, error) {
	eventType := strings.TrimSpace(event.Type)
	if !strings.HasPrefix(eventType, eventTypePrefix) {
		return ignored("unsupported_event_type"), nil
	}

	if event.Data == nil || strings.TrimSpace(event.Data.ID) == "" {
		return ignored("missing_asset_id"), nil
	}
	assetID := strings.TrimSpace(event.Data.ID)

	pitch, result, err := s.resolvePitch(ctx, assetID, event.Data.Passthrough)
	if err != nil {
		if errors.Is(err, db.ErrTranscodeColumnsMissing) {
			return ignored("missing_video_processing_columns"), nil
		}
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	res, err := s.applyEvent(ctx, eventType, assetID, pitch, event.Data)
	if err != nil && errors.Is(err, db.ErrTranscodeColumnsMissing) {
		return ignored("missing_video_processing_columns"), nil
	}
	return res, err
}

// resolvePitch looks the owning pitch up by asset id, falling back to the
// passthrough correlation id for the first event of a fresh job. A non-nil
// WebhookResult means the event should be acknowledged without action.
func (s *Service) resolvePitch(ctx context.Context, assetID, passthrough string) (*db.PitchRef, *WebhookResult, error) {
	pitch, err := s.store.FindPitchByAssetID(ctx, assetID)
	if err == nil {
		return pitch, nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("find pitch by asset id: %w", err)
	}

	// A retried pitch stops tracking its old job; late events for the
	// abandoned asset id must not be applied to the new one.
	superseded, err := s.store.IsSupersededAsset(ctx, assetID)
	if err != nil {
		return nil, nil, fmt.Errorf("check superseded asset: %w", err)
	}
	if superseded {
		return nil, ignored("superseded_asset"), nil
	}

	var pitchID pgtype.UUID
	if err := pitchID.Scan(strings.TrimSpace(passthrough)); err != nil {
		return nil, ignored("pitch_not_found"), nil
	}

	pitch, err = s.store.FindPitchRefByID(ctx, pitchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted pitches keep getting provider retries; ack them.
			return nil, ignored("pitch_not_found"), nil
		}
		return nil, nil, fmt.Errorf("find pitch by passthrough: %w", err)
	}
	return pitch, nil, nil
}

func (s *Service) applyEvent(ctx context.Context, eventType, assetID string, pitch *db.PitchRef, data *EventData) (*WebhookResult, error) {
	switch eventType {
	case "video.asset.ready":
		return s.applyReady(ctx, assetID, pitch, data)

	case "video.asset.errored":
		if err := s.store.SetVideoFailed(ctx, pitch.ID, assetID, resolveErrorMessage(data)); err != nil {
			return nil, err
		}
		return &WebhookResult{Status: "errored"}, nil

	case "video.asset.created", "video.asset.updated":
		applied, err := s.store.MarkVideoProcessingIfNotReady(ctx, pitch.ID, assetID)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Stale progress event after readiness; never regress.
			return ignored("already_ready"), nil
		}
		return &WebhookResult{Status: "processing"}, nil

	default:
		return ignored("unhandled_event"), nil
	}
}

func (s *Service) applyReady(ctx context.Context, assetID string, pitch *db.PitchRef, data *EventData) (*WebhookResult, error) {
	playbackID := muxvideo.PickPlaybackID(data.PlaybackIDs)
	if playbackID == "" {
		if err := s.store.SetVideoFailed(ctx, pitch.ID, assetID, "Mux ready event missing playback id"); err != nil {
			return nil, err
		}
		return &WebhookResult{Status: "failed_missing_playback_id"}, nil
	}

	now := s.now()
	if err := s.store.SetVideoReady(ctx, pitch.ID, assetID, playbackID, now); err != nil {
		return nil, err
	}

	// Auto-advance only a pitch still awaiting human review. The
	// conditional updates keep a concurrent admin rejection authoritative.
	pitchAdvanced, err := s.store.ApprovePitchIfPending(ctx, pitch.ID, now)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.ApproveStartupIfPending(ctx, pitch.StartupID); err != nil {
		return nil, err
	}

	if pitchAdvanced {
		slog.Info("pitch auto-approved on transcode readiness",
			"pitch_id", pitch.ID.String(), "asset_id", assetID)
	}

	return &WebhookResult{Status: "ready"}, nil
}

func resolveErrorMessage(data *EventData) string {
	if data.Errors != nil {
		for _, msg := range data.Errors.Messages {
			if strings.TrimSpace(msg) != "" {
				return strings.TrimSpace(msg)
			}
		}
		if strings.TrimSpace(data.Errors.Type) != "" {
			return strings.TrimSpace(data.Errors.Type)
		}
	}
	return "Mux asset errored"
}
