package pitchflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/internal/db"
)

// RetryTranscode re-submits the transcode job for a pitch stuck in the
// failed stage. It is an operator action distinct from approval: it never
// approves synchronously, even if the provider reports readiness inline.
func (s *Service) RetryTranscode(ctx context.Context, pitchID pgtype.UUID) (Outcome, error) {
	pv, err := s.store.GetPitchVideo(ctx, pitchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPitchNotFound
		}
		return "", fmt.Errorf("load pitch video: %w", err)
	}

	// A degraded store has no transcode columns to act on.
	if pv.Stage == db.VideoStageLegacy {
		return "", ErrRetryUnavailable
	}

	if !pv.VideoPath.Valid || pv.VideoPath.String == "" {
		return "", ErrVideoRequired
	}

	if hasReadyPlayback(pv) {
		return OutcomeApproved, nil
	}

	if inFlight(pv.Stage) {
		return OutcomeQueued, nil
	}

	// Pending records go through the approval gate, not retry.
	if pv.Stage != db.VideoStageFailed {
		return "", fmt.Errorf("%w: stage %s", ErrNotRetryable, pv.Stage)
	}

	asset, err := s.submitTranscode(ctx, pv)
	if err != nil {
		return "", err
	}

	slog.Info("transcode retry submitted",
		"pitch_id", pv.ID.String(), "asset_id", asset.AssetID, "status", asset.Status)

	return OutcomeQueued, nil
}
