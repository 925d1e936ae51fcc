package pitchflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

// ApproveInput describes an admin approval attempt. StartupID is an
// optional ownership cross-check.
type ApproveInput struct {
	PitchID    pgtype.UUID
	StartupID  pgtype.UUID // zero value skips the ownership check
	ApprovedBy string
}

// ApprovePitch runs the transcode-gated approval flow:
//
//   - ready (or degraded-legacy) records are approved immediately, the
//     decision cascading to the owning startup
//   - records with a job in flight are reported queued without a duplicate
//     submission
//   - pending or failed records get a fresh job; if the provider reports
//     readiness inline the approval completes in the same call
//
// The in-flight check is a best-effort guard: concurrent attempts may both
// submit, which wastes a provider job but never corrupts state since the
// webhook path resolves whichever asset id was persisted last.
func (s *Service) ApprovePitch(ctx context.Context, input ApproveInput) (Outcome, error) {
	pv, err := s.store.GetPitchVideo(ctx, input.PitchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPitchNotFound
		}
		return "", fmt.Errorf("load pitch video: %w", err)
	}

	if input.StartupID.Valid && pv.StartupID != input.StartupID {
		return "", ErrStartupMismatch
	}

	// Legacy records gate exactly like ready ones: the store predates
	// transcode tracking and approval must keep working through the
	// migration window.
	if hasReadyPlayback(pv) || pv.Stage == db.VideoStageLegacy {
		return s.approve(ctx, pv, input.ApprovedBy)
	}

	if !pv.VideoPath.Valid || pv.VideoPath.String == "" {
		return "", ErrVideoRequired
	}

	if inFlight(pv.Stage) {
		return OutcomeQueued, nil
	}

	asset, err := s.submitTranscode(ctx, pv)
	if err != nil {
		return "", err
	}

	slog.Info("transcode job submitted",
		"pitch_id", pv.ID.String(), "asset_id", asset.AssetID, "status", asset.Status)

	// Some providers report readiness inline for trivial inputs.
	if asset.Status == muxvideo.StatusReady && asset.PlaybackID != "" {
		return s.approve(ctx, pv, input.ApprovedBy)
	}

	return OutcomeQueued, nil
}

func (s *Service) approve(ctx context.Context, pv *db.PitchVideo, approvedBy string) (Outcome, error) {
	err := s.store.MarkPitchApproved(ctx, db.MarkPitchApprovedParams{
		PitchID:    pv.ID,
		StartupID:  pv.StartupID,
		ApprovedBy: approvedBy,
		Now:        s.now(),
	})
	if err != nil {
		return "", err
	}
	return OutcomeApproved, nil
}
