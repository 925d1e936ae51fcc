package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// PitchStore reads and writes the per-pitch transcode state. Every state
// transition is a conditional update scoped by the expected prior state and
// checked via the affected-row count; there is no locking. The injected
// Capabilities value downgrades all access to the reduced column set once
// an undefined-column error is seen.
type PitchStore struct {
	dbc  *DatabaseConnection
	caps *Capabilities
}

func NewPitchStore(dbc *DatabaseConnection, caps *Capabilities) *PitchStore {
	return &PitchStore{dbc: dbc, caps: caps}
}

// Capabilities exposes the injected capability flag.
func (s *PitchStore) Capabilities() *Capabilities {
	return s.caps
}

// degrade flips the capability flag when err indicates the transcode
// columns are absent. Returns true if the store is now degraded.
func (s *PitchStore) degrade(err error) bool {
	if IsUndefinedColumnErr(err) {
		s.caps.MarkLegacy()
		return true
	}
	return false
}

const pitchVideoExtendedSQL = `
SELECT id, startup_id, status, video_path,
       COALESCE(video_processing_status, 'pending'),
       video_mux_asset_id, video_mux_playback_id, video_error,
       video_transcode_requested_at, video_ready_at
FROM pitches
WHERE id = $1`

const pitchVideoReducedSQL = `
SELECT id, startup_id, status, video_path
FROM pitches
WHERE id = $1`

// GetPitchVideo loads the transcode-state view of a pitch. In a degraded
// store the extended fields are absent and Stage is VideoStageLegacy.
func (s *PitchStore) GetPitchVideo(ctx context.Context, pitchID pgtype.UUID) (*PitchVideo, error) {
	if !s.caps.Legacy() {
		var pv PitchVideo
		err := s.dbc.QueryRow(ctx, pitchVideoExtendedSQL, pitchID).Scan(
			&pv.ID, &pv.StartupID, &pv.Status, &pv.VideoPath,
			&pv.Stage, &pv.AssetID, &pv.PlaybackID, &pv.ErrorText,
			&pv.RequestedAt, &pv.ReadyAt,
		)
		if err == nil {
			return &pv, nil
		}
		if !s.degrade(err) {
			return nil, err
		}
	}

	var pv PitchVideo
	err := s.dbc.QueryRow(ctx, pitchVideoReducedSQL, pitchID).Scan(
		&pv.ID, &pv.StartupID, &pv.Status, &pv.VideoPath,
	)
	if err != nil {
		return nil, err
	}
	pv.Stage = VideoStageLegacy
	return &pv, nil
}

// FindPitchByAssetID resolves the pitch owning a provider asset id.
// Returns pgx.ErrNoRows when no pitch holds the asset id.
func (s *PitchStore) FindPitchByAssetID(ctx context.Context, assetID string) (*PitchRef, error) {
	if s.caps.Legacy() {
		return nil, ErrTranscodeColumnsMissing
	}
	var ref PitchRef
	err := s.dbc.QueryRow(ctx,
		`SELECT id, startup_id FROM pitches WHERE video_mux_asset_id = $1`,
		assetID,
	).Scan(&ref.ID, &ref.StartupID)
	if err != nil {
		if s.degrade(err) {
			return nil, ErrTranscodeColumnsMissing
		}
		return nil, err
	}
	return &ref, nil
}

// FindPitchRefByID is the passthrough-correlation fallback lookup.
func (s *PitchStore) FindPitchRefByID(ctx context.Context, pitchID pgtype.UUID) (*PitchRef, error) {
	var ref PitchRef
	err := s.dbc.QueryRow(ctx,
		`SELECT id, startup_id FROM pitches WHERE id = $1`,
		pitchID,
	).Scan(&ref.ID, &ref.StartupID)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// IsSupersededAsset reports whether an asset id belongs to an abandoned
// provider job (superseded by a retry). Events for such assets are ignored.
func (s *PitchStore) IsSupersededAsset(ctx context.Context, assetID string) (bool, error) {
	if s.caps.Legacy() {
		return false, ErrTranscodeColumnsMissing
	}
	var superseded bool
	err := s.dbc.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM pitches WHERE $1 = ANY(video_mux_superseded_asset_ids))`,
		assetID,
	).Scan(&superseded)
	if err != nil {
		if s.degrade(err) {
			return false, ErrTranscodeColumnsMissing
		}
		return false, err
	}
	return superseded, nil
}

type MarkPitchApprovedParams struct {
	PitchID    pgtype.UUID
	StartupID  pgtype.UUID
	ApprovedBy string
	Now        time.Time
}

// MarkPitchApproved records a human approval decision and cascades it to
// the owning startup. Only called once the transcode gate has passed, so
// stamping the video columns ready is idempotent; in a degraded store only
// the review columns are touched.
func (s *PitchStore) MarkPitchApproved(ctx context.Context, params MarkPitchApprovedParams) error {
	now := pgtype.Timestamptz{Time: params.Now, Valid: true}

	if !s.caps.Legacy() {
		_, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET status = 'approved', approved_at = $2, approved_by = $3,
    video_processing_status = 'ready', video_ready_at = COALESCE(video_ready_at, $2), video_error = NULL
WHERE id = $1`,
			params.PitchID, now, params.ApprovedBy,
		)
		if err != nil && !s.degrade(err) {
			return fmt.Errorf("approve pitch: %w", err)
		}
		if err == nil {
			return s.approveStartup(ctx, params.StartupID)
		}
	}

	_, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET status = 'approved', approved_at = $2, approved_by = $3
WHERE id = $1`,
		params.PitchID, now, params.ApprovedBy,
	)
	if err != nil {
		return fmt.Errorf("approve pitch: %w", err)
	}
	return s.approveStartup(ctx, params.StartupID)
}

func (s *PitchStore) approveStartup(ctx context.Context, startupID pgtype.UUID) error {
	_, err := s.dbc.Exec(ctx,
		`UPDATE startups SET status = 'approved' WHERE id = $1`,
		startupID,
	)
	if err != nil {
		return fmt.Errorf("approve startup: %w", err)
	}
	return nil
}

type RecordSubmissionParams struct {
	PitchID           pgtype.UUID
	AssetID           string
	PlaybackID        string // empty unless the provider returned one inline
	Stage             VideoStage
	SupersededAssetID string // previous asset id to stop tracking, if any
	Now               time.Time
}

// RecordSubmission persists the outcome of a successful provider job
// submission: the new asset id, the mapped stage and a cleared error.
// Never called before the provider call succeeds.
func (s *PitchStore) RecordSubmission(ctx context.Context, params RecordSubmissionParams) error {
	if s.caps.Legacy() {
		return ErrTranscodeColumnsMissing
	}

	now := pgtype.Timestamptz{Time: params.Now, Valid: true}
	readyAt := pgtype.Timestamptz{}
	if params.Stage == VideoStageReady {
		readyAt = now
	}

	_, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET video_mux_asset_id = $2,
    video_mux_playback_id = NULLIF($3, ''),
    video_processing_status = $4,
    video_transcode_requested_at = $5,
    video_ready_at = $6,
    video_error = NULL,
    video_mux_superseded_asset_ids = CASE
        WHEN $7 = '' THEN video_mux_superseded_asset_ids
        ELSE array_append(COALESCE(video_mux_superseded_asset_ids, '{}'), $7)
    END
WHERE id = $1`,
		params.PitchID, params.AssetID, params.PlaybackID,
		string(params.Stage), now, readyAt, params.SupersededAssetID,
	)
	if err != nil {
		if s.degrade(err) {
			return ErrTranscodeColumnsMissing
		}
		return fmt.Errorf("record transcode submission: %w", err)
	}
	return nil
}

// SetVideoReady applies a provider readiness event. Safe to apply twice.
func (s *PitchStore) SetVideoReady(ctx context.Context, pitchID pgtype.UUID, assetID, playbackID string, now time.Time) error {
	if s.caps.Legacy() {
		return ErrTranscodeColumnsMissing
	}
	_, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET video_mux_asset_id = $2,
    video_mux_playback_id = $3,
    video_processing_status = 'ready',
    video_ready_at = $4,
    video_error = NULL
WHERE id = $1`,
		pitchID, assetID, playbackID, pgtype.Timestamptz{Time: now, Valid: true},
	)
	if err != nil {
		if s.degrade(err) {
			return ErrTranscodeColumnsMissing
		}
		return fmt.Errorf("set video ready: %w", err)
	}
	return nil
}

// SetVideoFailed applies a provider failure event.
func (s *PitchStore) SetVideoFailed(ctx context.Context, pitchID pgtype.UUID, assetID, errorText string) error {
	if s.caps.Legacy() {
		return ErrTranscodeColumnsMissing
	}
	_, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET video_mux_asset_id = $2,
    video_processing_status = 'failed',
    video_error = $3
WHERE id = $1`,
		pitchID, assetID, errorText,
	)
	if err != nil {
		if s.degrade(err) {
			return ErrTranscodeColumnsMissing
		}
		return fmt.Errorf("set video failed: %w", err)
	}
	return nil
}

// MarkVideoProcessingIfNotReady applies asset.created / asset.updated
// progress events. Guarded so a stale event arriving after readiness never
// regresses the stage. Returns false when the guard rejected the write.
func (s *PitchStore) MarkVideoProcessingIfNotReady(ctx context.Context, pitchID pgtype.UUID, assetID string) (bool, error) {
	if s.caps.Legacy() {
		return false, ErrTranscodeColumnsMissing
	}
	tag, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET video_mux_asset_id = $2,
    video_processing_status = 'processing',
    video_error = NULL
WHERE id = $1 AND COALESCE(video_processing_status, 'pending') <> 'ready'`,
		pitchID, assetID,
	)
	if err != nil {
		if s.degrade(err) {
			return false, ErrTranscodeColumnsMissing
		}
		return false, fmt.Errorf("mark video processing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ApprovePitchIfPending auto-advances a pitch after readiness, but only if
// no admin has decided it yet. Returns false if the pitch was no longer
// pending.
func (s *PitchStore) ApprovePitchIfPending(ctx context.Context, pitchID pgtype.UUID, now time.Time) (bool, error) {
	tag, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET status = 'approved', approved_at = $2
WHERE id = $1 AND status = 'pending'`,
		pitchID, pgtype.Timestamptz{Time: now, Valid: true},
	)
	if err != nil {
		return false, fmt.Errorf("auto-approve pitch: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ApproveStartupIfPending cascades an auto-approval to the owning startup,
// again without clobbering an existing admin decision.
func (s *PitchStore) ApproveStartupIfPending(ctx context.Context, startupID pgtype.UUID) (bool, error) {
	tag, err := s.dbc.Exec(ctx, `
UPDATE startups
SET status = 'approved'
WHERE id = $1 AND status = 'pending'`,
		startupID,
	)
	if err != nil {
		return false, fmt.Errorf("auto-approve startup: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RejectPitchIfPending records an admin rejection. Conditional on the pitch
// still being pending so it cannot race a concurrent approval.
func (s *PitchStore) RejectPitchIfPending(ctx context.Context, pitchID pgtype.UUID) (bool, error) {
	tag, err := s.dbc.Exec(ctx, `
UPDATE pitches
SET status = 'rejected'
WHERE id = $1 AND status = 'pending'`,
		pitchID,
	)
	if err != nil {
		return false, fmt.Errorf("reject pitch: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const pitchListExtendedSQL = `
SELECT p.id, p.startup_id, s.name, p.title, p.founder_name, p.status,
       COALESCE(p.video_processing_status, 'pending'),
       p.video_mux_playback_id, p.video_error, p.created_at
FROM pitches p
JOIN startups s ON s.id = p.startup_id
WHERE p.status = $1
ORDER BY p.created_at DESC
LIMIT $2`

const pitchListReducedSQL = `
SELECT p.id, p.startup_id, s.name, p.title, p.founder_name, p.status, p.created_at
FROM pitches p
JOIN startups s ON s.id = p.startup_id
WHERE p.status = $1
ORDER BY p.created_at DESC
LIMIT $2`

// ListPitchesByStatus backs the public feed (approved) and the admin review
// queue (pending).
func (s *PitchStore) ListPitchesByStatus(ctx context.Context, status ApprovalStatus, limit int) ([]PitchListItem, error) {
	if limit <= 0 {
		limit = 50
	}

	if !s.caps.Legacy() {
		rows, err := s.dbc.Query(ctx, pitchListExtendedSQL, string(status), limit)
		if err == nil {
			defer rows.Close()
			var items []PitchListItem
			for rows.Next() {
				var it PitchListItem
				if err := rows.Scan(&it.ID, &it.StartupID, &it.StartupName, &it.Title,
					&it.FounderName, &it.Status, &it.Stage, &it.PlaybackID,
					&it.ErrorText, &it.CreatedAt); err != nil {
					return nil, err
				}
				items = append(items, it)
			}
			return items, rows.Err()
		}
		if !s.degrade(err) {
			return nil, err
		}
	}

	rows, err := s.dbc.Query(ctx, pitchListReducedSQL, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PitchListItem
	for rows.Next() {
		var it PitchListItem
		if err := rows.Scan(&it.ID, &it.StartupID, &it.StartupName, &it.Title,
			&it.FounderName, &it.Status, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Stage = VideoStageLegacy
		items = append(items, it)
	}
	return items, rows.Err()
}
