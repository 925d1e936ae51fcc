// Package pitchflow owns the pitch-video transcode state machine: gating
// human approval on transcode readiness, applying provider webhook events
// and re-submitting failed jobs. All durable state lives in Postgres and
// every transition is a conditional update; the package holds no locks.
package pitchflow

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

// Outcome is the caller-visible result of an approval or retry attempt.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeQueued   Outcome = "queued_for_transcode"
)

var (
	ErrPitchNotFound    = errors.New("pitch not found")
	ErrStartupMismatch  = errors.New("pitch does not belong to startup")
	ErrVideoRequired    = errors.New("pitch video is required")
	ErrNotRetryable     = errors.New("pitch transcode is not in a retryable state")
	ErrRetryUnavailable = errors.New("transcode retry is unavailable on a degraded store")
)

// Store is the persistence surface the state machine needs. Implemented by
// *db.PitchStore.
type Store interface {
	GetPitchVideo(ctx context.Context, pitchID pgtype.UUID) (*db.PitchVideo, error)
	FindPitchByAssetID(ctx context.Context, assetID string) (*db.PitchRef, error)
	FindPitchRefByID(ctx context.Context, pitchID pgtype.UUID) (*db.PitchRef, error)
	IsSupersededAsset(ctx context.Context, assetID string) (bool, error)
	MarkPitchApproved(ctx context.Context, params db.MarkPitchApprovedParams) error
	RecordSubmission(ctx context.Context, params db.RecordSubmissionParams) error
	SetVideoReady(ctx context.Context, pitchID pgtype.UUID, assetID, playbackID string, now time.Time) error
	SetVideoFailed(ctx context.Context, pitchID pgtype.UUID, assetID, errorText string) error
	MarkVideoProcessingIfNotReady(ctx context.Context, pitchID pgtype.UUID, assetID string) (bool, error)
	ApprovePitchIfPending(ctx context.Context, pitchID pgtype.UUID, now time.Time) (bool, error)
	ApproveStartupIfPending(ctx context.Context, startupID pgtype.UUID) (bool, error)
}

// Transcoder submits jobs to the external provider. Implemented by
// *muxvideo.Client.
type Transcoder interface {
	CreateAsset(ctx context.Context, input muxvideo.CreateAssetInput) (*muxvideo.Asset, error)
}

// SourceSigner builds time-limited fetch URLs for stored raw videos.
// Implemented by *storage.Signer.
type SourceSigner interface {
	SignSourceURL(videoPath string, now time.Time) (string, error)
}

type Service struct {
	store      Store
	transcoder Transcoder
	signer     SourceSigner
	now        func() time.Time
}

func NewService(store Store, transcoder Transcoder, signer SourceSigner) *Service {
	return &Service{
		store:      store,
		transcoder: transcoder,
		signer:     signer,
		now:        time.Now,
	}
}

// hasReadyPlayback reports whether a record satisfies the approval gate via
// a finished transcode: ready stage with a playback id present.
func hasReadyPlayback(pv *db.PitchVideo) bool {
	return pv.Stage == db.VideoStageReady && pv.PlaybackID.Valid && pv.PlaybackID.String != ""
}

func inFlight(stage db.VideoStage) bool {
	return stage == db.VideoStageQueued || stage == db.VideoStageProcessing
}

// submitTranscode signs the raw source, submits a provider job and persists
// the mapped result. The record is only mutated after the provider call
// succeeds; a prior asset id, if any, is moved to the superseded list so
// stale webhooks for the abandoned job are ignored.
func (s *Service) submitTranscode(ctx context.Context, pv *db.PitchVideo) (*muxvideo.Asset, error) {
	now := s.now()

	sourceURL, err := s.signer.SignSourceURL(pv.VideoPath.String, now)
	if err != nil {
		return nil, err
	}

	asset, err := s.transcoder.CreateAsset(ctx, muxvideo.CreateAssetInput{
		SourceURL:          sourceURL,
		PassthroughPitchID: pv.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	superseded := ""
	if pv.AssetID.Valid && pv.AssetID.String != "" && pv.AssetID.String != asset.AssetID {
		superseded = pv.AssetID.String
	}

	err = s.store.RecordSubmission(ctx, db.RecordSubmissionParams{
		PitchID:           pv.ID,
		AssetID:           asset.AssetID,
		PlaybackID:        asset.PlaybackID,
		Stage:             db.VideoStage(asset.Status),
		SupersededAssetID: superseded,
		Now:               now,
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}
