package pitchflow

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

func newUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// fakeStore holds one pitch record and emulates the conditional-update
// semantics of the real store.
type fakeStore struct {
	legacy bool // degraded store: transcode reads/writes unavailable

	pitch         *db.PitchVideo
	superseded    []string
	startupStatus db.ApprovalStatus

	approvedBy        string
	markApprovedCalls int
	submissions       []db.RecordSubmissionParams
}

func newFakeStore(pitch *db.PitchVideo) *fakeStore {
	return &fakeStore{pitch: pitch, startupStatus: db.ApprovalPending}
}

func (f *fakeStore) GetPitchVideo(_ context.Context, pitchID pgtype.UUID) (*db.PitchVideo, error) {
	if f.pitch == nil || f.pitch.ID != pitchID {
		return nil, pgx.ErrNoRows
	}
	if f.legacy {
		return &db.PitchVideo{
			ID:        f.pitch.ID,
			StartupID: f.pitch.StartupID,
			Status:    f.pitch.Status,
			VideoPath: f.pitch.VideoPath,
			Stage:     db.VideoStageLegacy,
		}, nil
	}
	pv := *f.pitch
	return &pv, nil
}

func (f *fakeStore) FindPitchByAssetID(_ context.Context, assetID string) (*db.PitchRef, error) {
	if f.legacy {
		return nil, db.ErrTranscodeColumnsMissing
	}
	if f.pitch != nil && f.pitch.AssetID.Valid && f.pitch.AssetID.String == assetID {
		return &db.PitchRef{ID: f.pitch.ID, StartupID: f.pitch.StartupID}, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) FindPitchRefByID(_ context.Context, pitchID pgtype.UUID) (*db.PitchRef, error) {
	if f.pitch == nil || f.pitch.ID != pitchID {
		return nil, pgx.ErrNoRows
	}
	return &db.PitchRef{ID: f.pitch.ID, StartupID: f.pitch.StartupID}, nil
}

func (f *fakeStore) IsSupersededAsset(_ context.Context, assetID string) (bool, error) {
	if f.legacy {
		return false, db.ErrTranscodeColumnsMissing
	}
	return slices.Contains(f.superseded, assetID), nil
}

func (f *fakeStore) MarkPitchApproved(_ context.Context, params db.MarkPitchApprovedParams) error {
	f.markApprovedCalls++
	f.approvedBy = params.ApprovedBy
	f.pitch.Status = db.ApprovalApproved
	if !f.legacy {
		f.pitch.Stage = db.VideoStageReady
		f.pitch.ErrorText = pgtype.Text{}
		if !f.pitch.ReadyAt.Valid {
			f.pitch.ReadyAt = pgtype.Timestamptz{Time: params.Now, Valid: true}
		}
	}
	f.startupStatus = db.ApprovalApproved
	return nil
}

func (f *fakeStore) RecordSubmission(_ context.Context, params db.RecordSubmissionParams) error {
	if f.legacy {
		return db.ErrTranscodeColumnsMissing
	}
	f.submissions = append(f.submissions, params)
	f.pitch.AssetID = text(params.AssetID)
	f.pitch.PlaybackID = text(params.PlaybackID)
	f.pitch.Stage = params.Stage
	f.pitch.ErrorText = pgtype.Text{}
	f.pitch.RequestedAt = pgtype.Timestamptz{Time: params.Now, Valid: true}
	if params.Stage == db.VideoStageReady {
		f.pitch.ReadyAt = pgtype.Timestamptz{Time: params.Now, Valid: true}
	} else {
		f.pitch.ReadyAt = pgtype.Timestamptz{}
	}
	if params.SupersededAssetID != "" {
		f.superseded = append(f.superseded, params.SupersededAssetID)
	}
	return nil
}

func (f *fakeStore) SetVideoReady(_ context.Context, pitchID pgtype.UUID, assetID, playbackID string, now time.Time) error {
	if f.legacy {
		return db.ErrTranscodeColumnsMissing
	}
	f.pitch.AssetID = text(assetID)
	f.pitch.PlaybackID = text(playbackID)
	f.pitch.Stage = db.VideoStageReady
	f.pitch.ErrorText = pgtype.Text{}
	f.pitch.ReadyAt = pgtype.Timestamptz{Time: now, Valid: true}
	return nil
}

func (f *fakeStore) SetVideoFailed(_ context.Context, pitchID pgtype.UUID, assetID, errorText string) error {
	if f.legacy {
		return db.ErrTranscodeColumnsMissing
	}
	f.pitch.AssetID = text(assetID)
	f.pitch.Stage = db.VideoStageFailed
	f.pitch.ErrorText = text(errorText)
	return nil
}

func (f *fakeStore) MarkVideoProcessingIfNotReady(_ context.Context, pitchID pgtype.UUID, assetID string) (bool, error) {
	if f.legacy {
		return false, db.ErrTranscodeColumnsMissing
	}
	if f.pitch.Stage == db.VideoStageReady {
		return false, nil
	}
	f.pitch.AssetID = text(assetID)
	f.pitch.Stage = db.VideoStageProcessing
	f.pitch.ErrorText = pgtype.Text{}
	return true, nil
}

func (f *fakeStore) ApprovePitchIfPending(_ context.Context, pitchID pgtype.UUID, now time.Time) (bool, error) {
	if f.pitch.Status != db.ApprovalPending {
		return false, nil
	}
	f.pitch.Status = db.ApprovalApproved
	return true, nil
}

func (f *fakeStore) ApproveStartupIfPending(_ context.Context, startupID pgtype.UUID) (bool, error) {
	if f.startupStatus != db.ApprovalPending {
		return false, nil
	}
	f.startupStatus = db.ApprovalApproved
	return true, nil
}

// fakeTranscoder returns a canned asset or error and records submissions.
type fakeTranscoder struct {
	asset *muxvideo.Asset
	err   error

	calls  int
	inputs []muxvideo.CreateAssetInput
}

func (f *fakeTranscoder) CreateAsset(_ context.Context, input muxvideo.CreateAssetInput) (*muxvideo.Asset, error) {
	f.calls++
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	a := *f.asset
	return &a, nil
}

type fakeSigner struct{}

func (fakeSigner) SignSourceURL(videoPath string, _ time.Time) (string, error) {
	return "https://storage.example/signed/" + videoPath, nil
}

func newTestService(store *fakeStore, tc *fakeTranscoder) *Service {
	svc := NewService(store, tc, fakeSigner{})
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func pendingPitch() *db.PitchVideo {
	return &db.PitchVideo{
		ID:        newUUID(),
		StartupID: newUUID(),
		Status:    db.ApprovalPending,
		VideoPath: text("2026/pitch.mp4"),
		Stage:     db.VideoStagePending,
	}
}
