package pitchflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
)

func TestRetryTranscode_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore(pendingPitch()), &fakeTranscoder{})

	_, err := svc.RetryTranscode(context.Background(), newUUID())
	require.ErrorIs(t, err, ErrPitchNotFound)
}

func TestRetryTranscode_LegacyStoreConflicts(t *testing.T) {
	pitch := pendingPitch()
	store := newFakeStore(pitch)
	store.legacy = true
	svc := newTestService(store, &fakeTranscoder{})

	_, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.ErrorIs(t, err, ErrRetryUnavailable)
}

func TestRetryTranscode_AlreadyReady(t *testing.T) {
	pitch := pendingPitch()
	pitch.Stage = db.VideoStageReady
	pitch.PlaybackID = text("pb123")
	store := newFakeStore(pitch)
	tc := &fakeTranscoder{}
	svc := newTestService(store, tc)

	outcome, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeApproved, outcome)
	require.Zero(t, tc.calls)
}

func TestRetryTranscode_InFlightDoesNotResubmit(t *testing.T) {
	pitch := pendingPitch()
	pitch.Stage = db.VideoStageProcessing
	pitch.AssetID = text("asset-1")
	store := newFakeStore(pitch)
	tc := &fakeTranscoder{}
	svc := newTestService(store, tc)

	outcome, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeQueued, outcome)
	require.Zero(t, tc.calls)
	require.Empty(t, store.submissions)
}

func TestRetryTranscode_PendingIsNotRetryable(t *testing.T) {
	pitch := pendingPitch()
	store := newFakeStore(pitch)
	svc := newTestService(store, &fakeTranscoder{})

	_, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.ErrorIs(t, err, ErrNotRetryable)
}

func TestRetryTranscode_MissingVideo(t *testing.T) {
	pitch := pendingPitch()
	pitch.Stage = db.VideoStageFailed
	pitch.VideoPath = text("")
	store := newFakeStore(pitch)
	svc := newTestService(store, &fakeTranscoder{})

	_, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.ErrorIs(t, err, ErrVideoRequired)
}

func TestRetryTranscode_FailedResubmits(t *testing.T) {
	pitch := pendingPitch()
	pitch.Stage = db.VideoStageFailed
	pitch.AssetID = text("asset-old")
	pitch.ErrorText = text("provider rejected input")
	store := newFakeStore(pitch)
	tc := &fakeTranscoder{asset: &muxvideo.Asset{AssetID: "asset-new", Status: muxvideo.StatusQueued}}
	svc := newTestService(store, tc)

	outcome, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeQueued, outcome)

	require.Equal(t, 1, tc.calls)
	require.Equal(t, "asset-new", store.pitch.AssetID.String)
	require.Equal(t, db.VideoStageQueued, store.pitch.Stage)
	require.False(t, store.pitch.ErrorText.Valid)
	require.Equal(t, []string{"asset-old"}, store.superseded)
}

func TestRetryTranscode_NeverApprovesSynchronously(t *testing.T) {
	// Even an inline-ready provider response returns queued: retry is an
	// operator action, not an approval.
	pitch := pendingPitch()
	pitch.Stage = db.VideoStageFailed
	store := newFakeStore(pitch)
	tc := &fakeTranscoder{asset: &muxvideo.Asset{
		AssetID:    "asset-1",
		PlaybackID: "pb123",
		Status:     muxvideo.StatusReady,
	}}
	svc := newTestService(store, tc)

	outcome, err := svc.RetryTranscode(context.Background(), pitch.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeQueued, outcome)
	require.Equal(t, db.ApprovalPending, store.pitch.Status)
	require.Equal(t, db.VideoStageReady, store.pitch.Stage)
}
