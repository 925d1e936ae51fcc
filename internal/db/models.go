package db

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/pkg/utils/passwords"
)

// ApprovalStatus is the human-review status shared by pitches and startups.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// VideoStage is the per-pitch transcode lifecycle value.
// "legacy" is synthesized when the store lacks the transcode columns;
// it is never written to the database.
type VideoStage string

const (
	VideoStagePending    VideoStage = "pending"
	VideoStageQueued     VideoStage = "queued"
	VideoStageProcessing VideoStage = "processing"
	VideoStageReady      VideoStage = "ready"
	VideoStageFailed     VideoStage = "failed"
	VideoStageLegacy     VideoStage = "legacy"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type Startup struct {
	ID        pgtype.UUID
	Name      string
	Status    ApprovalStatus
	CreatedAt pgtype.Timestamptz
}

type Pitch struct {
	ID          pgtype.UUID
	StartupID   pgtype.UUID
	Title       string
	FounderName string
	Status      ApprovalStatus
	ApprovedAt  pgtype.Timestamptz
	ApprovedBy  pgtype.Text
	VideoPath   pgtype.Text
	CreatedAt   pgtype.Timestamptz
}

// PitchVideo is the transcode-state view of a pitch row: the human-review
// status plus every extended video column. When the store is degraded the
// extended fields are zero and Stage is VideoStageLegacy.
type PitchVideo struct {
	ID          pgtype.UUID
	StartupID   pgtype.UUID
	Status      ApprovalStatus
	VideoPath   pgtype.Text
	Stage       VideoStage
	AssetID     pgtype.Text
	PlaybackID  pgtype.Text
	ErrorText   pgtype.Text
	RequestedAt pgtype.Timestamptz
	ReadyAt     pgtype.Timestamptz
}

// PitchRef identifies a pitch and its owning startup, used to resolve
// inbound webhook events.
type PitchRef struct {
	ID        pgtype.UUID
	StartupID pgtype.UUID
}

type User struct {
	ID        pgtype.UUID
	UserName  string
	Password  passwords.Password
	Role      UserRole
	Enabled   bool
	CreatedAt pgtype.Timestamptz
}

// PitchListItem is a feed/queue row joined with its startup.
type PitchListItem struct {
	ID          pgtype.UUID
	StartupID   pgtype.UUID
	StartupName string
	Title       string
	FounderName string
	Status      ApprovalStatus
	Stage       VideoStage
	PlaybackID  pgtype.Text
	ErrorText   pgtype.Text
	CreatedAt   pgtype.Timestamptz
}
