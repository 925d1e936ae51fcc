package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// NewStartupParams contains the parameters for creating a startup.
type NewStartupParams struct {
	Name string
}

// NewStartup inserts a startup in the pending review state.
func (q *Queries) NewStartup(ctx context.Context, params NewStartupParams) (*Startup, error) {
	id := pgtype.UUID{Bytes: uuid.New(), Valid: true}

	var startup Startup
	err := q.db.QueryRow(ctx, `
INSERT INTO startups (id, name, status)
VALUES ($1, $2, 'pending')
RETURNING id, name, status, created_at`,
		id, params.Name,
	).Scan(&startup.ID, &startup.Name, &startup.Status, &startup.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &startup, nil
}

// NewPitchParams contains the parameters for submitting a pitch.
type NewPitchParams struct {
	StartupID   pgtype.UUID
	Title       string
	FounderName string
	VideoPath   string
}

// NewPitch inserts a pitch in the pending review state. The transcode
// record is created implicitly: the video path is set and the processing
// stage defaults to pending.
func (q *Queries) NewPitch(ctx context.Context, params NewPitchParams) (*Pitch, error) {
	id := pgtype.UUID{Bytes: uuid.New(), Valid: true}

	videoPath := pgtype.Text{}
	if params.VideoPath != "" {
		videoPath = pgtype.Text{String: params.VideoPath, Valid: true}
	}

	var pitch Pitch
	err := q.db.QueryRow(ctx, `
INSERT INTO pitches (id, startup_id, title, founder_name, status, video_path)
VALUES ($1, $2, $3, $4, 'pending', $5)
RETURNING id, startup_id, title, founder_name, status, approved_at, approved_by, video_path, created_at`,
		id, params.StartupID, params.Title, params.FounderName, videoPath,
	).Scan(&pitch.ID, &pitch.StartupID, &pitch.Title, &pitch.FounderName,
		&pitch.Status, &pitch.ApprovedAt, &pitch.ApprovedBy, &pitch.VideoPath, &pitch.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &pitch, nil
}

// SelectPitchByID loads a pitch row without the transcode columns, so it
// works against both full and degraded stores.
func (q *Queries) SelectPitchByID(ctx context.Context, pitchID pgtype.UUID) (*Pitch, error) {
	var pitch Pitch
	err := q.db.QueryRow(ctx, `
SELECT id, startup_id, title, founder_name, status, approved_at, approved_by, video_path, created_at
FROM pitches
WHERE id = $1`,
		pitchID,
	).Scan(&pitch.ID, &pitch.StartupID, &pitch.Title, &pitch.FounderName,
		&pitch.Status, &pitch.ApprovedAt, &pitch.ApprovedBy, &pitch.VideoPath, &pitch.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &pitch, nil
}

// SetPitchVideoPath attaches (or replaces) the raw upload reference on a
// pitch after the founder finishes uploading.
func (q *Queries) SetPitchVideoPath(ctx context.Context, pitchID pgtype.UUID, videoPath string) error {
	_, err := q.db.Exec(ctx, `
UPDATE pitches SET video_path = $2 WHERE id = $1`,
		pitchID, videoPath,
	)
	return err
}
