package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/saharsh4u/startupmanch/pkg/utils/passwords"
)

// NewUserParams contains the parameters for creating a new user
type NewUserParams struct {
	Username string
	Password string // plaintext password
	Role     string
}

// NewUser creates a new user with a hashed password
func (q *Queries) NewUser(ctx context.Context, params NewUserParams) (*User, error) {
	hashedPassword, err := passwords.NewPassword(passwords.PasswordInput{
		Password: params.Password,
	})
	if err != nil {
		return nil, err
	}

	userID := uuid.New()
	pgUUID := pgtype.UUID{
		Bytes: userID,
		Valid: true,
	}

	role := UserRole(params.Role)
	if params.Role == "" {
		role = UserRoleUser
	}

	var user User
	err = q.db.QueryRow(ctx, `
INSERT INTO users (id, username, password, role, enabled)
VALUES ($1, $2, $3, $4, TRUE)
RETURNING id, username, password, role, enabled, created_at`,
		pgUUID, params.Username, hashedPassword, string(role),
	).Scan(&user.ID, &user.UserName, &user.Password, &user.Role, &user.Enabled, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers reports how many users exist. Registration promotes the very
// first user to admin.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UsernameTaken reports whether a username is already registered.
func (q *Queries) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&taken)
	if err != nil {
		return false, err
	}
	return taken, nil
}

// SelectUserByUserName looks a user up for login.
func (q *Queries) SelectUserByUserName(ctx context.Context, username string) (*User, error) {
	var user User
	err := q.db.QueryRow(ctx, `
SELECT id, username, password, role, enabled, created_at
FROM users
WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.UserName, &user.Password, &user.Role, &user.Enabled, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
