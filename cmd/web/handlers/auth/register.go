package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "github.com/saharsh4u/startupmanch/cmd/web/auth"
	"github.com/saharsh4u/startupmanch/internal/db"
)

// HandleRegister creates an account and logs it in. The very first account
// on a fresh database becomes the admin; everyone after that is a regular
// user.
func HandleRegister(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(400, map[string]string{"error": "invalid json"})
		}
		req.Username = strings.TrimSpace(req.Username)

		if req.Username == "" || req.Password == "" {
			return c.JSON(400, map[string]string{"error": "username and password are required"})
		}
		if len(req.Password) < 8 {
			return c.JSON(400, map[string]string{"error": "password must be at least 8 characters"})
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)

		userCount, err := q.CountUsers(ctx)
		if err != nil {
			slog.Error("failed to count users", "error", err)
			return c.JSON(500, map[string]string{"error": "registration failed"})
		}

		role := string(db.UserRoleUser)
		if userCount == 0 {
			role = string(db.UserRoleAdmin)
		}

		taken, err := q.UsernameTaken(ctx, req.Username)
		if err != nil {
			slog.Error("failed to check username", "error", err)
			return c.JSON(500, map[string]string{"error": "registration failed"})
		}
		if taken {
			return c.JSON(409, map[string]string{"error": "username is already taken"})
		}

		user, err := q.NewUser(ctx, db.NewUserParams{
			Username: req.Username,
			Password: req.Password,
			Role:     role,
		})
		if err != nil {
			slog.Error("failed to create user", "error", err)
			return c.JSON(500, map[string]string{"error": "registration failed"})
		}

		accessLevel := webauth.AccessUser
		if user.Role == db.UserRoleAdmin {
			accessLevel = webauth.AccessAdmin
		}

		if err := sm.SaveSession(c.Response().Writer, c.Request(), user.ID.String(), user.UserName, accessLevel); err != nil {
			slog.Error("failed to save session", "error", err)
			return c.JSON(500, map[string]string{"error": "account created but login failed"})
		}

		return c.JSON(201, map[string]any{
			"username": user.UserName,
			"role":     user.Role,
		})
	}
}
