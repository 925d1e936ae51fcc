// package auth provides session login handlers.
package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	webauth "github.com/saharsh4u/startupmanch/cmd/web/auth"
	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/pkg/utils/passwords"
)

func HandleLogin(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
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

		user, err := dbc.Queries(c.Request().Context()).SelectUserByUserName(c.Request().Context(), req.Username)
		if err != nil {
			return c.JSON(401, map[string]string{"error": "invalid username or password"})
		}

		matches, err := user.Password.ComparePasswordAndHash(passwords.PasswordInput{Password: req.Password})
		if err != nil || !matches {
			return c.JSON(401, map[string]string{"error": "invalid username or password"})
		}

		if !user.Enabled {
			return c.JSON(403, map[string]string{"error": "account is disabled"})
		}

		accessLevel := webauth.AccessUser
		if user.Role == db.UserRoleAdmin {
			accessLevel = webauth.AccessAdmin
		}

		if err := sm.SaveSession(c.Response().Writer, c.Request(), user.ID.String(), user.UserName, accessLevel); err != nil {
			slog.Error("failed to save session", "error", err)
			return c.JSON(500, map[string]string{"error": "failed to save session"})
		}

		return c.JSON(200, map[string]any{
			"username": user.UserName,
			"role":     user.Role,
		})
	}
}

func HandleLogout(sm *webauth.SessionManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sm.ClearSession(c.Response().Writer, c.Request()); err != nil {
			slog.Warn("failed to clear session", "error", err)
		}
		return c.JSON(200, map[string]bool{"ok": true})
	}
}
