package web

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/saharsh4u/startupmanch/cmd/web/auth"
	"github.com/saharsh4u/startupmanch/cmd/web/handlers/admin"
	authhandlers "github.com/saharsh4u/startupmanch/cmd/web/handlers/auth"

	"github.com/saharsh4u/startupmanch/cmd/web/handlers/api/pitch_api"
	"github.com/saharsh4u/startupmanch/cmd/web/handlers/api/upload_api"
	"github.com/saharsh4u/startupmanch/cmd/web/handlers/api/webhook_api"
	"github.com/saharsh4u/startupmanch/cmd/web/handlers/media"

	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/pitchflow"
	"github.com/saharsh4u/startupmanch/internal/storage"
)

type Webserver struct {
	*echo.Echo
	sessionManager *auth.SessionManager
	dbc            *db.DatabaseConnection
	pitchStore     *db.PitchStore
	flow           *pitchflow.Service
	signer         *storage.Signer
	mediaRoot      string
	webhookSecret  string
}

func NewWebserver(
	dbc *db.DatabaseConnection,
	sessionManager *auth.SessionManager,
	pitchStore *db.PitchStore,
	flow *pitchflow.Service,
	signer *storage.Signer,
	mediaRoot string,
	webhookSecret string,
) (*Webserver, error) {
	webserver := &Webserver{
		Echo:           echo.New(),
		sessionManager: sessionManager,
		dbc:            dbc,
		pitchStore:     pitchStore,
		flow:           flow,
		signer:         signer,
		mediaRoot:      mediaRoot,
		webhookSecret:  webhookSecret,
	}

	if webhookSecret == "" {
		slog.Warn("MUX_WEBHOOK_SECRET not set; all webhook deliveries will be rejected")
	}

	webserver.registerRoutes()
	webserver.setupMiddleware()

	return webserver, nil
}

func (s *Webserver) setupMiddleware() {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))
}

func (s *Webserver) registerRoutes() {
	s.POST("/register", authhandlers.HandleRegister(s.sessionManager, s.dbc))
	s.POST("/login", authhandlers.HandleLogin(s.sessionManager, s.dbc))
	s.POST("/logout", authhandlers.HandleLogout(s.sessionManager))

	// Raw video store: signature-authenticated, so no session middleware
	// and no JSON body limit on the PUT side.
	s.PUT("/media/uploads/*", media.HandleUpload(s.signer, s.mediaRoot))
	s.GET("/media/pitch-videos/*", media.HandleSource(s.signer, s.mediaRoot))

	apiGroup := s.Group("/api")
	apiGroup.Use(middleware.BodyLimit("2M"))

	// Webhook deliveries authenticate via signature, never via session.
	apiGroup.POST("/video/mux/webhook", webhook_api.HandleMuxWebhook(s.flow, s.webhookSecret))

	apiGroup.POST("/pitches", pitch_api.HandleCreatePitch(s.dbc))
	apiGroup.GET("/pitches", pitch_api.HandleListPitches(s.pitchStore))
	apiGroup.GET("/pitches/:id/detail", pitch_api.HandlePitchDetail(s.pitchStore))
	apiGroup.POST("/uploads/pitch-video", upload_api.HandleSignUpload(s.sessionManager, s.signer, s.dbc))

	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, username, err := s.sessionManager.GetSession(c.Request())
			if err != nil {
				return c.JSON(401, map[string]string{"error": "unauthorized"})
			}

			// Access level is stored in the session cookie at login time.
			if s.sessionManager.GetAccessLevel(c.Request()) != auth.AccessAdmin {
				return c.JSON(403, map[string]string{"error": "forbidden"})
			}

			var userUUID pgtype.UUID
			if err := userUUID.Scan(userID); err != nil {
				return c.JSON(500, map[string]string{"error": "invalid session"})
			}

			c.Set("currentUserUUID", userUUID)
			c.Set("currentUsername", username)
			return next(c)
		}
	})

	adminGroup.GET("/queue", admin.HandleModerationQueue(s.pitchStore))
	adminGroup.POST("/pitches/:id/approve", admin.HandleApprovePitch(s.flow))
	adminGroup.POST("/pitches/:id/transcode/retry", admin.HandleRetryTranscode(s.flow))
	adminGroup.POST("/pitches/:id/remove", admin.HandleRemovePitch(s.pitchStore))
}
