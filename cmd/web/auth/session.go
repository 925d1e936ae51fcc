package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// AccessLevel is stored in the session cookie at login time and checked by
// the admin route group.
type AccessLevel string

const (
	AccessUnauthenticated AccessLevel = "unauthenticated"
	AccessUser            AccessLevel = "user"
	AccessAdmin           AccessLevel = "admin"
)

const (
	SessionName       = "startupmanch_session"
	UserIDKey         = "user_id"
	UsernameKey       = "username"
	AccessLevelKey    = "access_level"
	SessionCreatedKey = "created_at"
)

const sessionMaxAge = 86400 * 7 // 7 days

var ErrNotAuthenticated = errors.New("not authenticated")

type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager builds a cookie-backed session store. Without a
// configured secret a random one is generated, which invalidates all
// sessions on restart.
func NewSessionManager(secret string) *SessionManager {
	if secret == "" {
		b := make([]byte, 32)
		rand.Read(b)
		secret = base64.StdEncoding.EncodeToString(b)
	}
	return &SessionManager{
		store: sessions.NewCookieStore([]byte(secret)),
	}
}

func (sm *SessionManager) SaveSession(w http.ResponseWriter, r *http.Request, userID, username string, accessLevel AccessLevel) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Values[UserIDKey] = userID
	session.Values[UsernameKey] = username
	session.Values[AccessLevelKey] = string(accessLevel)
	session.Values[SessionCreatedKey] = time.Now().Unix()

	session.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		// Keep session cookies in Lax mode; the webhook endpoint never
		// reads them.
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	}

	return session.Save(r, w)
}

func (sm *SessionManager) GetSession(r *http.Request) (userID, username string, err error) {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		_, cookieErr := r.Cookie(SessionName)
		slog.Warn("failed to decode session", "error", err, "host", r.Host, "has_cookie", cookieErr == nil)
		return "", "", err
	}

	uid, ok := session.Values[UserIDKey].(string)
	if !ok {
		return "", "", ErrNotAuthenticated
	}

	uname, ok := session.Values[UsernameKey].(string)
	if !ok {
		return "", "", ErrNotAuthenticated
	}

	return uid, uname, nil
}

// GetAccessLevel reads the stored access level from the session cookie.
// Returns AccessUnauthenticated if the session is missing or invalid.
func (sm *SessionManager) GetAccessLevel(r *http.Request) AccessLevel {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		return AccessUnauthenticated
	}

	str, ok := session.Values[AccessLevelKey].(string)
	if !ok {
		return AccessUnauthenticated
	}

	switch level := AccessLevel(str); level {
	case AccessUser, AccessAdmin:
		return level
	default:
		return AccessUnauthenticated
	}
}

func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	_, _, err := sm.GetSession(r)
	return err == nil
}

// GetSessionCreatedAt returns the time the session was created.
// Returns zero time if the session is missing or invalid.
func (sm *SessionManager) GetSessionCreatedAt(r *http.Request) time.Time {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		return time.Time{}
	}

	unix, ok := session.Values[SessionCreatedKey].(int64)
	if !ok {
		return time.Time{}
	}

	return time.Unix(unix, 0)
}

func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
