package upload_api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/saharsh4u/startupmanch/cmd/web/auth"
	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/storage"
)

func loginCookie(t *testing.T, sm *auth.SessionManager) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveSession(rr, req, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "founder", auth.AccessUser))
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionName {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func postSignUpload(t *testing.T, sm *auth.SessionManager, cookie *http.Cookie, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	signer := storage.NewSigner("http://localhost:8080", "media-secret")
	handler := HandleSignUpload(sm, signer, &db.DatabaseConnection{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/pitch-video", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func TestSignUpload_RequiresSession(t *testing.T) {
	sm := auth.NewSessionManager("test-secret")

	_, err := postSignUpload(t, sm, nil, `{"pitch_id":"x","filename":"a.mp4"}`)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestSignUpload_RejectsBadPitchID(t *testing.T) {
	sm := auth.NewSessionManager("test-secret")
	cookie := loginCookie(t, sm)

	rec, err := postSignUpload(t, sm, cookie, `{"pitch_id":"not-a-uuid","filename":"a.mp4"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid pitch_id")
}

func TestSignUpload_RejectsUnsupportedExtension(t *testing.T) {
	sm := auth.NewSessionManager("test-secret")
	cookie := loginCookie(t, sm)

	rec, err := postSignUpload(t, sm, cookie, `{"pitch_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","filename":"malware.exe"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unsupported video format")
}
