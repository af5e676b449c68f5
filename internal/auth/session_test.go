package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/model"
)

const testSecret = "test-secret-key"

var engineer = Session{Role: model.RoleEngineer, Name: "Jane Doe", Username: "jdoe", Site: "ENAM"}

func TestSessionRoundTrip(t *testing.T) {
	token, err := CreateSession(testSecret, engineer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got := ReadSession(testSecret, token)
	require.NotNil(t, got)
	assert.Equal(t, engineer, *got)
}

func TestReadSessionWrongSecret(t *testing.T) {
	token, _ := CreateSession("secret1", engineer)
	assert.Nil(t, ReadSession("secret2", token))
}

func TestReadSessionMalformed(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c", `{"role":"admin"}`} {
		assert.NotPanics(t, func() {
			assert.Nil(t, ReadSession(testSecret, token), "token %q", token)
		})
	}
}

func TestReadSessionTampered(t *testing.T) {
	token, err := CreateSession(testSecret, engineer)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"engineer"`, `"admin"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	assert.Nil(t, ReadSession(testSecret, strings.Join(parts, ".")))
}

func TestReadSessionMissingFields(t *testing.T) {
	for _, s := range []Session{
		{Role: "", Name: "x", Username: "jdoe", Site: "ENAM"},
		{Role: model.RoleEngineer, Name: "x", Username: "", Site: "ENAM"},
		{Role: model.RoleEngineer, Name: "x", Username: "jdoe", Site: ""},
		{Role: "superuser", Name: "x", Username: "jdoe", Site: "ENAM"},
	} {
		token, err := CreateSession(testSecret, s)
		require.NoError(t, err)
		assert.Nil(t, ReadSession(testSecret, token), "session %+v", s)
	}
}

func TestReadSessionExpired(t *testing.T) {
	c := claims{
		Session: engineer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Nil(t, ReadSession(testSecret, token))
}

func TestSessionExpiry(t *testing.T) {
	token, _ := CreateSession(testSecret, engineer)
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	expiresAt := parsed.Claims.(*claims).ExpiresAt.Time
	assert.WithinDuration(t, time.Now().Add(SessionTTL), expiresAt, 5*time.Second)
}

func TestRequireRole(t *testing.T) {
	_, err := RequireRole(nil, model.RoleEngineer)
	assert.True(t, apperr.Is(err, apperr.Unauthorized))

	s := engineer
	_, err = RequireRole(&s, model.RoleAdmin)
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	got, err := RequireRole(&s, model.RoleAdmin, model.RoleEngineer)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", got.Username)
}

func TestSessionCookie(t *testing.T) {
	token, _ := CreateSession(testSecret, engineer)

	rec := httptest.NewRecorder()
	SetSessionCookie(rec, token, true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got := SessionFromRequest(req, testSecret)
	require.NotNil(t, got)
	assert.Equal(t, "jdoe", got.Username)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.NotNil(t, SessionFromRequest(req, testSecret))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, SessionFromRequest(req, testSecret))
}
