// AngelaMos | 2026
// handler_test.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlogandesigns/site-visitor-dash/internal/middleware"
)

type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, svc *Service) http.Handler {
	t.Helper()

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(svc))
	return r
}

func postLogin(
	t *testing.T,
	router http.Handler,
	username, password string,
) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := httptest.NewRequest(
		http.MethodPost,
		"/login",
		strings.NewReader(form.Encode()),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()

	var body responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginEndpoint_FormBody(t *testing.T) {
	t.Parallel()

	store := storeWithUser(t, "jsmith", "hunter2hunter2")
	router := newTestRouter(t, newTestService(t, store))

	rec := postLogin(t, router, "jsmith", "hunter2hunter2")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	require.True(t, body.Success)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(body.Data, &resp))

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "jsmith", resp.Username)
	assert.Equal(t, "user", resp.Role)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	t.Parallel()

	store := storeWithUser(t, "jsmith", "hunter2hunter2")
	router := newTestRouter(t, newTestService(t, store))

	rec := postLogin(t, router, "jsmith", "wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	body := decodeEnvelope(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	t.Parallel()

	store := storeWithUser(t, "jsmith", "hunter2hunter2")
	router := newTestRouter(t, newTestService(t, store))

	rec := postLogin(t, router, "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeEndpoint_RoundTrip(t *testing.T) {
	t.Parallel()

	store := storeWithUser(t, "jsmith", "hunter2hunter2")
	router := newTestRouter(t, newTestService(t, store))

	login := postLogin(t, router, "jsmith", "hunter2hunter2")
	require.Equal(t, http.StatusOK, login.Code)

	var resp TokenResponse
	require.NoError(
		t,
		json.Unmarshal(decodeEnvelope(t, login).Data, &resp),
	)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me MeResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &me))

	assert.Equal(t, "user-1", me.ID)
	assert.Equal(t, "jsmith", me.Username)
	assert.Equal(t, "user", me.Role)
	require.NotNil(t, me.AgentID)
	assert.Equal(t, "agent-1", *me.AgentID)
}

func TestMeEndpoint_MissingToken(t *testing.T) {
	t.Parallel()

	store := storeWithUser(t, "jsmith", "hunter2hunter2")
	router := newTestRouter(t, newTestService(t, store))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestMeEndpoint_GarbageToken(t *testing.T) {
	t.Parallel()

	store := storeWithUser(t, "jsmith", "hunter2hunter2")
	router := newTestRouter(t, newTestService(t, store))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", decodeEnvelope(t, rec).Error.Code)
}

type erroringStore struct{}

func (erroringStore) GetActiveByUsername(
	_ context.Context,
	_ string,
) (*UserInfo, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (erroringStore) TouchLastLogin(_ context.Context, _ string) error {
	return nil
}

func TestMeEndpoint_StoreOutageIsServerError(t *testing.T) {
	t.Parallel()

	tm, err := NewTokenManager(testJWTConfig(time.Hour))
	require.NoError(t, err)

	token, _, err := tm.Issue("jsmith")
	require.NoError(t, err)

	// The token is valid; only the credential-store lookup fails. The
	// client must see an infrastructure error, not a bad-token rejection.
	router := newTestRouter(t, NewService(tm, erroringStore{}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeEnvelope(t, rec).Error.Code)
}
