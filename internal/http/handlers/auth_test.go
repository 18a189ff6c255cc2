package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/OeunSochetra/storefront-api/internal/config"
	"github.com/OeunSochetra/storefront-api/internal/server"
	"github.com/OeunSochetra/storefront-api/internal/storage/memory"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		JWTSecret:  "test-secret",
		JWTIssuer:  "test",
		JWTTTL:     time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	ts := httptest.NewServer(server.NewMux(cfg, memory.New(), slog.New(slog.DiscardHandler)))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func decodeEnvelope(t *testing.T, raw []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func registerAlice(t *testing.T, baseURL string) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
		"email":    "a@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func loginAlice(t *testing.T, baseURL string) string {
	t.Helper()
	resp, raw := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, raw).Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func TestRegister_NeverLeaksPasswordMaterial(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
		"email":    "a@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := strings.ToLower(string(raw))
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "secret123")

	env := decodeEnvelope(t, raw)
	assert.Equal(t, "success", env.Message)

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestRegister_BadInput(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	cases := map[string]map[string]string{
		"missing username": {"password": "secret123", "email": "a@example.com"},
		"missing email":    {"username": "alice", "password": "secret123"},
		"short password":   {"username": "alice", "password": "short", "email": "a@example.com"},
	}
	for name, body := range cases {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	registerAlice(t, ts.URL)

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
		"email":    "second@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeEnvelope(t, raw).Message, "username")

	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": "alice2",
		"password": "secret123",
		"email":    "a@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeEnvelope(t, raw).Message, "email")
}

func TestLogin_FailureModesLookAlike(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	registerAlice(t, ts.URL)

	resp, rawWrong := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, rawUnknown := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, decodeEnvelope(t, rawWrong).Message, decodeEnvelope(t, rawUnknown).Message)
}

func TestMe_FullFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	registerAlice(t, ts.URL)
	token := loginAlice(t, ts.URL)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, strings.ToLower(string(raw)), "passwordhash")

	var user struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, raw).Data, &user))
	assert.Equal(t, "alice", user.Username)
}

func TestMe_MissingHeader(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/me", "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMe_GarbageToken(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateMe(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	registerAlice(t, ts.URL)
	token := loginAlice(t, ts.URL)

	resp, raw := doJSON(t, http.MethodPut, ts.URL+"/api/me", token, map[string]string{
		"image": "https://cdn.example.com/alice.png",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user struct {
		Username string `json:"username"`
		Image    string `json:"image"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, raw).Data, &user))
	assert.Equal(t, "alice", user.Username, "unsent fields stay untouched")
	assert.Equal(t, "https://cdn.example.com/alice.png", user.Image)

	// The old password still works: profile updates never rehash.
	loginAlice(t, ts.URL)
}

func TestUpdateMe_EmptyUsernameRejected(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	registerAlice(t, ts.URL)
	token := loginAlice(t, ts.URL)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/me", token, map[string]string{"username": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
