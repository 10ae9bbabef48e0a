package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/modules/auth"
	"github.com/dmitrymomot/credkit/pkg/jwt"
)

func newTestServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	srv := httptest.NewServer(auth.NewHandler(env.svc).Routes())
	t.Cleanup(srv.Close)
	return srv, env
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "response must carry an error object")
	code, _ := errObj["code"].(string)
	return code
}

func TestHandlerRegister(t *testing.T) {
	t.Parallel()

	t.Run("returns 201 with the account", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/register", map[string]string{
			"name":     "John Doe",
			"email":    "john@example.com",
			"password": "sup3rSecret",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeResponse(t, resp)
		data := body["data"].(map[string]any)
		assert.Equal(t, "john@example.com", data["email"])
		assert.Equal(t, false, data["is_verified"])
		assert.NotContains(t, data, "password")
		assert.NotContains(t, data, "password_hash")
	})

	t.Run("returns 409 for duplicate email", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.register(t, "john@example.com")

		resp := postJSON(t, srv.URL+"/register", map[string]string{
			"name":     "Someone Else",
			"email":    "john@example.com",
			"password": "sup3rSecret",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "email_already_exists", errorCode(t, decodeResponse(t, resp)))
	})

	t.Run("returns 422 with field details for invalid input", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/register", map[string]string{
			"name":     "",
			"email":    "not-an-email",
			"password": "abc",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeResponse(t, resp)
		assert.Equal(t, "validation_error", errorCode(t, body))
		details := body["error"].(map[string]any)["details"].(map[string]any)
		assert.Contains(t, details, "name")
		assert.Contains(t, details, "email")
		assert.Contains(t, details, "password")
	})

	t.Run("returns 400 for malformed body", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)

		resp, err := http.Post(srv.URL+"/register", "application/json", bytes.NewReader([]byte("{broken")))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("returns 200 with session token", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.registerVerified(t, "john@example.com")

		resp := postJSON(t, srv.URL+"/login", map[string]string{
			"email":    "john@example.com",
			"password": "sup3rSecret",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := decodeResponse(t, resp)["data"].(map[string]any)
		assert.NotEmpty(t, data["token"])
		account := data["account"].(map[string]any)
		assert.Equal(t, true, account["is_verified"])
	})

	t.Run("returns 401 for bad credentials", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.registerVerified(t, "john@example.com")

		resp := postJSON(t, srv.URL+"/login", map[string]string{
			"email":    "john@example.com",
			"password": "wrongPassword",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid_credentials", errorCode(t, decodeResponse(t, resp)))
	})

	t.Run("returns 403 for unverified account", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.register(t, "john@example.com")

		resp := postJSON(t, srv.URL+"/login", map[string]string{
			"email":    "john@example.com",
			"password": "sup3rSecret",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "email_not_verified", errorCode(t, decodeResponse(t, resp)))
	})
}

func TestHandlerVerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("returns 200 and session on first use, 400 on replay", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.register(t, "john@example.com")
		token := tokenFromEmail(t, env.mailer.last(t), verifyLinkRe)

		resp, err := http.Get(srv.URL + "/verify-email/" + token)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := decodeResponse(t, resp)["data"].(map[string]any)
		assert.NotEmpty(t, data["token"])

		replay, err := http.Get(srv.URL + "/verify-email/" + token)
		require.NoError(t, err)
		t.Cleanup(func() { _ = replay.Body.Close() })
		require.Equal(t, http.StatusBadRequest, replay.StatusCode)
		assert.Equal(t, "already_verified", errorCode(t, decodeResponse(t, replay)))
	})

	t.Run("returns 400 for garbage token", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)

		resp, err := http.Get(srv.URL + "/verify-email/garbage")
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_token", errorCode(t, decodeResponse(t, resp)))
	})
}

func TestHandlerPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("full recovery round trip", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.registerVerified(t, "john@example.com")

		resp := postJSON(t, srv.URL+"/forgot-password", map[string]string{
			"email": "john@example.com",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		token := tokenFromEmail(t, env.mailer.last(t), resetLinkRe)
		resp = postJSON(t, srv.URL+"/reset-password/"+token, map[string]string{
			"password": "newSecret42",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// The new password logs in.
		resp = postJSON(t, srv.URL+"/login", map[string]string{
			"email":    "john@example.com",
			"password": "newSecret42",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("returns 404 for unknown email", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/forgot-password", map[string]string{
			"email": "nobody@example.com",
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "account_not_found", errorCode(t, decodeResponse(t, resp)))
	})

	t.Run("returns 400 for reset with session token", func(t *testing.T) {
		t.Parallel()
		srv, env := newTestServer(t)
		env.registerVerified(t, "john@example.com")

		session, err := env.svc.Login(context.Background(), "john@example.com", "sup3rSecret")
		require.NoError(t, err)

		// A session token has no purpose tag and no verification record,
		// so it must never pass as a reset link.
		resp := postJSON(t, srv.URL+"/reset-password/"+session.Token, map[string]string{
			"password": "newSecret42",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_token", errorCode(t, decodeResponse(t, resp)))
	})
}

// Session tokens issued by the handler are verifiable with the same codec
// the server uses, which is what downstream services rely on.
func TestSessionTokenInteroperability(t *testing.T) {
	t.Parallel()

	srv, env := newTestServer(t)
	account := env.registerVerified(t, "john@example.com")

	resp := postJSON(t, srv.URL+"/login", map[string]string{
		"email":    "john@example.com",
		"password": "sup3rSecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeResponse(t, resp)["data"].(map[string]any)
	rawToken := data["token"].(string)

	codec, err := jwt.New(testSigningKey)
	require.NoError(t, err)
	claims, err := codec.Parse(rawToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), claims.Subject)
}
