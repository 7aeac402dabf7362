package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dferreira/authserver/internal/database"
	"github.com/dferreira/authserver/internal/mock"
	"github.com/dferreira/authserver/internal/model"
	"github.com/dferreira/authserver/internal/session"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *mock.Mailer) {
	t.Helper()

	db, err := database.InitializeBadgerDB("", true)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mailer := &mock.Mailer{}
	svc := NewService(db, db, session.NewManager("testsecret"), mailer, testFrontendURL)

	r := mux.NewRouter()
	SetupRoutes(r, svc)
	return r, mailer
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func registerAna(t *testing.T, r *mux.Router) *http.Cookie {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/users/register", map[string]string{
		"name":     "Ana",
		"email":    "ana@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return sessionCookie(t, w)
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/users/register", map[string]string{
		"name":     "Ana",
		"email":    "ana@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "ana@x.com", body["email"])
	assert.Equal(t, model.DefaultPhoto, body["photo"])
	assert.NotEmpty(t, body["token"])
	// The password never appears in a response, hashed or otherwise.
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "secret1")

	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAna(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/users/register", map[string]string{
		"name":     "Outra Ana",
		"email":    "ana@x.com",
		"password": "different7",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email já registado")
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAna(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "ana@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	sessionCookie(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "ana@x.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email ou Password Inválidos")
	// No session cookie accompanies a failed login.
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, session.CookieName, c.Name)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/users/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	c := sessionCookie(t, w)
	assert.Empty(t, c.Value)
	assert.True(t, c.Expires.Unix() <= 0)
}

func TestGetUserEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := registerAna(t, r)

	// Without a session.
	w := doJSON(t, r, http.MethodGet, "/api/users/getuser", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// With a garbage cookie.
	w = doJSON(t, r, http.MethodGet, "/api/users/getuser", nil,
		&http.Cookie{Name: session.CookieName, Value: "garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// With a valid session.
	w = doJSON(t, r, http.MethodGet, "/api/users/getuser", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ana@x.com", body["email"])
	// getuser carries no token in the body.
	assert.NotContains(t, body, "token")
}

func TestLoggedInEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := registerAna(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/users/loggedin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, r, http.MethodGet, "/api/users/loggedin", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, r, http.MethodGet, "/api/users/loggedin", nil,
		&http.Cookie{Name: session.CookieName, Value: "garbage"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", strings.TrimSpace(w.Body.String()))
}

func TestUpdateUserEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := registerAna(t, r)

	w := doJSON(t, r, http.MethodPatch, "/api/users/updateuser", map[string]string{
		"bio": "hi",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "hi", body["bio"])
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, model.DefaultPhoto, body["photo"])
	assert.Equal(t, model.DefaultPhone, body["phone"])

	// Updates require a session.
	w = doJSON(t, r, http.MethodPatch, "/api/users/updateuser", map[string]string{"bio": "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateUserEndpointIgnoresEmail(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := registerAna(t, r)

	w := doJSON(t, r, http.MethodPatch, "/api/users/updateuser", map[string]string{
		"email": "other@x.com",
		"name":  "Ana Maria",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ana Maria", body["name"])
	assert.Equal(t, "ana@x.com", body["email"])
}

func TestChangePasswordEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	cookie := registerAna(t, r)

	w := doJSON(t, r, http.MethodPatch, "/api/users/changepassword", map[string]string{
		"oldPassword": "wrong",
		"password":    "newsecret1",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/users/changepassword", map[string]string{
		"oldPassword": "secret1",
		"password":    "newsecret1",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "ana@x.com",
		"password": "newsecret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestForgotAndResetPasswordEndpoints(t *testing.T) {
	r, mailer := newTestRouter(t)
	registerAna(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/users/forgotpassword", map[string]string{
		"email": "nobody@x.com",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/users/forgotpassword", map[string]string{
		"email": "ana@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.Sent, 1)

	token := resetLinkToken(t, mailer)
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/resetpassword/%s", token), map[string]string{
		"password": "brandnew1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Por favor efetue o login")

	// The old password no longer works; the new one does.
	w = doJSON(t, r, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "ana@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "ana@x.com",
		"password": "brandnew1",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestResetPasswordEndpointBadToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/users/resetpassword/garbage", map[string]string{
		"password": "brandnew1",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido ou expirado")
}

func TestMailDeliveryFailureEndpoint(t *testing.T) {
	r, mailer := newTestRouter(t)
	registerAna(t, r)

	mailer.Fail = true
	w := doJSON(t, r, http.MethodPost, "/api/users/forgotpassword", map[string]string{
		"email": "ana@x.com",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Email não enviado")
}
