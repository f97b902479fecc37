package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symptomcheck/internal/api"
	"github.com/mcoot/symptomcheck/internal/api/apierr"
	"github.com/mcoot/symptomcheck/internal/api/response"
	"github.com/mcoot/symptomcheck/internal/factory"
	"github.com/mcoot/symptomcheck/internal/testutil"
)

// testServer wraps the API router over a test app
type testServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		SessionController: app.SessionController,
		Metrics:           app.Metrics,
	})

	return &testServer{t: t, handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func requireErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) apierr.APIError {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
	return resp.Error
}

// registerAndLogin creates an account and returns an authenticated token
func (ts *testServer) registerAndLogin(username, password string) string {
	ts.t.Helper()

	creds := map[string]string{"username": username, "password": password}
	rr := ts.request(http.MethodPost, "/api/v1/users/register", creds, "")
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/users/login", creds, "")
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[response.Session](ts.t, rr).Token
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestResponsesAreUncacheableJSON(t *testing.T) {
	ts := newTestServer(t)

	for _, rr := range []*httptest.ResponseRecorder{
		ts.request(http.MethodGet, "/api/v1/health", nil, ""),
		ts.request(http.MethodGet, "/api/v1/session", nil, ""),
	} {
		assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	}

	resp := decode[response.Health](t, ts.request(http.MethodGet, "/api/v1/health", nil, ""))
	assert.Equal(t, "ok", resp.Status)
}

func TestSymptomsListsVocabulary(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/symptoms", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.Symptoms](t, rr)
	assert.Equal(t, factory.TestSymptoms, resp.Symptoms)
}

func TestRegisterReturnsAnonymousLoginSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/register",
		map[string]string{"username": "alice", "password": "secret"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decode[response.Session](t, rr)
	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.Authenticated)
	assert.Equal(t, "login", resp.View)
	assert.Equal(t, "anonymous@login", resp.State)
}

func TestRegisterDuplicate(t *testing.T) {
	ts := newTestServer(t)
	creds := map[string]string{"username": "alice", "password": "secret"}

	rr := ts.request(http.MethodPost, "/api/v1/users/register", creds, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/users/register",
		map[string]string{"username": "alice", "password": "other"}, "")
	requireErrorCode(t, rr, http.StatusConflict, apierr.CodeUsernameExists)

	// Original password still works
	rr = ts.request(http.MethodPost, "/api/v1/users/login", creds, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterAndLoginWithLongPassword(t *testing.T) {
	ts := newTestServer(t)

	token := ts.registerAndLogin("alice", strings.Repeat("x", 80))
	assert.NotEmpty(t, token)

	rr := ts.request(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "alice", "password": strings.Repeat("x", 72)}, "")
	requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/users/register", map[string]string{"username": ""}, "")
	apiErr := requireErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
	assert.Equal(t, "is required", apiErr.Fields["username"])
	assert.Equal(t, "is required", apiErr.Fields["password"])
}

func TestRegisterInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	requireErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	token := ts.registerAndLogin("alice", "secret")
	assert.NotEmpty(t, token)

	rr := ts.request(http.MethodGet, "/api/v1/session", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.Session](t, rr)
	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "authenticated@home", resp.State)
}

func TestLoginRotatesToken(t *testing.T) {
	ts := newTestServer(t)
	creds := map[string]string{"username": "alice", "password": "secret"}
	require.Equal(t, http.StatusCreated, ts.request(http.MethodPost, "/api/v1/users/register", creds, "").Code)

	anon, err := ts.app.SessionController.Start(t.Context())
	require.NoError(t, err)

	rr := ts.request(http.MethodPost, "/api/v1/users/login", creds, anon.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[response.Session](t, rr)
	assert.NotEqual(t, anon.Token, resp.Token)

	rr = ts.request(http.MethodGet, "/api/v1/session", nil, anon.Token)
	requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.registerAndLogin("alice", "secret")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "bob", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/users/login",
				map[string]string{"username": tt.username, "password": tt.password}, "")
			requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeInvalidCredentials)
		})
	}
}

func TestLoginWhileAuthenticated(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/users/login",
		map[string]string{"username": "alice", "password": "secret"}, token)
	requireErrorCode(t, rr, http.StatusConflict, apierr.CodeAlreadyAuthenticated)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/session"},
		{http.MethodPost, "/api/v1/session/view"},
		{http.MethodPost, "/api/v1/users/logout"},
		{http.MethodPost, "/api/v1/predictions"},
		{http.MethodGet, "/api/v1/history"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := ts.request(route.method, route.path, nil, "")
			requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)

			rr = ts.request(route.method, route.path, nil, "bogus")
			requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
		})
	}
}

func TestSessionCookieAccepted(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decode[response.Session](t, rr).Username)
}

func TestExpiredSessionRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	ts.app.MockClock.Advance(25 * time.Hour)

	rr := ts.request(http.MethodGet, "/api/v1/session", nil, token)
	requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
}

func TestNavigate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/session/view", map[string]string{"view": "predict"}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "authenticated@predict", decode[response.Session](t, rr).State)

	rr = ts.request(http.MethodPost, "/api/v1/session/view", map[string]string{"view": "settings"}, token)
	requireErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidView)

	rr = ts.request(http.MethodPost, "/api/v1/session/view", map[string]string{"view": "login"}, token)
	requireErrorCode(t, rr, http.StatusConflict, apierr.CodeAlreadyAuthenticated)
}

func TestNavigateAnonymousToProtectedView(t *testing.T) {
	ts := newTestServer(t)
	anon, err := ts.app.SessionController.Start(t.Context())
	require.NoError(t, err)

	rr := ts.request(http.MethodPost, "/api/v1/session/view", map[string]string{"view": "history"}, anon.Token)
	requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)

	rr = ts.request(http.MethodPost, "/api/v1/session/view", map[string]string{"view": "register"}, anon.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous@register", decode[response.Session](t, rr).State)
}

func TestPredict(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/predictions",
		map[string][]string{"symptoms": {"fever", "cough"}}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decode[response.Prediction](t, rr)
	assert.Equal(t, []string{"fever", "cough"}, resp.Symptoms)
	assert.Equal(t, "Disease A", resp.Disease)
	assert.InDelta(t, 82.0, resp.Confidence, 0.001)
	assert.Contains(t, resp.Advice, "Disease A")
	assert.Equal(t, "https://www.practo.com/", resp.ConsultationURL)
	assert.Equal(t, "authenticated@predict", resp.Session.State)

	calls := ts.app.MockClassifier.Calls()
	require.NotEmpty(t, calls)
	for _, x := range calls {
		assert.Equal(t, []float64{1, 1, 0}, x)
	}
}

func TestPredictEmptySelection(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/predictions", map[string][]string{"symptoms": {}}, token)
	requireErrorCode(t, rr, http.StatusBadRequest, apierr.CodeEmptySelection)
	assert.Empty(t, ts.app.MockClassifier.Calls())

	rr = ts.request(http.MethodGet, "/api/v1/history", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.History](t, rr).Entries)
}

func TestPredictUnknownSymptom(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/predictions",
		map[string][]string{"symptoms": {"fever", "hiccups"}}, token)
	apiErr := requireErrorCode(t, rr, http.StatusBadRequest, apierr.CodeUnknownSymptom)
	assert.Contains(t, apiErr.Message, "hiccups")
}

func TestPredictBlankSymptomFailsValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/predictions",
		map[string][]string{"symptoms": {"fever", ""}}, token)
	apiErr := requireErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
	assert.Contains(t, apiErr.Fields, "symptoms[1]")
}

func TestHistoryMostRecentFirst(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	selections := [][]string{{"fever"}, {"cough"}, {"fatigue", "fever"}}
	for _, s := range selections {
		ts.app.MockClock.Advance(time.Minute)
		rr := ts.request(http.MethodPost, "/api/v1/predictions", map[string][]string{"symptoms": s}, token)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.request(http.MethodGet, "/api/v1/history", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.History](t, rr)
	assert.Equal(t, "alice", resp.Username)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, []string{"fatigue", "fever"}, resp.Entries[0].Symptoms)
	assert.Equal(t, []string{"cough"}, resp.Entries[1].Symptoms)
	assert.Equal(t, []string{"fever"}, resp.Entries[2].Symptoms)
	assert.True(t, resp.Entries[0].CreatedAt.After(resp.Entries[2].CreatedAt))
}

func TestHistoryIsPerUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.registerAndLogin("alice", "secret")
	bob := ts.registerAndLogin("bob", "hunter2")

	rr := ts.request(http.MethodPost, "/api/v1/predictions", map[string][]string{"symptoms": {"fever"}}, alice)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/history", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.History](t, rr).Entries)
}

func TestLogoutBlocksHistory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin("alice", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/users/logout", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous@login", decode[response.Session](t, rr).State)

	rr = ts.request(http.MethodGet, "/api/v1/history", nil, token)
	requireErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
}
