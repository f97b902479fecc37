package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symptomcheck/internal/api"
	"github.com/mcoot/symptomcheck/internal/factory"
	"github.com/mcoot/symptomcheck/internal/services/auth"
	"github.com/mcoot/symptomcheck/internal/testutil"
	"github.com/mcoot/symptomcheck/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "symcheck-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/symcheck")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "SYMCHECK_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	projectRoot := findProjectRoot(t)
	logger := testutil.NopLogger()

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = 4
	app, err := factory.New(context.Background(), factory.Config{
		SymptomsPath: filepath.Join(projectRoot, "data/symptoms.json"),
		ModelPath:    filepath.Join(projectRoot, "data/model.json"),
		AuthConfig:   authCfg,
		Logger:       logger,
	})
	require.NoError(t, err)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		Metrics:           app.Metrics,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		Metrics:           app.Metrics,
		StaticDir:         filepath.Join(projectRoot, "internal/web/static"),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", app.Metrics.Handler())
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// decodeLast decodes the last JSON document in output; commands may print a message before the result
func decodeLast(t *testing.T, output string, v any) {
	t.Helper()

	dec := json.NewDecoder(strings.NewReader(output))
	var last json.RawMessage
	for {
		var doc json.RawMessage
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err, "output: %s", output)
		last = doc
	}
	require.NotNil(t, last, "no JSON in output: %s", output)
	require.NoError(t, json.Unmarshal(last, v))
}

// Response types for JSON parsing
type sessionResponse struct {
	Token         string `json:"token"`
	Username      string `json:"username"`
	View          string `json:"view"`
	State         string `json:"state"`
	Authenticated bool   `json:"authenticated"`
}

type symptomsResponse struct {
	Symptoms []string `json:"symptoms"`
}

type predictionResponse struct {
	Symptoms   []string `json:"symptoms"`
	Disease    string   `json:"disease"`
	Confidence float64  `json:"confidence"`
	Advice     string   `json:"advice"`
}

type historyResponse struct {
	Username string `json:"username"`
	Entries  []struct {
		Symptoms   []string `json:"symptoms"`
		Disease    string   `json:"disease"`
		Confidence float64  `json:"confidence"`
	} `json:"entries"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	decodeLast(t, output, &resp)
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_FullFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("symptoms")
	require.NoError(t, err, "output: %s", output)
	var symptoms symptomsResponse
	decodeLast(t, output, &symptoms)
	require.Contains(t, symptoms.Symptoms, "fever")
	require.Contains(t, symptoms.Symptoms, "cough")

	output, err = cli.run("user", "register", "--user", "alice", "--pass", "secret")
	require.NoError(t, err, "output: %s", output)
	var sess sessionResponse
	decodeLast(t, output, &sess)
	assert.Equal(t, "anonymous@login", sess.State)

	output, err = cli.run("user", "login", "--user", "alice", "--pass", "secret")
	require.NoError(t, err, "output: %s", output)
	decodeLast(t, output, &sess)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "authenticated@home", sess.State)

	for _, args := range [][]string{
		{"predict", "--symptom", "fever", "--symptom", "cough"},
		{"predict", "--symptom", "rash"},
	} {
		output, err = cli.run(args...)
		require.NoError(t, err, "output: %s", output)

		var pred predictionResponse
		decodeLast(t, output, &pred)
		assert.NotEmpty(t, pred.Disease)
		assert.GreaterOrEqual(t, pred.Confidence, 0.0)
		assert.LessOrEqual(t, pred.Confidence, 100.0)
		assert.NotEmpty(t, pred.Advice)
	}

	output, err = cli.run("history")
	require.NoError(t, err, "output: %s", output)
	var history historyResponse
	decodeLast(t, output, &history)
	assert.Equal(t, "alice", history.Username)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, []string{"rash"}, history.Entries[0].Symptoms)
	assert.Equal(t, []string{"fever", "cough"}, history.Entries[1].Symptoms)

	output, err = cli.run("user", "logout")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("history")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Not logged in
	output, err := cli.run("predict", "--symptom", "fever")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	output, err = cli.run("user", "login", "--user", "nobody", "--pass", "x")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")

	_, err = cli.run("user", "register", "--user", "bob", "--pass", "pw")
	require.NoError(t, err)
	_, err = cli.run("user", "login", "--user", "bob", "--pass", "pw")
	require.NoError(t, err)

	output, err = cli.run("predict", "--symptom", "hiccups")
	require.Error(t, err)
	assert.Contains(t, output, "UNKNOWN_SYMPTOM")

	output, err = cli.run("predict")
	require.Error(t, err)
	assert.Contains(t, output, "EMPTY_SELECTION")
}

func TestServer_MetricsExposed(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	resp, err := http.Get(ts.addr + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.addr + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "symcheck_")
}
