package diagnostics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/logging"
)

type stubWorld struct {
	snapshot     WorldSnapshot
	reloadCalled int
}

func (s *stubWorld) Describe() WorldSnapshot { return s.snapshot }
func (s *stubWorld) RequestReload()          { s.reloadCalled++ }

type stubModules struct{ snapshots []ModuleSnapshot }

func (s stubModules) Describe() []ModuleSnapshot { return s.snapshots }

func testServer(t *testing.T, token string) (*httptest.Server, *stubWorld) {
	t.Helper()
	log := logging.New("test", "error", "text")
	world := &stubWorld{snapshot: WorldSnapshot{Built: true, Systems: []SystemSnapshot{{ProviderID: "movement", Order: 0}}}}
	modules := stubModules{snapshots: []ModuleSnapshot{{ID: "main.js", State: "ready"}}}

	srv := New(Options{
		Addr:          "127.0.0.1:0",
		Token:         token,
		Log:           log,
		Events:        eventbus.New(),
		World:         world,
		Modules:       modules,
		ReloadLimiter: rate.Limit(1000),
	})

	handlerServer := httptest.NewServer(srv.http.Handler)
	t.Cleanup(handlerServer.Close)
	return handlerServer, world
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	ts, _ := testServer(t, "topsecret")
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWorldRequiresBearerTokenWhenConfigured(t *testing.T) {
	ts, _ := testServer(t, "topsecret")

	resp, err := http.Get(ts.URL + "/world")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWorldSucceedsWithValidToken(t *testing.T) {
	ts, _ := testServer(t, "topsecret")

	token, err := IssueToken("topsecret", "test-operator", time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/world", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWorldIsOpenWhenNoTokenConfigured(t *testing.T) {
	ts, _ := testServer(t, "")
	resp, err := http.Get(ts.URL + "/world")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReloadInvokesWorldRequestReload(t *testing.T) {
	ts, world := testServer(t, "")
	resp, err := http.Post(ts.URL+"/reload", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, world.reloadCalled)
}

func TestReloadRateLimitRejectsBurst(t *testing.T) {
	log := logging.New("test", "error", "text")
	world := &stubWorld{}
	srv := New(Options{
		Log:           log,
		Events:        eventbus.New(),
		World:         world,
		Modules:       stubModules{},
		ReloadLimiter: rate.Limit(0.001), // effectively one token total
	})
	ts := httptest.NewServer(srv.http.Handler)
	defer ts.Close()

	first, err := http.Post(ts.URL+"/reload", "application/json", nil)
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusAccepted, first.StatusCode)

	second, err := http.Post(ts.URL+"/reload", "application/json", nil)
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
