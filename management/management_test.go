package management

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/scheduler"
)

func TestHealthReflectsFixedTaskCount(t *testing.T) {
	fixed := scheduler.NewFixed()
	s := NewServer("127.0.0.1:0", fixed, "")

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, fixed.Add(scheduler.TaskKey{ChainID: 1, Kind: scheduler.Listener, Variant: "Block"}, func(ctx context.Context) {
		<-ctx.Done()
	}, log.Fields{}))
	defer fixed.Abort(scheduler.TaskKey{ChainID: 1, Kind: scheduler.Listener, Variant: "Block"})

	rec = httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListFixedTasksRequiresBearerToken(t *testing.T) {
	fixed := scheduler.NewFixed()
	s := NewServer("127.0.0.1:0", fixed, "secret")
	handler := s.requireAuth(s.handleListFixedTasks)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/fixed-tasks", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/fixed-tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler(rec, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/fixed-tasks", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListFixedTasksReportsRegisteredKeys(t *testing.T) {
	fixed := scheduler.NewFixed()
	require.NoError(t, fixed.Add(scheduler.TaskKey{ChainID: 7, Kind: scheduler.RPCServer, Variant: "Committer"}, func(ctx context.Context) {
		<-ctx.Done()
	}, log.Fields{}))
	defer fixed.Abort(scheduler.TaskKey{ChainID: 7, Kind: scheduler.RPCServer, Variant: "Committer"})

	s := NewServer("127.0.0.1:0", fixed, "")
	rec := httptest.NewRecorder()
	s.handleListFixedTasks(rec, httptest.NewRequest(http.MethodGet, "/fixed-tasks", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chain_id":7`)
	assert.Contains(t, rec.Body.String(), `"variant":"Committer"`)
}

func TestShutdownStopsServer(t *testing.T) {
	fixed := scheduler.NewFixed()
	s := NewServer("127.0.0.1:0", fixed, "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}
