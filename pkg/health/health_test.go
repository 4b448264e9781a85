package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) ComponentHealth { return ComponentHealth{Status: StatusUp} }

func TestRunWorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("a", up)
	assert.Equal(t, StatusUp, c.Run(context.Background()).Status)

	c.Register("b", Ping(nil, StatusDown))
	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "not configured", report.Components["b"].Message)

	c.Register("c", Ping(func(context.Context) error { return errors.New("refused") }, StatusDown))
	report = c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "refused", report.Components["c"].Message)
	assert.Len(t, report.Components, 3)
}

func TestRunTimesOutSlowChecks(t *testing.T) {
	c := NewChecker()
	c.checkTimeout = 10 * time.Millisecond
	c.Register("slow", func(ctx context.Context) ComponentHealth {
		time.Sleep(time.Second)
		return ComponentHealth{Status: StatusUp}
	})
	report := c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "check timed out", report.Components["slow"].Message)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("cache", Ping(func(context.Context) error { return errors.New("x") }, StatusDegraded))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusDegraded, report.Status)

	c.Register("db", Ping(func(context.Context) error { return errors.New("x") }, StatusDown))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
