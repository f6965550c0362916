package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/api"
	"github.com/bobby-s-dev/transit-air-quality/internal/config"
	"github.com/bobby-s-dev/transit-air-quality/internal/scheduler"
	"github.com/bobby-s-dev/transit-air-quality/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testHandler(t *testing.T) *api.Handler {
	t.Helper()
	dir := t.TempDir()
	store := services.NewDataStore(zap.NewNop())
	loader := services.NewLoader(dir+"/data_all.json", dir+"/mobility.csv", zap.NewNop())
	refresher := services.NewRefresher(loader, store, zap.NewNop())
	return api.NewHandler(services.NewAnalyzer(store, zap.NewNop()), store, refresher, zap.NewNop())
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.ReadTimeout = time.Second
	cfg.Server.WriteTimeout = time.Second

	handler := testHandler(t)
	sched := scheduler.NewScheduler(nil, "@every 1h", time.Second, zap.NewNop())
	handler.SetScheduler(sched)
	app := newApp(cfg, handler, zap.NewNop())

	t.Run("health reports loading and schedule", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body struct {
			Data struct {
				Status    string                 `json:"status"`
				Scheduler map[string]interface{} `json:"scheduler"`
			} `json:"data"`
		}
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
		assert.Equal(t, "loading", body.Data.Status)
		assert.Equal(t, "@every 1h", body.Data.Scheduler["schedule"])
	})

	t.Run("failed reload uses error envelope", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "RELOAD_FAILED", body.Error.Code)
	})
}
