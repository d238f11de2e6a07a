package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var body readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil)
	rec, _ := serve(t, h.Liveness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness_AllHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewHealthHandler(map[string]Check{
		"redis":   RedisCheck(rdb),
		"mongodb": func(context.Context) error { return nil },
	})
	rec, body := serve(t, h.Readiness)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Dependencies["redis"].Status)
	assert.Equal(t, "ok", body.Dependencies["mongodb"].Status)
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthHandler(map[string]Check{
		"redis":   func(context.Context) error { return nil },
		"mongodb": func(context.Context) error { return errors.New("no reachable servers") },
	})
	rec, body := serve(t, h.Readiness)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Dependencies["mongodb"].Status)
	assert.Equal(t, "no reachable servers", body.Dependencies["mongodb"].Error)
	assert.Equal(t, "ok", body.Dependencies["redis"].Status)
}
