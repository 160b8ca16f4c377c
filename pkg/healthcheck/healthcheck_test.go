package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alchemorsel/patisserie/test/testutils/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staticChecker(status Status, message string) *CustomChecker {
	return NewCustomChecker("static", func(ctx context.Context) (Status, string, interface{}) {
		return status, message, nil
	})
}

func TestCheck_AggregatesWorstStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"NoCheckers_ShouldBeHealthy", nil, StatusHealthy},
		{"AllHealthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"OneDegraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"UnhealthyWins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New("test", zap.NewNop())
			for i, s := range tc.statuses {
				h.Register(string(rune('a'+i)), staticChecker(s, ""))
			}

			response := h.Check(context.Background())

			assert.Equal(t, tc.expected, response.Status)
			assert.Len(t, response.Checks, len(tc.statuses))
		})
	}
}

func TestCheck_ShouldSortAndNameChecks(t *testing.T) {
	h := New("1.0.0", zap.NewNop())
	h.Register("zeta", staticChecker(StatusHealthy, ""))
	h.Register("alpha", staticChecker(StatusHealthy, ""))

	response := h.Check(context.Background())

	require.Len(t, response.Checks, 2)
	assert.Equal(t, "alpha", response.Checks[0].Name)
	assert.Equal(t, "zeta", response.Checks[1].Name)
	assert.Equal(t, "1.0.0", response.Version)
}

func TestCheck_ShouldCacheResponses(t *testing.T) {
	var calls int32
	h := New("test", zap.NewNop())
	h.Register("counting", NewCustomChecker("counting", func(ctx context.Context) (Status, string, interface{}) {
		atomic.AddInt32(&calls, 1)
		return StatusHealthy, "", nil
	}))

	h.Check(context.Background())
	h.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	h.SetCacheTTL(0)
	h.Check(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHandler(t *testing.T) {
	t.Run("Healthy_ShouldReturn200", func(t *testing.T) {
		h := New("test", zap.NewNop())
		h.Register("catalog", staticChecker(StatusHealthy, ""))

		rec := httptest.NewRecorder()
		h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Contains(t, body, "total_duration_ms")
	})

	t.Run("Unhealthy_ShouldReturn503", func(t *testing.T) {
		h := New("test", zap.NewNop())
		h.Register("database", staticChecker(StatusUnhealthy, "connection refused"))

		rec := httptest.NewRecorder()
		h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})

	t.Run("Degraded_ShouldStill200", func(t *testing.T) {
		h := New("test", zap.NewNop())
		h.Register("redis", staticChecker(StatusDegraded, "timeout"))

		rec := httptest.NewRecorder()
		h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDatabaseChecker(t *testing.T) {
	db := dbtest.SetupTestDatabase(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	t.Run("Open_ShouldBeHealthy", func(t *testing.T) {
		check := NewDatabaseChecker(sqlDB).Check(context.Background())

		assert.Equal(t, StatusHealthy, check.Status)
		assert.NotNil(t, check.Metadata)
	})

	t.Run("Closed_ShouldBeUnhealthy", func(t *testing.T) {
		require.NoError(t, sqlDB.Close())

		check := NewDatabaseChecker(sqlDB).Check(context.Background())

		assert.Equal(t, StatusUnhealthy, check.Status)
		assert.NotEmpty(t, check.Message)
	})
}

func TestCheck_MarshalsDurationInMilliseconds(t *testing.T) {
	data, err := json.Marshal(Check{Name: "x", Status: StatusHealthy, Duration: 1500 * time.Microsecond})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"duration_ms":1.5`)
}
