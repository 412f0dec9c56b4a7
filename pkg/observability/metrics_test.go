package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsEditingMetrics(t *testing.T) {
	c := NewCollector("mediagraph_test")

	c.CommandApplied("AddMediaNode", true)
	c.CommandApplied("AddMediaNode", true)
	c.SaveRecorded(SaveSkipped)
	c.LoadRecorded(false)
	c.ObserveStore("get", "memory", errors.New("boom"), time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `mediagraph_test_commands_applied_total{changed="true",command="AddMediaNode"} 2`)
	assert.Contains(t, body, `mediagraph_test_graph_saves_total{result="skipped"} 1`)
	assert.Contains(t, body, `mediagraph_test_graph_loads_total{result="failure"} 1`)
	assert.Contains(t, body, `mediagraph_test_store_operations_total{operation="get",status="error",store="memory"} 1`)
}

func TestCollector_NilIsNoOp(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.CommandApplied("MoveNode", false)
		c.SaveRecorded(SaveSucceeded)
		c.ObserveHTTP(http.MethodGet, "/graphs", 200, time.Millisecond)
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("mediagraph_test")
	c.ObserveHTTP(http.MethodGet, "/graphs", 200, time.Millisecond)

	assert.Contains(t, scrape(t, c), `mediagraph_test_http_requests_total{method="GET",route="/graphs",status="200"} 1`)
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
