package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, "completed", Outcome(true))
	assert.Equal(t, "missed", Outcome(false))
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("x")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	before := testutil.ToFloat64(TaskEvents.WithLabelValues("completed"))
	TaskEvents.WithLabelValues("completed").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TaskEvents.WithLabelValues("completed")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rxkeeper_task_events_total"))
}
