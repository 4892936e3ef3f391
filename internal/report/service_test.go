package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/clock"
	"github.com/dmitrijs2005/rxkeeper/internal/metrics"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Generate(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	ledger := &stubLedger{history: []models.ComplianceDay{{Percent: 80}}}
	b := NewBuilder(stubUsers{user: models.User{ID: "u1", Weight: "70kg"}}, stubTasks{}, ledger, clock.NewFixed(now), 1)
	pub := &recordingPublisher{}
	okBefore := testutil.ToFloat64(metrics.ReportsGenerated.WithLabelValues("ok"))

	where, err := NewService(b, HTMLAssembler{}, pub).Generate(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "memory://caregiver_report_20240307T150000.html", where)
	assert.Contains(t, string(pub.doc.Body), "Overall completion rate: 80.0%")
	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.ReportsGenerated.WithLabelValues("ok")))
}

func TestService_GenerateCountsFailures(t *testing.T) {
	boom := errors.New("ledger unavailable")
	b := NewBuilder(stubUsers{}, stubTasks{}, &stubLedger{historyErr: boom}, clock.NewFixed(time.Now()), 1)
	errBefore := testutil.ToFloat64(metrics.ReportsGenerated.WithLabelValues("error"))

	_, err := NewService(b, HTMLAssembler{}, &recordingPublisher{}).Generate(context.Background(), "u1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.ReportsGenerated.WithLabelValues("error")))
}
