package report

import (
	"context"

	"github.com/dmitrijs2005/rxkeeper/internal/metrics"
)

// Service builds, renders and publishes a report in one call.
type Service struct {
	builder   *Builder
	assembler Assembler
	publisher Publisher
}

func NewService(b *Builder, a Assembler, p Publisher) *Service {
	return &Service{builder: b, assembler: a, publisher: p}
}

// Generate returns where the published report can be found. Every run is
// counted in metrics.ReportsGenerated.
func (s *Service) Generate(ctx context.Context, userID string) (where string, err error) {
	defer func() {
		metrics.ReportsGenerated.WithLabelValues(metrics.Result(err)).Inc()
	}()

	snap, err := s.builder.SnapshotForReport(ctx, userID)
	if err != nil {
		return "", err
	}
	doc, err := s.assembler.Assemble(ctx, snap)
	if err != nil {
		return "", err
	}
	return s.publisher.Publish(ctx, doc)
}
