package ports

import (
	"context"

	metricsDomain "capi-event-relay/internal/metrics/core/domain"
)

type RelayMetricsPort interface {
	RecordRelay(ctx context.Context, o metricsDomain.RelayObservation)
}
