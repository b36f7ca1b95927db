package dogstatsd

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"go.uber.org/zap"

	"capi-event-relay/internal/metrics/core/ports"
)

const namespace = "capi_relay."

type Writer struct {
	client statsd.ClientInterface
	rate   float64
	log    *zap.Logger
}

var _ ports.MetricsWriterPort = (*Writer)(nil)

// NewClient connects to a statsd/dogstatsd agent. An empty addr yields a
// client that drops everything, so the relay runs without an agent.
func NewClient(addr, service, env string) (statsd.ClientInterface, error) {
	if addr == "" {
		return &statsd.NoOpClient{}, nil
	}
	return statsd.New(addr,
		statsd.WithNamespace(namespace),
		statsd.WithTags([]string{"service:" + service, "env:" + env}),
	)
}

func NewWriter(client statsd.ClientInterface, rate float64, log *zap.Logger) *Writer {
	return &Writer{client: client, rate: rate, log: log}
}

func (w *Writer) Count(name string, value int64, tags []string) {
	if err := w.client.Count(name, value, tags, w.rate); err != nil {
		w.log.Warn("statsd count failed", zap.String("metric", name), zap.Error(err))
	}
}

func (w *Writer) Timing(name string, value time.Duration, tags []string) {
	if err := w.client.Timing(name, value, tags, w.rate); err != nil {
		w.log.Warn("statsd timing failed", zap.String("metric", name), zap.Error(err))
	}
}
