package ports

import "time"

type MetricsWriterPort interface {
	Count(name string, value int64, tags []string)
	Timing(name string, value time.Duration, tags []string)
}
