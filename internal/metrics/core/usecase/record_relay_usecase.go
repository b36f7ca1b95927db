package usecase

import (
	"context"
	"strconv"

	"capi-event-relay/internal/metrics/core/domain"
	"capi-event-relay/internal/metrics/core/ports"
)

type RecordRelayUseCase struct {
	writer ports.MetricsWriterPort
}

func NewRecordRelayUseCase(writer ports.MetricsWriterPort) *RecordRelayUseCase {
	return &RecordRelayUseCase{writer: writer}
}

// RecordRelay turns an observation into counters and timings. Tags are
// bounded enums only, so cardinality stays fixed.
func (uc *RecordRelayUseCase) RecordRelay(ctx context.Context, o domain.RelayObservation) {
	tags := []string{
		tag(domain.TagStatus, o.Status),
		tag(domain.TagActionSource, actionSourceTag(o.ActionSource)),
	}
	if o.FailedStage != "" {
		tags = append(tags, tag(domain.TagFailedStage, o.FailedStage))
	}
	if o.ErrorKind != "" {
		tags = append(tags, tag(domain.TagErrorKind, o.ErrorKind))
	}

	uc.writer.Count(domain.RelayRequestCount, 1, tags)
	uc.writer.Timing(domain.RelayRequestLatency, o.Duration, tags)

	if !o.Forwarded {
		return
	}

	upstreamTags := []string{tag(domain.TagUpstreamStatus, upstreamStatusTag(o.UpstreamStatus))}
	uc.writer.Count(domain.UpstreamRequestCount, 1, upstreamTags)
	uc.writer.Timing(domain.UpstreamLatency, o.UpstreamLatency, upstreamTags)
}

func tag(key, value string) string {
	return key + ":" + value
}

// actionSourceTag keeps caller-supplied strings out of tag values.
func actionSourceTag(s string) string {
	switch s {
	case "email", "website", "app", "phone_call", "chat", "physical_store",
		"system_generated", "business_messaging", "other":
		return s
	default:
		return "invalid"
	}
}

// upstreamStatusTag buckets by class: 2xx, 4xx, 5xx, or none when no
// response arrived.
func upstreamStatusTag(code int) string {
	if code < 100 || code > 599 {
		return "none"
	}
	return strconv.Itoa(code/100) + "xx"
}
