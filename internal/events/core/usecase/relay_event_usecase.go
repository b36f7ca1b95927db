package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"capi-event-relay/internal/events/core/domain"
	"capi-event-relay/internal/events/core/payload"
	"capi-event-relay/internal/events/core/pii"
	"capi-event-relay/internal/events/core/ports"
	"capi-event-relay/internal/events/core/signals"
	"capi-event-relay/internal/events/core/validation"
	metricsDomain "capi-event-relay/internal/metrics/core/domain"
)

type RelayEventUseCase struct {
	validator *validation.Validator
	forwarder ports.EventForwarderPort
	metrics   ports.RelayMetricsPort
	log       *zap.Logger
	newID     func() string
}

func NewRelayEventUseCase(
	validator *validation.Validator,
	forwarder ports.EventForwarderPort,
	metrics ports.RelayMetricsPort,
	log *zap.Logger,
) *RelayEventUseCase {
	return &RelayEventUseCase{
		validator: validator,
		forwarder: forwarder,
		metrics:   metrics,
		log:       log,
		newID:     uuid.NewString,
	}
}

type RelayEventInput struct {
	// RequestID is generated when empty.
	RequestID   string
	Event       domain.InboundEvent
	Credentials domain.Credentials
	Transport   signals.RequestMeta
}

type RelayEventResult struct {
	RequestID string
	Stage     domain.Stage
	// UpstreamStatus and Response are the provider's status and body.
	UpstreamStatus int
	Response       []byte
}

// relayRun tracks one request through the stages.
type relayRun struct {
	requestID string
	stage     domain.Stage
	started   time.Time
	obs       metricsDomain.RelayObservation
	log       *zap.Logger
}

func (r *relayRun) advance(next domain.Stage) {
	r.stage = next
	r.log.Debug("stage", zap.Stringer("stage", next))
}

// Execute runs Extracting → Normalizing → Hashing → Validating →
// BuildingPayload → Forwarding. The first failing stage ends the run; nothing
// is forwarded unless every earlier stage succeeded.
//
// On failure the error is a *domain.RelayError carrying the request id.
func (uc *RelayEventUseCase) Execute(ctx context.Context, in RelayEventInput) (*RelayEventResult, error) {
	requestID := in.RequestID
	if requestID == "" {
		requestID = uc.newID()
	}

	r := &relayRun{
		requestID: requestID,
		stage:     domain.StageReceived,
		started:   time.Now(),
		obs:       metricsDomain.RelayObservation{ActionSource: string(in.Event.ActionSource)},
		log:       uc.log.With(zap.String("request_id", requestID)),
	}

	r.log.Info("processing event",
		zap.String("event_name", in.Event.EventName),
		zap.String("pixel_id", in.Credentials.PixelID),
	)

	r.advance(domain.StageExtracting)
	sig := signals.Extract(in.Transport, in.Event.UserData)

	r.advance(domain.StageNormalizing)
	normalized, violations := pii.NormalizeAll(in.Event.UserData)

	r.advance(domain.StageHashing)
	hashed := pii.HashAll(normalized)
	r.log.Info("pii processed", zap.Strings("pii_fields", presentFields(hashed)))

	r.advance(domain.StageValidating)
	violations = append(violations, uc.validator.Validate(in.Event, in.Credentials)...)
	if err := violations.Err(); err != nil {
		return nil, uc.fail(ctx, r, err)
	}

	r.advance(domain.StageBuildingPayload)
	body := payload.Build(payload.Input{
		RequestID: requestID,
		Event:     in.Event,
		Hashed:    hashed,
		Signals:   sig,
	})

	r.advance(domain.StageForwarding)
	r.obs.Forwarded = true
	upstreamStart := time.Now()
	resp, err := uc.forwarder.Forward(ctx, in.Credentials, body)
	r.obs.UpstreamLatency = time.Since(upstreamStart)
	if err != nil {
		return nil, uc.fail(ctx, r, err)
	}
	r.obs.UpstreamStatus = resp.StatusCode

	r.advance(domain.StageCompleted)
	r.obs.Status = "success"
	r.obs.Duration = time.Since(r.started)
	uc.metrics.RecordRelay(ctx, r.obs)

	r.log.Info("event sent to conversions api",
		zap.Duration("upstream_latency", r.obs.UpstreamLatency),
	)

	return &RelayEventResult{
		RequestID:      requestID,
		Stage:          r.stage,
		UpstreamStatus: resp.StatusCode,
		Response:       resp.Body,
	}, nil
}

func (uc *RelayEventUseCase) fail(ctx context.Context, r *relayRun, err error) error {
	failedAt := r.stage
	r.stage = domain.StageFailed

	r.obs.Status = "error"
	r.obs.FailedStage = failedAt.String()
	r.obs.ErrorKind = errorKind(err)
	r.obs.Duration = time.Since(r.started)

	var rejected *domain.UpstreamRejectedError
	if errors.As(err, &rejected) {
		r.obs.UpstreamStatus = rejected.StatusCode
	}
	uc.metrics.RecordRelay(ctx, r.obs)

	fields := []zap.Field{
		zap.Stringer("failed_stage", failedAt),
		zap.String("error_kind", r.obs.ErrorKind),
		zap.Error(err),
	}
	if errors.Is(err, domain.ErrValidation) {
		r.log.Warn("event rejected", fields...)
	} else {
		r.log.Error("conversions api request failed", fields...)
	}

	return &domain.RelayError{RequestID: r.requestID, Stage: failedAt, Err: err}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, domain.ErrUpstreamRejected):
		return "upstream_rejected"
	default:
		return "internal"
	}
}

// presentFields lists provider keys only, never values.
func presentFields(h domain.HashedPII) []string {
	out := make([]string, 0, len(h))
	for f := range h {
		out = append(out, string(f))
	}
	slices.Sort(out)
	return out
}
