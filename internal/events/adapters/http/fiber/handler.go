package fiber

import (
	"context"
	"errors"
	"net/http"

	"capi-event-relay/internal/events/core/domain"
	"capi-event-relay/internal/events/core/signals"
	"capi-event-relay/internal/events/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderPixelID     = "X-Meta-Pixel-Id"
	HeaderAccessToken = "X-Meta-Access-Token"
)

type RelayEventUseCase interface {
	Execute(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error)
}

type HandlerConfig struct {
	ServiceName string
	// Defaults are used when a request carries no credential headers.
	Defaults domain.Credentials
	// TrustedIPHeader names the proxy header holding the client address.
	// Empty disables it.
	TrustedIPHeader string
}

type EventHandler struct {
	relayUC RelayEventUseCase
	cfg     HandlerConfig
	log     *zap.Logger
	newID   func() string
}

func NewEventHandler(relayUC RelayEventUseCase, cfg HandlerConfig, log *zap.Logger) *EventHandler {
	return &EventHandler{
		relayUC: relayUC,
		cfg:     cfg,
		log:     log,
		newID:   uuid.NewString,
	}
}

// ProcessEvent godoc
// @Summary Relay an event to the Meta Conversions API
// @Description Normalizes and hashes user data, validates the event and forwards it
// @Tags Events
// @Accept json
// @Produce json
// @Param X-Meta-Pixel-Id header string false "Pixel id overriding the configured default"
// @Param X-Meta-Access-Token header string false "Access token overriding the configured default"
// @Param request body ProcessEventRequest true "Event payload"
// @Success 200 {object} RequestOutcome
// @Failure 400 {object} RequestOutcome "Malformed JSON or rejected by provider"
// @Failure 422 {object} RequestOutcome "Validation failed"
// @Failure 502 {object} RequestOutcome "Provider unavailable or failed"
// @Failure 504 {object} RequestOutcome "Provider timed out"
// @Router /v1/process-event [post]
func (h *EventHandler) ProcessEvent(c *fiber.Ctx) error {
	requestID := h.newID()
	c.Set(HeaderRequestID, requestID)

	var req ProcessEventRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Warn("invalid request body", zap.String("request_id", requestID))
		return c.Status(http.StatusBadRequest).JSON(RequestOutcome{
			RequestID: requestID,
			Status:    "error",
			Message:   "Request body is not valid JSON",
			Error:     "invalid_json",
		})
	}

	input := usecase.RelayEventInput{
		RequestID: requestID,
		Event:     req.toDomain(),
		Credentials: domain.ResolveCredentials(
			c.Get(HeaderPixelID),
			c.Get(HeaderAccessToken),
			h.cfg.Defaults,
		),
		Transport: signals.RequestMeta{
			RemoteAddr:      c.Context().RemoteIP().String(),
			ForwardedFor:    h.forwardedFor(c),
			UserAgentHeader: c.Get(fiber.HeaderUserAgent),
		},
	}

	result, err := h.relayUC.Execute(c.UserContext(), input)
	if err != nil {
		return h.writeError(c, requestID, err)
	}

	return c.Status(http.StatusOK).JSON(RequestOutcome{
		RequestID:      result.RequestID,
		Status:         "success",
		Message:        "Event sent to Conversions API",
		UpstreamStatus: result.UpstreamStatus,
		MetaResponse:   metaResponse(result.Response),
	})
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *EventHandler) Health(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(HealthResponse{
		Status:  "healthy",
		Service: h.cfg.ServiceName,
	})
}

func (h *EventHandler) forwardedFor(c *fiber.Ctx) string {
	if h.cfg.TrustedIPHeader == "" {
		return ""
	}
	return c.Get(h.cfg.TrustedIPHeader)
}

func (h *EventHandler) writeError(c *fiber.Ctx, requestID string, err error) error {
	var relayErr *domain.RelayError
	if errors.As(err, &relayErr) && relayErr.RequestID != "" {
		requestID = relayErr.RequestID
	}

	out := RequestOutcome{RequestID: requestID, Status: "error"}

	var (
		validationErr  *domain.ValidationError
		unavailableErr *domain.UpstreamUnavailableError
		rejectedErr    *domain.UpstreamRejectedError
	)

	switch {
	case errors.As(err, &validationErr):
		out.Message = "Event failed validation"
		out.Error = "validation_error"
		out.Violations = validationErr.Violations
		return c.Status(http.StatusUnprocessableEntity).JSON(out)

	case errors.As(err, &unavailableErr):
		if unavailableErr.Timeout {
			out.Message = "Conversions API timed out"
			out.Error = "upstream_timeout"
			return c.Status(http.StatusGatewayTimeout).JSON(out)
		}
		out.Message = "Conversions API unreachable"
		out.Error = "upstream_unavailable"
		return c.Status(http.StatusBadGateway).JSON(out)

	case errors.As(err, &rejectedErr):
		out.Message = "Conversions API rejected the event"
		out.Error = "upstream_rejected"
		out.UpstreamStatus = rejectedErr.StatusCode
		out.MetaResponse = metaResponse(rejectedErr.Body)
		status := http.StatusBadGateway
		if rejectedErr.StatusCode >= 400 && rejectedErr.StatusCode < 500 {
			status = rejectedErr.StatusCode
		}
		return c.Status(status).JSON(out)

	default:
		h.log.Error("unexpected relay error", zap.String("request_id", requestID), zap.Error(err))
		out.Message = "Internal server error"
		out.Error = "internal_server_error"
		return c.Status(http.StatusInternalServerError).JSON(out)
	}
}
