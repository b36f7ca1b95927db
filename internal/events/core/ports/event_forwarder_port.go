package ports

import (
	"context"

	"capi-event-relay/internal/events/core/domain"
)

type EventForwarderPort interface {
	// Forward sends p for creds.PixelID and returns the provider's answer:
	//   err = nil                             -> provider accepted the event
	//   err is *domain.UpstreamUnavailableError -> provider not reached
	//   err is *domain.UpstreamRejectedError    -> provider answered non-2xx
	Forward(ctx context.Context, creds domain.Credentials, p domain.OutboundPayload) (*domain.UpstreamResponse, error)
}
