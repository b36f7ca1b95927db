package fiber

import (
	"encoding/json"

	"capi-event-relay/internal/events/core/domain"
)

// ProcessEventRequest represents an event reported by a client application
// @Description Event relay DTO
type ProcessEventRequest struct {
	EventName      string             `json:"event_name" example:"Purchase"`
	EventTime      int64              `json:"event_time" example:"1703980800"`
	EventID        string             `json:"event_id,omitempty" example:"order-42"`
	EventSourceURL string             `json:"event_source_url,omitempty" example:"https://example.com/checkout"`
	ActionSource   string             `json:"action_source" example:"website"`
	TestEventCode  string             `json:"test_event_code,omitempty" example:"TEST123"`
	UserData       domain.UserData    `json:"user_data"`
	CustomData     *domain.CustomData `json:"custom_data,omitempty" swaggertype:"object"`
}

func (r ProcessEventRequest) toDomain() domain.InboundEvent {
	return domain.InboundEvent{
		EventName:      r.EventName,
		EventTime:      r.EventTime,
		EventID:        r.EventID,
		EventSourceURL: r.EventSourceURL,
		ActionSource:   domain.ActionSource(r.ActionSource),
		TestEventCode:  r.TestEventCode,
		UserData:       r.UserData,
		CustomData:     r.CustomData,
	}
}

// RequestOutcome is returned for every relay request, success or not.
type RequestOutcome struct {
	RequestID      string             `json:"request_id" example:"6f1c2a40-7a3e-4c61-9a59-0b7e0a0d2f11"`
	Status         string             `json:"status" example:"success"`
	Message        string             `json:"message" example:"Event sent to Conversions API"`
	Error          string             `json:"error,omitempty" example:"validation_error"`
	Violations     []domain.Violation `json:"violations,omitempty"`
	UpstreamStatus int                `json:"upstream_status,omitempty" example:"400"`
	MetaResponse   json.RawMessage    `json:"meta_response,omitempty" swaggertype:"object"`
}

type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"capi-event-relay"`
}

// metaResponse keeps a provider body as raw JSON, or as a JSON string when
// the body is not JSON.
func metaResponse(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}
