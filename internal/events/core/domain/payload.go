package domain

// UpstreamResponse is a 2xx answer from the Conversions API.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
}

// OutboundPayload is the Conversions API request body.
type OutboundPayload struct {
	Data          []OutboundEvent `json:"data"`
	TestEventCode string          `json:"test_event_code,omitempty"`
}

type OutboundEvent struct {
	EventName      string           `json:"event_name"`
	EventTime      int64            `json:"event_time"`
	EventID        string           `json:"event_id,omitempty"`
	EventSourceURL string           `json:"event_source_url,omitempty"`
	ActionSource   ActionSource     `json:"action_source"`
	UserData       OutboundUserData `json:"user_data"`
	CustomData     map[string]any   `json:"custom_data,omitempty"`
}

// OutboundUserData carries hashed PII plus the unhashed signals the provider
// expects in clear.
type OutboundUserData struct {
	Em         string `json:"em,omitempty"`
	Ph         string `json:"ph,omitempty"`
	Fn         string `json:"fn,omitempty"`
	Ln         string `json:"ln,omitempty"`
	Ge         string `json:"ge,omitempty"`
	Db         string `json:"db,omitempty"`
	Ct         string `json:"ct,omitempty"`
	St         string `json:"st,omitempty"`
	Zp         string `json:"zp,omitempty"`
	Country    string `json:"country,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
	Fbc             string `json:"fbc,omitempty"`
	Fbp             string `json:"fbp,omitempty"`
}
