package domain

import "time"

const (
	RelayRequestCount    = "relay_request_count"
	RelayRequestLatency  = "relay_request_latency"
	UpstreamRequestCount = "upstream_request_count"
	UpstreamLatency      = "upstream_latency"
)

const (
	TagStatus         = "status"
	TagFailedStage    = "failed_stage"
	TagErrorKind      = "error_kind"
	TagActionSource   = "action_source"
	TagUpstreamStatus = "upstream_status"
)

// RelayObservation summarizes one finished relay request. It carries no
// user data.
type RelayObservation struct {
	Status       string // "success" / "error"
	FailedStage  string // empty on success
	ErrorKind    string // "validation", "upstream_unavailable", "upstream_rejected"
	ActionSource string

	// Forwarded is false when the request failed before reaching the provider.
	Forwarded       bool
	UpstreamStatus  int // 0 when no response was received
	UpstreamLatency time.Duration
	Duration        time.Duration
}
