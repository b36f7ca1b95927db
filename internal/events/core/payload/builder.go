package payload

import (
	"regexp"
	"strings"

	"capi-event-relay/internal/events/core/domain"
)

var (
	fbpPattern = regexp.MustCompile(`^fb\.1\.\d+\.\d+$`)
	fbcPattern = regexp.MustCompile(`^fb\.1\.\d+\..+$`)
)

type Input struct {
	RequestID string
	Event     domain.InboundEvent
	Hashed    domain.HashedPII
	Signals   domain.Signals
}

// Build assembles the Conversions API body for a single event. It has no side
// effects; equal inputs give equal payloads.
func Build(in Input) domain.OutboundPayload {
	e := in.Event

	eventID := strings.TrimSpace(e.EventID)
	if eventID == "" {
		eventID = in.RequestID
	}

	out := domain.OutboundEvent{
		EventName:      strings.TrimSpace(e.EventName),
		EventTime:      e.EventTime,
		EventID:        eventID,
		EventSourceURL: e.EventSourceURL,
		ActionSource:   e.ActionSource,
		UserData:       buildUserData(in.Hashed, in.Signals, e.UserData),
		CustomData:     buildCustomData(e.CustomData),
	}

	return domain.OutboundPayload{
		Data:          []domain.OutboundEvent{out},
		TestEventCode: strings.TrimSpace(e.TestEventCode),
	}
}

func buildUserData(h domain.HashedPII, s domain.Signals, raw domain.UserData) domain.OutboundUserData {
	return domain.OutboundUserData{
		Em:         h[domain.FieldEmail],
		Ph:         h[domain.FieldPhone],
		Fn:         h[domain.FieldFirstName],
		Ln:         h[domain.FieldLastName],
		Ge:         h[domain.FieldGender],
		Db:         h[domain.FieldDateOfBirth],
		Ct:         h[domain.FieldCity],
		St:         h[domain.FieldState],
		Zp:         h[domain.FieldZip],
		Country:    h[domain.FieldCountry],
		ExternalID: h[domain.FieldExternalID],

		ClientIPAddress: s.ClientIPAddress,
		ClientUserAgent: s.UserAgent,
		Fbc:             matching(raw.Fbc, fbcPattern),
		Fbp:             matching(raw.Fbp, fbpPattern),
	}
}

// matching returns the trimmed cookie value, or "" when it doesn't have the
// provider's format. A malformed click id is worse than none.
func matching(v *string, re *regexp.Regexp) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(*v)
	if !re.MatchString(s) {
		return ""
	}
	return s
}

func buildCustomData(c *domain.CustomData) map[string]any {
	if c == nil {
		return nil
	}

	out := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.Currency != nil && strings.TrimSpace(*c.Currency) != "" {
		out["currency"] = strings.ToUpper(strings.TrimSpace(*c.Currency))
	}
	if c.Value != nil {
		out["value"] = *c.Value
	}
	if len(c.ContentIDs) > 0 {
		ids := make([]string, len(c.ContentIDs))
		copy(ids, c.ContentIDs)
		out["content_ids"] = ids
	}
	if c.ContentType != nil && strings.TrimSpace(*c.ContentType) != "" {
		out["content_type"] = strings.TrimSpace(*c.ContentType)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
