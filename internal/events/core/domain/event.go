package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

type ActionSource string

const (
	ActionSourceEmail             ActionSource = "email"
	ActionSourceWebsite           ActionSource = "website"
	ActionSourceApp               ActionSource = "app"
	ActionSourcePhoneCall         ActionSource = "phone_call"
	ActionSourceChat              ActionSource = "chat"
	ActionSourcePhysicalStore     ActionSource = "physical_store"
	ActionSourceSystemGenerated   ActionSource = "system_generated"
	ActionSourceBusinessMessaging ActionSource = "business_messaging"
	ActionSourceOther             ActionSource = "other"
)

var actionSources = map[ActionSource]struct{}{
	ActionSourceEmail:             {},
	ActionSourceWebsite:           {},
	ActionSourceApp:               {},
	ActionSourcePhoneCall:         {},
	ActionSourceChat:              {},
	ActionSourcePhysicalStore:     {},
	ActionSourceSystemGenerated:   {},
	ActionSourceBusinessMessaging: {},
	ActionSourceOther:             {},
}

func (a ActionSource) Valid() bool {
	_, ok := actionSources[a]
	return ok
}

// InboundEvent is the event as the client reported it.
type InboundEvent struct {
	EventName      string
	EventTime      int64
	EventID        string
	EventSourceURL string
	ActionSource   ActionSource
	TestEventCode  string
	UserData       UserData
	CustomData     *CustomData
}

// UserData holds raw client-reported identifiers. Pointer fields are nil when
// the client omitted them.
type UserData struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Phone       *string `json:"phone"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"date_of_birth"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Zip         *string `json:"zip"`
	Country     *string `json:"country"`
	ExternalID  *string `json:"external_id"`

	UserAgent *string `json:"user_agent"`
	Fbc       *string `json:"fbc"`
	Fbp       *string `json:"fbp"`
}

// PII returns the hashable fields keyed by kind. Nil entries are kept so the
// normalizer decides what counts as absent.
func (u UserData) PII() map[PIIField]*string {
	return map[PIIField]*string{
		FieldEmail:       u.Email,
		FieldFirstName:   u.FirstName,
		FieldLastName:    u.LastName,
		FieldPhone:       u.Phone,
		FieldGender:      u.Gender,
		FieldDateOfBirth: u.DateOfBirth,
		FieldCity:        u.City,
		FieldState:       u.State,
		FieldZip:         u.Zip,
		FieldCountry:     u.Country,
		FieldExternalID:  u.ExternalID,
	}
}

// CustomData carries the commerce fields the relay understands plus any other
// custom_data keys, which are passed through after null-cleaning.
type CustomData struct {
	Currency    *string
	Value       *float64
	ContentIDs  []string
	ContentType *string
	Extra       map[string]any
}

var customDataKnownKeys = map[string]struct{}{
	"currency":     {},
	"value":        {},
	"content_ids":  {},
	"content_type": {},
}

func (c *CustomData) UnmarshalJSON(b []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k, raw := range all {
		if isNullish(raw) {
			delete(all, k)
		}
	}

	cleaned, err := json.Marshal(all)
	if err != nil {
		return err
	}

	var known struct {
		Currency    *string  `json:"currency"`
		Value       *float64 `json:"value"`
		ContentIDs  []string `json:"content_ids"`
		ContentType *string  `json:"content_type"`
	}
	if err := json.Unmarshal(cleaned, &known); err != nil {
		return err
	}

	c.Currency = known.Currency
	c.Value = known.Value
	c.ContentIDs = known.ContentIDs
	c.ContentType = known.ContentType
	c.Extra = nil

	for k, raw := range all {
		if _, ok := customDataKnownKeys[k]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}

	return nil
}

// isNullish reports JSON null and the string "null" in any case; some client
// SDKs stringify missing values.
func isNullish(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.EqualFold(s, "null")
	}
	return false
}

// Credentials identify the pixel and authorize the call for one request.
type Credentials struct {
	PixelID     string
	AccessToken string
}

// ResolveCredentials prefers per-request header values over the process
// defaults, field by field.
func ResolveCredentials(headerPixelID, headerAccessToken string, defaults Credentials) Credentials {
	c := defaults
	if v := strings.TrimSpace(headerPixelID); v != "" {
		c.PixelID = v
	}
	if v := strings.TrimSpace(headerAccessToken); v != "" {
		c.AccessToken = v
	}
	return c
}

// Signals are observed by the server, not reported by the client.
type Signals struct {
	ClientIPAddress string
	UserAgent       string
}
