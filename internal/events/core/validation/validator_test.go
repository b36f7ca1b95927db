package validation

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capi-event-relay/internal/events/core/domain"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return New(Config{
		MaxEventAge:   7 * 24 * time.Hour,
		MaxFutureSkew: 10 * time.Minute,
	}).WithClock(func() time.Time { return fixedNow })
}

func validCreds() domain.Credentials {
	return domain.Credentials{PixelID: "1234567890", AccessToken: "token"}
}

func validEvent() domain.InboundEvent {
	currency := "USD"
	value := 99.99
	return domain.InboundEvent{
		EventName:      "Purchase",
		EventTime:      fixedNow.Add(-time.Minute).Unix(),
		ActionSource:   domain.ActionSourceWebsite,
		EventSourceURL: "https://example.com/checkout",
		CustomData: &domain.CustomData{
			Currency:   &currency,
			Value:      &value,
			ContentIDs: []string{"product_123"},
		},
	}
}

func fields(vs domain.Violations) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Field)
	}
	return out
}

func TestValidate_ValidEvent(t *testing.T) {
	assert.Empty(t, newTestValidator().Validate(validEvent(), validCreds()))
}

func TestValidate_NoCustomData(t *testing.T) {
	e := validEvent()
	e.CustomData = nil
	assert.Empty(t, newTestValidator().Validate(e, validCreds()))
}

func TestValidate_ValueWithoutCurrency(t *testing.T) {
	e := validEvent()
	e.CustomData.Currency = nil

	vs := newTestValidator().Validate(e, validCreds())

	require.Len(t, vs, 1)
	assert.Equal(t, "custom_data.currency", vs[0].Field)
	assert.Equal(t, "is required when value is provided", vs[0].Reason)
}

func TestValidate_CurrencyWithoutValue(t *testing.T) {
	e := validEvent()
	e.CustomData.Value = nil

	vs := newTestValidator().Validate(e, validCreds())

	assert.Equal(t, []string{"custom_data.value"}, fields(vs))
}

func TestValidate_NegativeValueAndBadCurrency(t *testing.T) {
	e := validEvent()
	neg := -1.0
	cur := "US$"
	e.CustomData.Value = &neg
	e.CustomData.Currency = &cur

	vs := newTestValidator().Validate(e, validCreds())

	assert.ElementsMatch(t, []string{"custom_data.currency", "custom_data.value"}, fields(vs))
}

func TestValidate_ContentIDs(t *testing.T) {
	e := validEvent()
	e.CustomData.ContentIDs = []string{}
	assert.Equal(t, []string{"custom_data.content_ids"}, fields(newTestValidator().Validate(e, validCreds())))

	e.CustomData.ContentIDs = []string{"a", " "}
	assert.Equal(t, []string{"custom_data.content_ids[1]"}, fields(newTestValidator().Validate(e, validCreds())))
}

func TestValidate_EventTimeWindow(t *testing.T) {
	v := newTestValidator()

	old := validEvent()
	old.EventTime = fixedNow.Add(-8 * 24 * time.Hour).Unix()
	assert.Equal(t, []string{"event_time"}, fields(v.Validate(old, validCreds())))

	future := validEvent()
	future.EventTime = fixedNow.Add(time.Hour).Unix()
	vs := v.Validate(future, validCreds())
	require.Len(t, vs, 1)
	assert.Equal(t, "must not be in the future", vs[0].Reason)

	slightlyAhead := validEvent()
	slightlyAhead.EventTime = fixedNow.Add(5 * time.Minute).Unix()
	assert.Empty(t, v.Validate(slightlyAhead, validCreds()))

	zero := validEvent()
	zero.EventTime = 0
	assert.Equal(t, []string{"event_time"}, fields(v.Validate(zero, validCreds())))
}

func TestValidate_AggregatesAllViolations(t *testing.T) {
	e := domain.InboundEvent{
		EventName:      " ",
		EventTime:      fixedNow.Unix(),
		ActionSource:   "billboard",
		EventSourceURL: "not a url",
		CustomData:     &domain.CustomData{Value: func() *float64 { v := 10.0; return &v }()},
	}

	vs := newTestValidator().Validate(e, domain.Credentials{PixelID: "px-1"})

	assert.ElementsMatch(t, []string{
		"event_name",
		"action_source",
		"pixel_id",
		"access_token",
		"event_source_url",
		"custom_data.currency",
	}, fields(vs))
	assert.Error(t, vs.Err())
	assert.ErrorIs(t, vs.Err(), domain.ErrValidation)
}

func TestValidate_PixelIDPatternIsConfigurable(t *testing.T) {
	v := New(Config{
		MaxEventAge:    time.Hour,
		MaxFutureSkew:  time.Minute,
		PixelIDPattern: regexp.MustCompile(`^[0-9]{15,16}$`),
	}).WithClock(func() time.Time { return fixedNow })

	vs := v.Validate(validEvent(), validCreds())
	assert.Equal(t, []string{"pixel_id"}, fields(vs))

	vs = v.Validate(validEvent(), domain.Credentials{PixelID: "123456789012345", AccessToken: "t"})
	assert.Empty(t, vs)
}

func TestValidate_CurrencyIsTrimmed(t *testing.T) {
	e := validEvent()
	currency := " USD "
	e.CustomData.Currency = &currency

	assert.Empty(t, newTestValidator().Validate(e, validCreds()))
}

func TestValidate_StringifiedNullCurrencyIsAbsent(t *testing.T) {
	var c domain.CustomData
	require.NoError(t, json.Unmarshal([]byte(`{"currency":"null","content_ids":["p1"]}`), &c))

	e := validEvent()
	e.CustomData = &c

	assert.Empty(t, newTestValidator().Validate(e, validCreds()))
}
