package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"capi-event-relay/internal/events/core/domain"
)

var defaultPixelIDPattern = regexp.MustCompile(`^[0-9]{1,20}$`)

type Config struct {
	MaxEventAge    time.Duration
	MaxFutureSkew  time.Duration
	PixelIDPattern *regexp.Regexp
}

// Validator checks an inbound event and its credentials. It reports every
// failed rule, not just the first.
type Validator struct {
	cfg      Config
	validate *validator.Validate
	now      func() time.Time
}

// eventShape is the struct-tag view of the rules that need no context.
type eventShape struct {
	EventName    string  `field:"event_name" validate:"required"`
	EventTime    int64   `field:"event_time" validate:"gt=0"`
	ActionSource string  `field:"action_source" validate:"required,action_source"`
	Currency     *string `field:"custom_data.currency" validate:"omitempty,len=3,alpha"`
	PixelID      string  `field:"pixel_id" validate:"required,pixel_id"`
	AccessToken  string  `field:"access_token" validate:"required"`
}

func New(cfg Config) *Validator {
	if cfg.PixelIDPattern == nil {
		cfg.PixelIDPattern = defaultPixelIDPattern
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	_ = v.RegisterValidation("action_source", func(fl validator.FieldLevel) bool {
		return domain.ActionSource(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("pixel_id", func(fl validator.FieldLevel) bool {
		return cfg.PixelIDPattern.MatchString(fl.Field().String())
	})

	return &Validator{cfg: cfg, validate: v, now: time.Now}
}

// WithClock replaces the time source used for the event_time window.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

func (v *Validator) Validate(e domain.InboundEvent, creds domain.Credentials) domain.Violations {
	var out domain.Violations

	shape := eventShape{
		EventName:    strings.TrimSpace(e.EventName),
		EventTime:    e.EventTime,
		ActionSource: string(e.ActionSource),
		PixelID:      creds.PixelID,
		AccessToken:  creds.AccessToken,
	}
	if e.CustomData != nil && e.CustomData.Currency != nil {
		if currency := strings.TrimSpace(*e.CustomData.Currency); currency != "" {
			shape.Currency = &currency
		}
	}

	if err := v.validate.Struct(shape); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			out.Add("event", err.Error())
		}
		for _, fe := range fieldErrs {
			out.Add(fe.Field(), reasonFor(fe))
		}
	}

	if e.EventTime > 0 {
		v.checkEventTime(e.EventTime, &out)
	}
	checkEventSourceURL(e.EventSourceURL, &out)
	if e.CustomData != nil {
		checkCustomData(e.CustomData, &out)
	}

	return out
}

func (v *Validator) checkEventTime(ts int64, out *domain.Violations) {
	now := v.now()
	t := time.Unix(ts, 0)

	if t.Before(now.Add(-v.cfg.MaxEventAge)) {
		out.Add("event_time", fmt.Sprintf("must not be older than %s", v.cfg.MaxEventAge))
	}
	if t.After(now.Add(v.cfg.MaxFutureSkew)) {
		out.Add("event_time", "must not be in the future")
	}
}

func checkEventSourceURL(raw string, out *domain.Violations) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		out.Add("event_source_url", "must be an absolute http(s) URL")
	}
}

func checkCustomData(c *domain.CustomData, out *domain.Violations) {
	hasCurrency := c.Currency != nil && strings.TrimSpace(*c.Currency) != ""
	hasValue := c.Value != nil

	switch {
	case hasValue && !hasCurrency:
		out.Add("custom_data.currency", "is required when value is provided")
	case hasCurrency && !hasValue:
		out.Add("custom_data.value", "is required when currency is provided")
	}

	if hasValue && *c.Value < 0 {
		out.Add("custom_data.value", "must not be negative")
	}

	if c.ContentIDs != nil {
		if len(c.ContentIDs) == 0 {
			out.Add("custom_data.content_ids", "must not be empty")
		}
		for i, id := range c.ContentIDs {
			if strings.TrimSpace(id) == "" {
				out.Add(fmt.Sprintf("custom_data.content_ids[%d]", i), "must not be empty")
			}
		}
	}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be a positive unix timestamp"
	case "action_source":
		return "must be a recognized action source"
	case "len", "alpha":
		return "must be a 3-letter ISO 4217 code"
	case "pixel_id":
		return "does not match the expected pixel id format"
	default:
		return "is invalid"
	}
}
