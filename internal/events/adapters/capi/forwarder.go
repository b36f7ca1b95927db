package capi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"capi-event-relay/internal/events/core/domain"
	"capi-event-relay/internal/events/core/ports"
)

const redacted = "[REDACTED]"

type Config struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
	// TLSConfig is optional; tests use it to trust a local server.
	TLSConfig *tls.Config
}

// Forwarder posts events to the Conversions API. It never retries.
type Forwarder struct {
	client  *fasthttp.Client
	baseURL string
	version string
	timeout time.Duration
	log     *zap.Logger
}

var _ ports.EventForwarderPort = (*Forwarder)(nil)

func NewForwarder(cfg Config, log *zap.Logger) (*Forwarder, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("base url must use https, got %q", cfg.BaseURL)
	}
	if cfg.APIVersion == "" {
		return nil, errors.New("api version is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Forwarder{
		client: &fasthttp.Client{
			Name:                     "capi-event-relay",
			TLSConfig:                cfg.TLSConfig,
			ReadTimeout:              cfg.Timeout,
			WriteTimeout:             cfg.Timeout,
			NoDefaultUserAgentHeader: true,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		version: strings.Trim(cfg.APIVersion, "/"),
		timeout: cfg.Timeout,
		log:     log,
	}, nil
}

func (f *Forwarder) endpoint(pixelID string) string {
	return f.baseURL + "/" + f.version + "/" + url.PathEscape(pixelID) + "/events"
}

func (f *Forwarder) Forward(ctx context.Context, creds domain.Credentials, p domain.OutboundPayload) (*domain.UpstreamResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.UpstreamUnavailableError{
			Timeout: errors.Is(err, context.DeadlineExceeded),
			Err:     err,
		}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.endpoint(creds.PixelID))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+creds.AccessToken)
	req.SetBodyRaw(body)

	deadline := time.Now().Add(f.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		timeout := isTimeout(err)
		f.log.Warn("conversions api unreachable",
			zap.Bool("timeout", timeout),
			zap.Error(err),
		)
		return nil, &domain.UpstreamUnavailableError{Timeout: timeout, Err: err}
	}

	status := resp.StatusCode()
	// resp is released on return.
	respBody := scrubToken(append([]byte(nil), resp.Body()...), creds.AccessToken)

	if status < 200 || status > 299 {
		f.log.Warn("conversions api rejected event", zap.Int("upstream_status", status))
		return nil, &domain.UpstreamRejectedError{StatusCode: status, Body: respBody}
	}

	return &domain.UpstreamResponse{StatusCode: status, Body: respBody}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, fasthttp.ErrDialTimeout) ||
		errors.Is(err, fasthttp.ErrTLSHandshakeTimeout) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// scrubToken replaces any echo of the access token in a provider body.
func scrubToken(body []byte, token string) []byte {
	if token == "" || len(body) == 0 {
		return body
	}
	return bytes.ReplaceAll(body, []byte(token), []byte(redacted))
}
