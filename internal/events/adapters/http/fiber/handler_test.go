package fiber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"capi-event-relay/internal/events/core/domain"
	"capi-event-relay/internal/events/core/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type fakeRelayEventUseCase struct {
	ExecuteFunc      func(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error)
	LastExecuteInput usecase.RelayEventInput
	Calls            int
}

func (f *fakeRelayEventUseCase) Execute(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error) {
	f.Calls++
	f.LastExecuteInput = in
	if f.ExecuteFunc != nil {
		return f.ExecuteFunc(ctx, in)
	}
	return &usecase.RelayEventResult{
		RequestID:      in.RequestID,
		Stage:          domain.StageCompleted,
		UpstreamStatus: http.StatusOK,
		Response:       []byte(`{"events_received":1}`),
	}, nil
}

var defaultCreds = domain.Credentials{PixelID: "111", AccessToken: "default-token"}

// helper: create fiber app and routes
func setupTestApp(uc RelayEventUseCase) *fiber.App {
	app := fiber.New()
	h := NewEventHandler(uc, HandlerConfig{
		ServiceName:     "capi-event-relay",
		Defaults:        defaultCreds,
		TrustedIPHeader: "X-Forwarded-For",
	}, zap.NewNop())
	h.newID = func() string { return "req-123" }

	app.Post("/v1/process-event", h.ProcessEvent)
	app.Get("/health", h.Health)

	return app
}

// helper: send request
func doRequest(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	var respJSON map[string]any
	if err := json.Unmarshal(respBody, &respJSON); err != nil {
		t.Fatalf("invalid json response: %v (body: %s)", err, string(respBody))
	}

	return resp, respJSON
}

func validRequest() map[string]any {
	return map[string]any{
		"event_name":    "Purchase",
		"event_time":    time.Now().Add(-time.Minute).Unix(),
		"action_source": "website",
		"user_data": map[string]any{
			"email": "customer@example.com",
			"phone": "+1 (555) 123-4567",
		},
		"custom_data": map[string]any{
			"currency": "USD",
			"value":    99.99,
			"order_id": nil,
		},
	}
}

func TestProcessEvent_Success(t *testing.T) {
	fakeUC := &fakeRelayEventUseCase{}
	app := setupTestApp(fakeUC)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/process-event", validRequest(), map[string]string{
		"User-Agent":      "Mozilla/5.0",
		"X-Forwarded-For": "203.0.113.5, 10.0.0.1",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body: %v)", http.StatusOK, resp.StatusCode, body)
	}
	if resp.Header.Get(HeaderRequestID) != "req-123" {
		t.Errorf("expected X-Request-ID=req-123, got %q", resp.Header.Get(HeaderRequestID))
	}
	if body["request_id"] != "req-123" || body["status"] != "success" {
		t.Errorf("unexpected body: %v", body)
	}

	meta, ok := body["meta_response"].(map[string]any)
	if !ok || meta["events_received"] != float64(1) {
		t.Errorf("expected provider response passthrough, got %v", body["meta_response"])
	}

	in := fakeUC.LastExecuteInput
	if in.RequestID != "req-123" {
		t.Errorf("expected request id passed to use case, got %q", in.RequestID)
	}
	if in.Credentials != defaultCreds {
		t.Errorf("expected default credentials, got %+v", in.Credentials)
	}
	if in.Transport.ForwardedFor != "203.0.113.5, 10.0.0.1" {
		t.Errorf("unexpected forwarded header: %q", in.Transport.ForwardedFor)
	}
	if in.Transport.UserAgentHeader != "Mozilla/5.0" {
		t.Errorf("unexpected user agent: %q", in.Transport.UserAgentHeader)
	}
	if in.Event.ActionSource != domain.ActionSourceWebsite {
		t.Errorf("unexpected action source: %q", in.Event.ActionSource)
	}
	if in.Event.UserData.Phone == nil || *in.Event.UserData.Phone != "+1 (555) 123-4567" {
		t.Errorf("expected raw phone handed to use case")
	}
	if _, ok := in.Event.CustomData.Extra["order_id"]; ok {
		t.Errorf("expected null custom_data entries dropped")
	}
}

func TestProcessEvent_ReportsUpstreamStatus(t *testing.T) {
	fakeUC := &fakeRelayEventUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error) {
			return &usecase.RelayEventResult{
				RequestID:      in.RequestID,
				Stage:          domain.StageCompleted,
				UpstreamStatus: http.StatusAccepted,
				Response:       []byte(`{"events_received":1}`),
			}, nil
		},
	}
	app := setupTestApp(fakeUC)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/process-event", validRequest(), nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d (body: %v)", http.StatusOK, resp.StatusCode, body)
	}
	if body["upstream_status"] != float64(http.StatusAccepted) {
		t.Errorf("expected upstream_status=202, got %v", body["upstream_status"])
	}
}

func TestProcessEvent_HeaderCredentialsOverrideDefaults(t *testing.T) {
	fakeUC := &fakeRelayEventUseCase{}
	app := setupTestApp(fakeUC)

	doRequest(t, app, http.MethodPost, "/v1/process-event", validRequest(), map[string]string{
		HeaderPixelID:     "999",
		HeaderAccessToken: "header-token",
	})

	got := fakeUC.LastExecuteInput.Credentials
	if got.PixelID != "999" || got.AccessToken != "header-token" {
		t.Errorf("expected header credentials, got %+v", got)
	}
}

func TestProcessEvent_InvalidJSON(t *testing.T) {
	fakeUC := &fakeRelayEventUseCase{}
	app := setupTestApp(fakeUC)

	req := httptest.NewRequest(http.MethodPost, "/v1/process-event", bytes.NewBufferString(`{"event_name":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d (body: %s)", http.StatusBadRequest, resp.StatusCode, string(body))
	}
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Errorf("expected X-Request-ID on malformed request")
	}
	if fakeUC.Calls != 0 {
		t.Errorf("use case must not run for malformed json")
	}

	var respJSON map[string]any
	if err := json.Unmarshal(body, &respJSON); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if respJSON["error"] != "invalid_json" || respJSON["request_id"] != "req-123" {
		t.Errorf("unexpected body: %v", respJSON)
	}
}

func TestProcessEvent_ValidationError(t *testing.T) {
	fakeUC := &fakeRelayEventUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error) {
			return nil, &domain.RelayError{
				RequestID: in.RequestID,
				Stage:     domain.StageValidating,
				Err: &domain.ValidationError{Violations: []domain.Violation{
					{Field: "custom_data.currency", Reason: "required when value is present"},
					{Field: "event_name", Reason: "required"},
				}},
			}
		},
	}
	app := setupTestApp(fakeUC)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/process-event", validRequest(), nil)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d (body: %v)", http.StatusUnprocessableEntity, resp.StatusCode, body)
	}
	if body["error"] != "validation_error" || body["request_id"] != "req-123" {
		t.Errorf("unexpected body: %v", body)
	}

	violations, ok := body["violations"].([]any)
	if !ok || len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", body["violations"])
	}
	first := violations[0].(map[string]any)
	if first["field"] != "custom_data.currency" {
		t.Errorf("unexpected first violation: %v", first)
	}
}

func TestProcessEvent_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantError      string
		wantUpstream   float64
		wantMetaFields bool
	}{
		{
			name:       "timeout",
			err:        &domain.UpstreamUnavailableError{Timeout: true, Err: errors.New("timeout")},
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "upstream_timeout",
		},
		{
			name:       "connection refused",
			err:        &domain.UpstreamUnavailableError{Err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusBadGateway,
			wantError:  "upstream_unavailable",
		},
		{
			name:           "provider 4xx passed through",
			err:            &domain.UpstreamRejectedError{StatusCode: 400, Body: []byte(`{"error":{"message":"Invalid parameter"}}`)},
			wantStatus:     http.StatusBadRequest,
			wantError:      "upstream_rejected",
			wantUpstream:   400,
			wantMetaFields: true,
		},
		{
			name:         "provider 5xx",
			err:          &domain.UpstreamRejectedError{StatusCode: 503, Body: []byte("Service Unavailable")},
			wantStatus:   http.StatusBadGateway,
			wantError:    "upstream_rejected",
			wantUpstream: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeUC := &fakeRelayEventUseCase{
				ExecuteFunc: func(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error) {
					return nil, &domain.RelayError{RequestID: in.RequestID, Stage: domain.StageForwarding, Err: tt.err}
				},
			}
			app := setupTestApp(fakeUC)

			resp, body := doRequest(t, app, http.MethodPost, "/v1/process-event", validRequest(), nil)

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %v)", tt.wantStatus, resp.StatusCode, body)
			}
			if body["error"] != tt.wantError {
				t.Errorf("expected error=%q, got %v", tt.wantError, body["error"])
			}
			if body["request_id"] != "req-123" {
				t.Errorf("expected request_id in body, got %v", body["request_id"])
			}
			if tt.wantUpstream != 0 && body["upstream_status"] != tt.wantUpstream {
				t.Errorf("expected upstream_status=%v, got %v", tt.wantUpstream, body["upstream_status"])
			}
			if tt.wantMetaFields {
				if _, ok := body["meta_response"].(map[string]any); !ok {
					t.Errorf("expected provider body in meta_response, got %v", body["meta_response"])
				}
			}
		})
	}
}

func TestProcessEvent_InternalError(t *testing.T) {
	fakeUC := &fakeRelayEventUseCase{
		ExecuteFunc: func(ctx context.Context, in usecase.RelayEventInput) (*usecase.RelayEventResult, error) {
			return nil, errors.New("boom")
		},
	}
	app := setupTestApp(fakeUC)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/process-event", validRequest(), nil)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d (body: %v)", http.StatusInternalServerError, resp.StatusCode, body)
	}
	if body["error"] != "internal_server_error" || body["request_id"] != "req-123" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestHealth(t *testing.T) {
	app := setupTestApp(&fakeRelayEventUseCase{})

	resp, body := doRequest(t, app, http.MethodGet, "/health", nil, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body["status"] != "healthy" || body["service"] != "capi-event-relay" {
		t.Errorf("unexpected body: %v", body)
	}
}
