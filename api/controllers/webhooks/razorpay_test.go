package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	razorpaywebhook "github.com/milkoapp/milko-backend/internal/webhooks/razorpay"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

type stubWebhookService struct {
	outcome  razorpaywebhook.Outcome
	events   []*razorpaywebhook.Event
	eventIDs []string
}

func (s *stubWebhookService) HandleEvent(ctx context.Context, eventID string, event *razorpaywebhook.Event) razorpaywebhook.Outcome {
	s.events = append(s.events, event)
	s.eventIDs = append(s.eventIDs, eventID)
	return s.outcome
}

type stubVerifier struct {
	valid bool
}

func (s stubVerifier) VerifyWebhookSignature(body []byte, signature string) bool {
	return s.valid
}

func webhookRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "sig")
	req.Header.Set("X-Razorpay-Event-Id", "evt_1")
	return req
}

func TestRazorpayWebhookAcksVerifiedEvents(t *testing.T) {
	svc := &stubWebhookService{outcome: razorpaywebhook.Applied()}
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, testLogger())

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","status":"captured"}}}}`
	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(svc.events))
	}
	if svc.events[0].Event != "payment.captured" {
		t.Fatalf("unexpected event %q", svc.events[0].Event)
	}
	if svc.eventIDs[0] != "evt_1" {
		t.Fatalf("expected event id from header, got %q", svc.eventIDs[0])
	}
}

func TestRazorpayWebhookAcksFailedOutcomes(t *testing.T) {
	// A failed reconciliation still gets a 200 so the gateway does not
	// hammer us with retries for events we recorded as failed.
	svc := &stubWebhookService{outcome: razorpaywebhook.Failed("activation failed")}
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(`{"event":"payment.captured","payload":{}}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed") {
		t.Fatalf("expected disposition in body, got %s", rec.Body.String())
	}
}

func TestRazorpayWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{outcome: razorpaywebhook.Applied()}
	handler := RazorpayWebhook(svc, stubVerifier{valid: false}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(`{"event":"payment.captured"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatal("unverified event must not reach the service")
	}
}

func TestRazorpayWebhookRejectsMissingSignature(t *testing.T) {
	svc := &stubWebhookService{outcome: razorpaywebhook.Applied()}
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRazorpayWebhookAcksMalformedJSON(t *testing.T) {
	svc := &stubWebhookService{outcome: razorpaywebhook.Applied()}
	handler := RazorpayWebhook(svc, stubVerifier{valid: true}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(`{not json`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed") {
		t.Fatalf("expected failed disposition in body, got %s", rec.Body.String())
	}
	if len(svc.events) != 0 {
		t.Fatal("malformed event must not reach the service")
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}
