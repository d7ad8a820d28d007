package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/infrastructure/payment"
)

const testWebhookSecret = "whsec_test"

type recordingProcessor struct {
	events []*entity.PaymentEvent
	err    error
}

func (p *recordingProcessor) Execute(ctx context.Context, evt *entity.PaymentEvent) error {
	p.events = append(p.events, evt)
	return p.err
}

var checkoutPayload = []byte(`{
	"id": "evt_1",
	"object": "event",
	"type": "checkout.session.completed",
	"created": 1760000000,
	"data": {"object": {
		"id": "cs_test_1",
		"object": "checkout.session",
		"mode": "payment",
		"payment_status": "paid",
		"amount_total": 19900,
		"currency": "eur",
		"metadata": {"booking_id": "b-1"}
	}}
}`)

func newWebhookRouter(processor WebhookProcessor) *gin.Engine {
	h := NewWebhookHandler(processor, testWebhookSecret, payment.DefaultTolerance)

	r := gin.New()
	r.POST("/api/webhooks/stripe", h.Stripe)
	return r
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_ValidSignatureIsProcessed(t *testing.T) {
	now := time.Now()
	processor := &recordingProcessor{}
	r := newWebhookRouter(processor)

	w := postWebhook(r, checkoutPayload, payment.SignatureHeader(checkoutPayload, testWebhookSecret, now))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	require.Len(t, processor.events, 1)
	assert.Equal(t, "evt_1", processor.events[0].ID)
	require.NotNil(t, processor.events[0].Checkout)
	assert.Equal(t, "cs_test_1", processor.events[0].Checkout.ID)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	now := time.Now()
	processor := &recordingProcessor{}
	r := newWebhookRouter(processor)

	cases := map[string]string{
		"missing header": "",
		"wrong secret":   payment.SignatureHeader(checkoutPayload, "whsec_other", now),
		"stale":          payment.SignatureHeader(checkoutPayload, testWebhookSecret, now.Add(-time.Hour)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := postWebhook(r, checkoutPayload, header)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "WEBHOOK_SIGNATURE_INVALID")
		})
	}
	assert.Empty(t, processor.events)
}

func TestWebhookHandler_ProcessingErrorStillAcknowledged(t *testing.T) {
	now := time.Now()
	processor := &recordingProcessor{err: errors.New("db down")}
	r := newWebhookRouter(processor)

	w := postWebhook(r, checkoutPayload, payment.SignatureHeader(checkoutPayload, testWebhookSecret, now))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, processor.events, 1)
}

func TestWebhookHandler_UnparsableEventAcknowledged(t *testing.T) {
	now := time.Now()
	processor := &recordingProcessor{}
	r := newWebhookRouter(processor)

	payload := []byte(`{"object":"event"}`)
	w := postWebhook(r, payload, payment.SignatureHeader(payload, testWebhookSecret, now))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, processor.events)
}
