package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/infrastructure/payment"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const maxWebhookBody = 1 << 20

// WebhookProcessor применяет проверенное платёжное событие.
type WebhookProcessor interface {
	Execute(ctx context.Context, evt *entity.PaymentEvent) error
}

type WebhookHandler struct {
	processor WebhookProcessor
	secret    string
	tolerance time.Duration
}

func NewWebhookHandler(processor WebhookProcessor, secret string, tolerance time.Duration) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    secret,
		tolerance: tolerance,
	}
}

// Stripe обрабатывает POST /api/webhooks/stripe.
// После проверки подписи ответ всегда 200: ошибки обработки только логируются.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "не удалось прочитать тело запроса")
		return
	}

	header := c.GetHeader("Stripe-Signature")
	if err := payment.VerifySignature(payload, header, h.secret, h.tolerance); err != nil {
		logger.WithFields(logrus.Fields{
			"ip":         c.ClientIP(),
			"has_header": header != "",
			"error":      err.Error(),
		}).Warn("webhook: подпись не прошла проверку")
		response.Error(c, apperror.ErrWebhookSignature)
		return
	}

	evt, err := payment.ParseEvent(payload)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err.Error()}).Error("webhook: не удалось разобрать событие")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	entry := logger.WithFields(logrus.Fields{"event_id": evt.ID, "type": evt.Type})
	if err := h.processor.Execute(c.Request.Context(), evt); err != nil {
		entry.WithField("error", err.Error()).Error("webhook: ошибка обработки события")
	} else {
		entry.Info("webhook: событие обработано")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
