package payment

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

// DefaultTolerance задаёт допустимое расхождение метки времени подписи.
const DefaultTolerance = webhook.DefaultTolerance

// VerifySignature проверяет заголовок Stripe-Signature средствами stripe-go.
// Нулевой tolerance отключает проверку возраста подписи.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if secret == "" || header == "" {
		return apperror.ErrWebhookSignature
	}

	var err error
	if tolerance > 0 {
		err = webhook.ValidatePayloadWithTolerance(payload, header, secret, tolerance)
	} else {
		err = webhook.ValidatePayloadIgnoringTolerance(payload, header, secret)
	}
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeWebhookSignatureInvalid, "подпись webhook невалидна")
	}
	return nil
}

// SignatureHeader собирает заголовок подписи; используется тестами и локальной отладкой webhook.
func SignatureHeader(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return "t=" + strconv.FormatInt(at.Unix(), 10) + ",v1=" + hex.EncodeToString(sig)
}
