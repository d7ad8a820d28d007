package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"
	ErrCodeGatewayError    ErrorCode = "PAYMENT_GATEWAY_ERROR"

	// Коды бронирований. Значения отдаются клиенту как есть.
	ErrCodeInvalidTransition       ErrorCode = "INVALID_TRANSITION"
	ErrCodeAlreadyActive           ErrorCode = "already_active"
	ErrCodeCooldown                ErrorCode = "cooldown_24h"
	ErrCodeWebhookSignatureInvalid ErrorCode = "WEBHOOK_SIGNATURE_INVALID"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с переиспользуемыми значениями.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// InvalidTransition возвращает ошибку с указанием запрещённой пары статусов.
func InvalidTransition(from, to string) *AppError {
	return New(ErrCodeInvalidTransition, fmt.Sprintf("переход статуса %s -> %s запрещён", from, to))
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeWebhookSignatureInvalid:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidTransition, ErrCodeAlreadyActive, ErrCodeCooldown:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeGatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsInvalidTransition(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTransition
}

func IsDuplicateActiveBooking(err error) bool {
	return CodeOf(err) == ErrCodeAlreadyActive
}

func IsCooldown(err error) bool {
	return CodeOf(err) == ErrCodeCooldown
}

var (
	ErrBookingNotFound       = New(ErrCodeNotFound, "бронирование не найдено")
	ErrProfileNotFound       = New(ErrCodeNotFound, "профиль не найден")
	ErrDisputeNotFound       = New(ErrCodeNotFound, "спор не найден")
	ErrAvailabilityNotFound  = New(ErrCodeNotFound, "период доступности не найден")
	ErrUserNotFound          = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized          = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden             = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials    = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrDuplicateActive       = New(ErrCodeAlreadyActive, "у вас уже есть активная заявка к этой акушерке")
	ErrRequestCooldown       = New(ErrCodeCooldown, "повторная заявка возможна не раньше чем через 24 часа")
	ErrWebhookSignature      = New(ErrCodeWebhookSignatureInvalid, "подпись webhook невалидна")
	ErrBookingNotPayable     = New(ErrCodeConflict, "оплатить можно только подтверждённое бронирование")
	ErrDisputeAlreadyOpen    = New(ErrCodeConflict, "по этому бронированию уже открыт спор")
	ErrPaymentGatewayMissing = New(ErrCodeGatewayError, "платёжный шлюз не настроен")
)
