package persistence

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
	pqRaiseException  = "P0001"

	constraintActivePair  = "bookings_active_pair_uniq"
	constraintOpenDispute = "disputes_open_booking_uniq"
	cooldownMessage       = "too_many_requests_24h"
)

// mapDBError переводит ошибки PostgreSQL в ошибки приложения.
// Нарушения инвариантов бронирования становятся ожидаемыми 409, остальное становится DATABASE_ERROR.
func mapDBError(err error, message string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			switch pqErr.Constraint {
			case constraintActivePair:
				return apperror.ErrDuplicateActive
			case constraintOpenDispute:
				return apperror.ErrDisputeAlreadyOpen
			}
			return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует")
		case pqRaiseException:
			if strings.Contains(pqErr.Message, cooldownMessage) {
				return apperror.ErrRequestCooldown
			}
		case pqCheckViolation:
			return apperror.Wrap(err, apperror.ErrCodeValidation, "данные нарушают ограничения")
		}
	}

	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// notFoundOr возвращает notFound для sql.ErrNoRows и обёрнутую ошибку иначе.
func notFoundOr(err error, notFound error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return mapDBError(err, message)
}
