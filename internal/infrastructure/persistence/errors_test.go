package persistence

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperror.ErrorCode
	}{
		{"active pair", &pq.Error{Code: "23505", Constraint: "bookings_active_pair_uniq"}, apperror.ErrCodeAlreadyActive},
		{"open dispute", &pq.Error{Code: "23505", Constraint: "disputes_open_booking_uniq"}, apperror.ErrCodeConflict},
		{"other unique", &pq.Error{Code: "23505", Constraint: "users_email_key"}, apperror.ErrCodeConflict},
		{"cooldown trigger", &pq.Error{Code: "P0001", Message: "too_many_requests_24h"}, apperror.ErrCodeCooldown},
		{"other raise", &pq.Error{Code: "P0001", Message: "something else"}, apperror.ErrCodeDatabaseError},
		{"check", &pq.Error{Code: "23514", Constraint: "bookings_paid_at_check"}, apperror.ErrCodeValidation},
		{"plain", errors.New("connection reset"), apperror.ErrCodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, apperror.CodeOf(mapDBError(tt.err, "ошибка")))
		})
	}

	assert.NoError(t, mapDBError(nil, "ошибка"))
}

func TestMapDBError_DoesNotLeakDriverText(t *testing.T) {
	err := mapDBError(&pq.Error{Code: "23505", Constraint: "bookings_active_pair_uniq", Detail: "Key (client_id, midwife_id)"}, "ошибка")
	assert.NotContains(t, err.Error(), "client_id")
}

func TestNotFoundOr(t *testing.T) {
	assert.Equal(t, apperror.ErrBookingNotFound, notFoundOr(sql.ErrNoRows, apperror.ErrBookingNotFound, "x"))
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(notFoundOr(errors.New("boom"), apperror.ErrBookingNotFound, "x")))
}
