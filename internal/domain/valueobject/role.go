package valueobject

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleMidwife Role = "MIDWIFE"
	RoleAdmin   Role = "ADMIN"

	// RolePaymentHandler никогда не выдаётся пользователю: им действует только обработчик платежей.
	RolePaymentHandler Role = "PAYMENT_HANDLER"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleMidwife, RoleAdmin:
		return true
	}
	return false
}

func NewRole(role string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(role)))
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "роль должна быть CLIENT, MIDWIFE или ADMIN")
	}
	return r, nil
}

// Actor описывает аутентифицированного участника операции.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func NewActor(id uuid.UUID, role string) (Actor, error) {
	if id == uuid.Nil {
		return Actor{}, apperror.ErrUnauthorized
	}
	r, err := NewRole(role)
	if err != nil {
		return Actor{}, apperror.New(apperror.ErrCodeForbidden, "неизвестная роль пользователя")
	}
	return Actor{ID: id, Role: r}, nil
}

// PaymentHandlerActor используется при обработке подтверждённых платёжных событий.
func PaymentHandlerActor() Actor {
	return Actor{ID: uuid.Nil, Role: RolePaymentHandler}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
