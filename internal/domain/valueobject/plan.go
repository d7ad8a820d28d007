package valueobject

import (
	"strings"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

func NewPlan(plan string) (Plan, error) {
	p := Plan(strings.ToUpper(strings.TrimSpace(plan)))
	if p != PlanFree && p != PlanPro {
		return "", apperror.New(apperror.ErrCodeValidation, "тариф должен быть FREE или PRO")
	}
	return p, nil
}

// PlanForSubscriptionStatus: только active и trialing дают PRO.
func PlanForSubscriptionStatus(status string) Plan {
	switch status {
	case "active", "trialing":
		return PlanPro
	}
	return PlanFree
}

type VerificationStatus string

const (
	VerificationDraft    VerificationStatus = "DRAFT"
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
)

func NewVerificationStatus(status string) (VerificationStatus, error) {
	s := VerificationStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch s {
	case VerificationDraft, VerificationPending, VerificationVerified:
		return s, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус верификации")
}

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
)

func NewDisputeStatus(status string) (DisputeStatus, error) {
	s := DisputeStatus(strings.ToUpper(strings.TrimSpace(status)))
	if s != DisputeStatusOpen && s != DisputeStatusResolved {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус спора")
	}
	return s, nil
}
