package billing

import (
	"context"
	"strings"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

type StartSubscriptionUseCase struct {
	profileRepo repository.ProfileRepository
	gateway     repository.PaymentGateway
	prices      map[string]string
	baseURL     string
}

func NewStartSubscriptionUseCase(
	profileRepo repository.ProfileRepository,
	gateway repository.PaymentGateway,
	monthPriceID, yearPriceID, baseURL string,
) *StartSubscriptionUseCase {
	return &StartSubscriptionUseCase{
		profileRepo: profileRepo,
		gateway:     gateway,
		prices: map[string]string{
			IntervalMonth: monthPriceID,
			IntervalYear:  yearPriceID,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Execute открывает checkout-сессию подписки PRO для акушерки.
func (uc *StartSubscriptionUseCase) Execute(ctx context.Context, actor valueobject.Actor, interval string) (*repository.CheckoutSession, error) {
	if uc.gateway == nil {
		return nil, apperror.ErrPaymentGatewayMissing
	}
	if actor.Role != valueobject.RoleMidwife {
		return nil, apperror.New(apperror.ErrCodeForbidden, "подписка доступна только акушеркам")
	}

	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		interval = IntervalMonth
	}
	priceID := uc.prices[interval]
	if priceID == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный период подписки")
	}

	profile, err := uc.profileRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	req := repository.CheckoutRequest{
		Mode:       repository.CheckoutModeSubscription,
		ClientRef:  actor.ID.String(),
		PriceID:    priceID,
		Metadata:   map[string]string{"user_id": actor.ID.String()},
		SuccessURL: uc.baseURL + "/dashboard/billing?success=1",
		CancelURL:  uc.baseURL + "/dashboard/billing?canceled=1",
	}
	if profile.StripeCustomerID != nil {
		req.CustomerID = *profile.StripeCustomerID
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeGatewayError, "не удалось создать сессию подписки")
	}
	return session, nil
}

type OpenPortalUseCase struct {
	profileRepo repository.ProfileRepository
	gateway     repository.PaymentGateway
	baseURL     string
}

func NewOpenPortalUseCase(profileRepo repository.ProfileRepository, gateway repository.PaymentGateway, baseURL string) *OpenPortalUseCase {
	return &OpenPortalUseCase{
		profileRepo: profileRepo,
		gateway:     gateway,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

func (uc *OpenPortalUseCase) Execute(ctx context.Context, actor valueobject.Actor) (string, error) {
	if uc.gateway == nil {
		return "", apperror.ErrPaymentGatewayMissing
	}

	profile, err := uc.profileRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return "", err
	}
	if profile.StripeCustomerID == nil || *profile.StripeCustomerID == "" {
		return "", apperror.New(apperror.ErrCodeConflict, "платёжный аккаунт ещё не создан")
	}

	url, err := uc.gateway.CreatePortalSession(ctx, *profile.StripeCustomerID, uc.baseURL+"/dashboard/billing")
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeGatewayError, "не удалось открыть портал оплаты")
	}
	return url, nil
}

type GetSubscriptionUseCase struct {
	subRepo repository.SubscriptionRepository
}

func NewGetSubscriptionUseCase(subRepo repository.SubscriptionRepository) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{subRepo: subRepo}
}

// Execute возвращает nil без ошибки, если подписки ещё нет.
func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, actor valueobject.Actor) (*entity.Subscription, error) {
	sub, err := uc.subRepo.FindByUser(ctx, actor.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
