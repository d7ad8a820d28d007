package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/dto"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/billing"
)

type BillingHandler struct {
	subscribeUC    *billing.StartSubscriptionUseCase
	portalUC       *billing.OpenPortalUseCase
	subscriptionUC *billing.GetSubscriptionUseCase
	setPlanUC      *billing.SetPlanUseCase
}

func NewBillingHandler(
	subscribeUC *billing.StartSubscriptionUseCase,
	portalUC *billing.OpenPortalUseCase,
	subscriptionUC *billing.GetSubscriptionUseCase,
	setPlanUC *billing.SetPlanUseCase,
) *BillingHandler {
	return &BillingHandler{
		subscribeUC:    subscribeUC,
		portalUC:       portalUC,
		subscriptionUC: subscriptionUC,
		setPlanUC:      setPlanUC,
	}
}

// Subscribe обрабатывает POST /api/billing/subscribe.
func (h *BillingHandler) Subscribe(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	// Пустое тело означает помесячную подписку
	_ = c.ShouldBindJSON(&req)

	session, err := h.subscribeUC.Execute(c.Request.Context(), actor, req.Interval)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

// Portal обрабатывает POST /api/billing/portal.
func (h *BillingHandler) Portal(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	url, err := h.portalUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.PortalResponse{URL: url})
}

// Subscription обрабатывает GET /api/billing/subscription.
func (h *BillingHandler) Subscription(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToSubscriptionResponse(sub))
}

// UpdatePlan обрабатывает POST /api/internal/update-plan. Доступ проверяет middleware.InternalSecret.
func (h *BillingHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "user_id и plan обязательны")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(c, "некорректный user_id")
		return
	}
	plan, err := valueobject.NewPlan(req.Plan)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.setPlanUC.Execute(c.Request.Context(), billing.SetPlanInput{
		UserID:     userID,
		Plan:       plan,
		CustomerID: req.CustomerID,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"user_id": userID, "plan": plan})
}
