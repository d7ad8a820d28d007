package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/dto"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/dispute"
)

type DisputeHandler struct {
	openUC    *dispute.OpenDisputeUseCase
	listMyUC  *dispute.ListMyDisputesUseCase
	listAllUC *dispute.ListDisputesUseCase
	resolveUC *dispute.ResolveDisputeUseCase
}

func NewDisputeHandler(
	openUC *dispute.OpenDisputeUseCase,
	listMyUC *dispute.ListMyDisputesUseCase,
	listAllUC *dispute.ListDisputesUseCase,
	resolveUC *dispute.ResolveDisputeUseCase,
) *DisputeHandler {
	return &DisputeHandler{openUC: openUC, listMyUC: listMyUC, listAllUC: listAllUC, resolveUC: resolveUC}
}

// Open обрабатывает POST /api/bookings/:id/disputes.
func (h *DisputeHandler) Open(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bookingID, ok := parseUUIDParam(c, "id", "некорректный ID бронирования")
	if !ok {
		return
	}

	var req dto.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "укажите причину спора")
		return
	}

	d, err := h.openUC.Execute(c.Request.Context(), actor, bookingID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToDisputeResponse(d))
}

// ListMine обрабатывает GET /api/disputes.
func (h *DisputeHandler) ListMine(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	items, err := h.listMyUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponses(items))
}

// ListAll обрабатывает GET /api/admin/disputes?status=.
func (h *DisputeHandler) ListAll(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	limit, offset := getPagination(c)

	items, err := h.listAllUC.Execute(c.Request.Context(), actor, c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponses(items))
}

// Resolve обрабатывает POST /api/admin/disputes/:id/resolve.
func (h *DisputeHandler) Resolve(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "некорректный ID спора")
	if !ok {
		return
	}

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "укажите решение по спору")
		return
	}

	d, err := h.resolveUC.Execute(c.Request.Context(), actor, id, req.Resolution)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponse(d))
}
