package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/dto"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/admin"
)

type AdminHandler struct {
	overviewUC *admin.GetOverviewUseCase
}

func NewAdminHandler(overviewUC *admin.GetOverviewUseCase) *AdminHandler {
	return &AdminHandler{overviewUC: overviewUC}
}

// Overview обрабатывает GET /api/admin/overview.
func (h *AdminHandler) Overview(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	overview, err := h.overviewUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOverviewResponse(overview))
}
