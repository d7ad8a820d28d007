package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/booking"
)

type CalendarHandler struct {
	feedUC *booking.CalendarFeedUseCase
}

func NewCalendarHandler(feedUC *booking.CalendarFeedUseCase) *CalendarHandler {
	return &CalendarHandler{feedUC: feedUC}
}

// Feed обрабатывает GET /api/calendar/:token (с суффиксом .ics или без него).
func (h *CalendarHandler) Feed(c *gin.Context) {
	token := strings.TrimSuffix(c.Param("token"), ".ics")
	if token == "" {
		response.NotFound(c, "календарь не найден")
		return
	}

	body, err := h.feedUC.Execute(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", `inline; filename="hebammen.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}
