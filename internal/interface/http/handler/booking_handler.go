package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/dto"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/booking"
)

type BookingHandler struct {
	createUC   *booking.CreateBookingUseCase
	updateUC   *booking.UpdateBookingStatusUseCase
	getUC      *booking.GetBookingUseCase
	listUC     *booking.ListBookingsUseCase
	statsUC    *booking.GetStatsUseCase
	contactUC  *booking.GetContactUseCase
	checkoutUC *booking.CreateCheckoutUseCase
}

func NewBookingHandler(
	createUC *booking.CreateBookingUseCase,
	updateUC *booking.UpdateBookingStatusUseCase,
	getUC *booking.GetBookingUseCase,
	listUC *booking.ListBookingsUseCase,
	statsUC *booking.GetStatsUseCase,
	contactUC *booking.GetContactUseCase,
	checkoutUC *booking.CreateCheckoutUseCase,
) *BookingHandler {
	return &BookingHandler{
		createUC:   createUC,
		updateUC:   updateUC,
		getUC:      getUC,
		listUC:     listUC,
		statsUC:    statsUC,
		contactUC:  contactUC,
		checkoutUC: checkoutUC,
	}
}

// CreateBooking обрабатывает POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "midwife_id обязателен")
		return
	}
	midwifeID, err := uuid.Parse(req.MidwifeID)
	if err != nil {
		response.BadRequest(c, "некорректный ID акушерки")
		return
	}

	b, err := h.createUC.Execute(c.Request.Context(), actor, midwifeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateBookingResponse{ID: b.ID})
}

// UpdateStatus обрабатывает PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bookingID, ok := parseUUIDParam(c, "id", "некорректный ID бронирования")
	if !ok {
		return
	}

	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status обязателен")
		return
	}

	b, err := h.updateUC.Execute(c.Request.Context(), actor, booking.UpdateStatusInput{
		BookingID: bookingID,
		Status:    req.Status,
		Note:      req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookingResponse(b))
}

// GetBooking обрабатывает GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bookingID, ok := parseUUIDParam(c, "id", "некорректный ID бронирования")
	if !ok {
		return
	}

	b, err := h.getUC.Execute(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookingResponse(b))
}

// ListBookings обрабатывает GET /api/bookings?status=&limit=&offset=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	limit, offset := getPagination(c)

	items, total, err := h.listUC.Execute(c.Request.Context(), actor, booking.ListBookingsInput{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToBookingResponses(items), total, limit, offset)
}

// Stats обрабатывает GET /api/bookings/stats.
func (h *BookingHandler) Stats(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	stats, err := h.statsUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToStatsResponse(stats))
}

// Contact обрабатывает GET /api/bookings/:id/contact.
func (h *BookingHandler) Contact(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bookingID, ok := parseUUIDParam(c, "id", "некорректный ID бронирования")
	if !ok {
		return
	}

	contact, err := h.contactUC.Execute(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.Success(c, dto.ToContactResponse(contact))
}

// Checkout обрабатывает POST /api/bookings/:id/checkout.
func (h *BookingHandler) Checkout(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bookingID, ok := parseUUIDParam(c, "id", "некорректный ID бронирования")
	if !ok {
		return
	}

	session, err := h.checkoutUC.Execute(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}
