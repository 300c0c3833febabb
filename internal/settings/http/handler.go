package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-backend/internal/pkg/response"
	"travel-booking-backend/internal/settings"
)

type Handler struct {
	service settings.Service
}

func NewHandler(service settings.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	s := h.service.Get(c.Request.Context())
	c.JSON(http.StatusOK, NewSettingsResponse(s))
}

func (h *Handler) Update(c *gin.Context) {
	var body UpdateSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := settings.AdminSettings{
		BookingLeadTimeDays:      body.BookingLeadTimeDays,
		CancellationDeadlineDays: body.CancellationDeadlineDays,
		TripReminderDays:         body.TripReminderDays,
		MaxDiscountDurationDays:  body.MaxDiscountDurationDays,
		NotificationExpiryDays:   body.NotificationExpiryDays,
	}

	if err := h.service.Update(c.Request.Context(), s); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSettingsResponse(s))
}
