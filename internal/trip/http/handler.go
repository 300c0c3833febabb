package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-backend/internal/auth"
	"travel-booking-backend/internal/pkg/request"
	"travel-booking-backend/internal/pkg/response"
	"travel-booking-backend/internal/trip"
)

type Handler struct {
	service trip.Service
}

func NewHandler(service trip.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListTripsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := trip.Filter{
		Country:     req.Country,
		PackageType: req.PackageType,
		VisibleOnly: !auth.IsAdmin(c),
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	trips, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TripResponse, len(trips))
	for i, t := range trips {
		items[i] = NewTripResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !t.IsVisible && !auth.IsAdmin(c) {
		response.Error(c, trip.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, NewTripResponse(t))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateTripRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	visible := true
	if body.IsVisible != nil {
		visible = *body.IsVisible
	}

	t, err := h.service.Create(c.Request.Context(), trip.CreateRequest{
		Title:            body.Title,
		Destination:      body.Destination,
		Country:          body.Country,
		StartDate:        body.StartDate,
		EndDate:          body.EndDate,
		Capacity:         body.Capacity,
		Price:            body.Price,
		PackageType:      body.PackageType,
		AgeLimit:         body.AgeLimit,
		ShortDescription: body.ShortDescription,
		IsVisible:        visible,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewTripResponse(t))
}

func (h *Handler) Update(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateTripRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.service.Update(c.Request.Context(), req.ID, trip.UpdateRequest{
		Title:            body.Title,
		Destination:      body.Destination,
		Country:          body.Country,
		StartDate:        body.StartDate,
		EndDate:          body.EndDate,
		Price:            body.Price,
		PackageType:      body.PackageType,
		AgeLimit:         body.AgeLimit,
		ShortDescription: body.ShortDescription,
		PopularityScore:  body.PopularityScore,
		IsVisible:        body.IsVisible,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTripResponse(t))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ActivateDiscount(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body ActivateDiscountRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.service.ActivateDiscount(c.Request.Context(), req.ID, trip.DiscountRequest{
		NewPrice:   body.NewPrice,
		ExpiryDate: body.ExpiryDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTripResponse(t))
}

func (h *Handler) DeactivateDiscount(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	t, err := h.service.DeactivateDiscount(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTripResponse(t))
}

func (h *Handler) UploadImage(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	url, err := h.service.UploadImage(c.Request.Context(), req.ID, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
