package request

// ByIDRequest is a common struct for endpoints that take a numeric ID path parameter.
// Trips, bookings, reviews and waiting-list entries all use serial IDs.
type ByIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// ListParams holds common pagination query parameters.
type ListParams struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}
