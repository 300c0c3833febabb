package http

import (
	"travel-booking-backend/internal/settings"
)

type UpdateSettingsRequest struct {
	BookingLeadTimeDays      int `json:"booking_lead_time_days" binding:"required,min=1"`
	CancellationDeadlineDays int `json:"cancellation_deadline_days" binding:"required,min=1"`
	TripReminderDays         int `json:"trip_reminder_days" binding:"required,min=1"`
	MaxDiscountDurationDays  int `json:"max_discount_duration_days" binding:"required,min=1"`
	NotificationExpiryDays   int `json:"notification_expiry_days" binding:"required,min=1"`
}

type SettingsResponse struct {
	BookingLeadTimeDays      int `json:"booking_lead_time_days"`
	CancellationDeadlineDays int `json:"cancellation_deadline_days"`
	TripReminderDays         int `json:"trip_reminder_days"`
	MaxDiscountDurationDays  int `json:"max_discount_duration_days"`
	NotificationExpiryDays   int `json:"notification_expiry_days"`
}

func NewSettingsResponse(s settings.AdminSettings) SettingsResponse {
	return SettingsResponse{
		BookingLeadTimeDays:      s.BookingLeadTimeDays,
		CancellationDeadlineDays: s.CancellationDeadlineDays,
		TripReminderDays:         s.TripReminderDays,
		MaxDiscountDurationDays:  s.MaxDiscountDurationDays,
		NotificationExpiryDays:   s.NotificationExpiryDays,
	}
}
