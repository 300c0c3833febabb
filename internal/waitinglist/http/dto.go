package http

import (
	"time"

	"travel-booking-backend/internal/waitinglist"
)

type EntryResponse struct {
	ID         int64      `json:"id"`
	TripID     int64      `json:"trip_id"`
	UserID     string     `json:"user_id"`
	JoinedAt   time.Time  `json:"joined_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

func NewEntryResponse(e *waitinglist.Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		TripID:     e.TripID,
		UserID:     e.UserID,
		JoinedAt:   e.JoinedAt,
		NotifiedAt: e.NotifiedAt,
	}
}

type StatusResponse struct {
	Position   int        `json:"position"`
	QueueSize  int        `json:"queue_size"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}
