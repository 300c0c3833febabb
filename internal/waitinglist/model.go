package waitinglist

import (
	"net/http"
	"time"

	"travel-booking-backend/internal/pkg/apperror"
)

var (
	ErrAlreadyQueued  = apperror.New(http.StatusConflict, "you are already on the waiting list for this trip")
	ErrRoomsAvailable = apperror.New(http.StatusConflict, "rooms are available, book directly instead of queueing")
	ErrNotQueued      = apperror.New(http.StatusNotFound, "you are not on the waiting list for this trip")
	ErrEntryNotFound  = apperror.New(http.StatusNotFound, "waiting list entry not found")
)

// Entry is one person's place in a trip's waiting list. Order is strictly
// first-come-first-served: JoinedAt ascending with ID as the tiebreak.
type Entry struct {
	ID         int64
	TripID     int64
	UserID     string
	JoinedAt   time.Time
	NotifiedAt *time.Time
}

// Notified reports whether this entry has received a room-available notice.
func (e *Entry) Notified() bool {
	return e.NotifiedAt != nil
}

// Status describes one user's place in a queue.
type Status struct {
	Position   int // 1-based; 1 means next in line
	QueueSize  int
	NotifiedAt *time.Time
}
