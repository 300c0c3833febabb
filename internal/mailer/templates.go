package mailer

import (
	"fmt"
	"time"
)

// RoomAvailable is the notice sent to the head of a trip's waiting list when
// a room frees up. The expiry deadline is included because the reservation
// window lapses if the recipient does nothing.
func RoomAvailable(tripTitle string, expiryDays int) (subject, body string) {
	subject = fmt.Sprintf("A room is available for %s", tripTitle)
	body = fmt.Sprintf(
		"Good news! A room has become available for %s.\n\n"+
			"You are first in the waiting list, so you can now complete your booking. "+
			"Your spot is held for %d days; after that it passes to the next person in line.\n",
		tripTitle, expiryDays)
	return subject, body
}

// PaymentConfirmation is sent after a successful charge.
func PaymentConfirmation(tripTitle string, amount float64, transactionID string) (subject, body string) {
	subject = fmt.Sprintf("Payment received for %s", tripTitle)
	body = fmt.Sprintf(
		"We have received your payment of %.2f for %s.\n\n"+
			"Transaction reference: %s\n\nHave a great trip!\n",
		amount, tripTitle, transactionID)
	return subject, body
}

// TripReminder is sent a few days before departure for paid bookings.
func TripReminder(tripTitle string, startDate time.Time) (subject, body string) {
	subject = fmt.Sprintf("Your trip %s is coming up", tripTitle)
	body = fmt.Sprintf(
		"This is a reminder that your trip %s departs on %s.\n\n"+
			"Please check your travel documents and arrive on time.\n",
		tripTitle, startDate.Format("Monday, 2 January 2006"))
	return subject, body
}
