package settings

// AdminSettings holds the tunable booking policy values. A single row backs
// them in the database; Defaults() is the fallback when that row is missing.
type AdminSettings struct {
	BookingLeadTimeDays      int
	CancellationDeadlineDays int
	TripReminderDays         int
	MaxDiscountDurationDays  int
	NotificationExpiryDays   int
}

// Defaults returns the policy values used until an admin changes them.
func Defaults() AdminSettings {
	return AdminSettings{
		BookingLeadTimeDays:      7,
		CancellationDeadlineDays: 5,
		TripReminderDays:         5,
		MaxDiscountDurationDays:  7,
		NotificationExpiryDays:   3,
	}
}
