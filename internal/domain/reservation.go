package domain

import "time"

// PaymentStatus payment state of a reservation
type PaymentStatus string

// PaymentStatusPaid is the only state: reservations are created already paid
const PaymentStatusPaid PaymentStatus = "Paid"

// Reservation is an immutable ledger entry recording one booking event
type Reservation struct {
	ID              int64
	UserIdentity    string
	Location        string
	ReservationDate time.Time
	TimeLabel       string // free text, not validated against a clock format
	SlotID          string
	PaymentStatus   PaymentStatus
	BookedAt        time.Time
}

// ActiveSince returns the lower bound of booked_at for active reservations
// A reservation booked exactly at the bound is still active
func ActiveSince(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}
