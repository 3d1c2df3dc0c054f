package domain

import "time"

// Default configuration values
const (
	DefaultCapacity          = 40
	DefaultActiveWindow      = time.Hour
	DefaultLockTimeout       = 5 * time.Second
	DefaultCapacityMode      = CapacityModeFixed
	DefaultSweepInterval     = time.Minute
	DefaultAvailabilityCache = 10 * time.Second
)

// Input validation limits
const (
	MaxSlotIDLength       = 64
	MaxLocationLength     = 128
	MaxUserIdentityLength = 255
	MaxTimeLabelLength    = 32
)

// DateFormat reservation date format (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// BookedAtFormat format of booked_on in ticket listings
const BookedAtFormat = "2006-01-02 15:04:05"
