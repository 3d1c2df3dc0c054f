package domain

// CapacityMode defines how total capacity of a location is derived
type CapacityMode string

const (
	// CapacityModeFixed every location has the same configured capacity
	CapacityModeFixed CapacityMode = "fixed"
	// CapacityModeRegistry capacity equals the number of registry rows of the location
	CapacityModeRegistry CapacityMode = "registry"
)

// IsValid reports whether the mode is known
func (m CapacityMode) IsValid() bool {
	return m == CapacityModeFixed || m == CapacityModeRegistry
}

// LocationAvailability availability of one parking location
type LocationAvailability struct {
	Location  string
	Capacity  int
	Occupied  int
	Available int
}

// NewLocationAvailability computes availability clamped at zero
func NewLocationAvailability(location string, capacity, occupied int) LocationAvailability {
	available := capacity - occupied
	if available < 0 {
		available = 0
	}
	return LocationAvailability{
		Location:  location,
		Capacity:  capacity,
		Occupied:  occupied,
		Available: available,
	}
}

// LocationStats registry counters of one location
type LocationStats struct {
	Location string
	Total    int
	Occupied int
}
