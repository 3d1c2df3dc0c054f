package domain

import "time"

// Slot represents a declared parking slot in the registry
// Occupied is a sticky flag: it is set by a booking and is not cleared
// by the resolver, only by the optional registry sweeper
type Slot struct {
	ID        int64
	SlotID    string
	Location  string
	Occupied  bool
	CreatedAt time.Time
}

// SlotKey identifies a slot inside a location
type SlotKey struct {
	SlotID   string
	Location string
}

// GroupSlotIDsByLocation groups slots by location preserving input order
func GroupSlotIDsByLocation(slots []*Slot) map[string][]string {
	grouped := make(map[string][]string)
	for _, s := range slots {
		grouped[s.Location] = append(grouped[s.Location], s.SlotID)
	}
	return grouped
}
