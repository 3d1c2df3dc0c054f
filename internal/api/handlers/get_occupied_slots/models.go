package get_occupied_slots

// OccupiedSlotsRequest HTTP request model
type OccupiedSlotsRequest struct {
	Location string `json:"location"`
	Date     string `json:"date"`
}

// SlotsResponse HTTP response model: location -> slot ids
type SlotsResponse struct {
	Slots map[string][]string `json:"slots"`
}
