package get_occupied_slots

// Request модель запроса занятых мест
type Request struct {
	Location string
	Date     string // YYYY-MM-DD
}

// Response занятые места, сгруппированные по локации
// Для одной локации карта содержит один ключ, даже если мест нет
type Response struct {
	Slots map[string][]string
}
