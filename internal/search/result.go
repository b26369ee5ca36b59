package search

// Result is one ranked candidate as returned to callers.
type Result struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	RawScore          float64  `json:"raw_score"`
	FinalScore        float64  `json:"final_score"`
	Sites             []string `json:"sites"`
	ProfessionalTitle string   `json:"professional_title"`
	PostgraduateTitle string   `json:"postgraduate_title"`
	Summary           string   `json:"summary"`
	Bonuses           []string `json:"bonuses"`
}

// Page is the response to one search request. Results is never nil.
type Page struct {
	Mode     string   `json:"mode"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Results  []Result `json:"results"`
}
