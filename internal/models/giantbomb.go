package models

// GiantBombSearchResponse represents the GiantBomb /api/search/ JSON response
type GiantBombSearchResponse struct {
	Error                string `json:"error"`
	StatusCode           int    `json:"status_code"`
	NumberOfTotalResults int    `json:"number_of_total_results"`
	Results              []struct {
		Name string `json:"name"`
		// Format: "YYYY-MM-DD HH:MM:SS", may be null for unreleased titles
		OriginalReleaseDate string `json:"original_release_date"`
	} `json:"results"`
}
