package models

// RecommendedPaper is a bibliographic record returned by the literature
// search. Authors is a single display string; Year is a 4-digit string or
// empty; Abstract is truncated to 200 bytes with a "..." marker.
// Duplicates across searches are tolerated.
type RecommendedPaper struct {
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	Publication string `json:"publication"`
	Year        string `json:"year"`
	URL         string `json:"url"`
	Abstract    string `json:"abstract"`
}
