package model

// Product is one row of the reference catalogue. Dimensions and Weight are
// the raw catalogue strings (e.g. "10 x 8 x 4 inches", "1.5 pounds"); "N/A"
// or empty means unknown.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	About      string `json:"about"`
	Dimensions string `json:"dimensions"`
	Weight     string `json:"weight"`
}

// SearchableText concatenates the fields keyword search matches against.
func (p Product) SearchableText() string {
	return p.Name + " " + p.Category + " " + p.About
}

// Neighbor is one nearest-neighbor hit from the vector index. Similarity is
// derived downstream as 1 - Distance.
type Neighbor struct {
	ProductID string
	Distance  float64
}

// SearchResult is a ranked product match, constructed per query and never
// persisted. Similarity is the base score in [0,1]; HybridScore adds lexical
// boosts on top of it after semantic retrieval.
type SearchResult struct {
	ID          string
	Name        string
	Dimensions  string
	Weight      string
	Category    string
	Similarity  float64
	HybridScore float64
}
