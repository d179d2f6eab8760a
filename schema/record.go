package schema

// Record is one catalog listing scraped from a results page.
// Seeds and Leech keep the page's display text.
type Record struct {
	Link       string   `json:"link"`
	Name       string   `json:"name"`
	Size       string   `json:"size"`
	Seeds      string   `json:"seeds"`
	Leech      string   `json:"leech"`
	EngineURL  string   `json:"engine_url"`
	DescLink   string   `json:"desc_link,omitempty"`
	Extra      []string `json:"extra"`
	Similarity float32  `json:"similarity,omitempty"`
}

// NewRecord returns the empty draft a listing starts from.
func NewRecord(engineURL string) Record {
	return Record{
		Seeds:     "0",
		Leech:     "0",
		EngineURL: engineURL,
		Extra:     []string{},
	}
}
