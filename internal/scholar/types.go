package scholar

// Envelope is the normalized paginated response shape shared by every
// metadata search endpoint.
type Envelope[T any] struct {
	Results    []T `json:"results"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

type Author struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Work is a cleaned CORE search/works result.
type Work struct {
	ID              any      `json:"id"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Authors         []Author `json:"authors"`
	PublicationYear any      `json:"publication_year"`
	DOI             *string  `json:"doi"`
	DownloadURL     any      `json:"download_url"`
	Language        string   `json:"language"`
	Publisher       string   `json:"publisher"`
	Subjects        []string `json:"subjects"`
	Type            string   `json:"type"`
}

// Journal is a cleaned CORE search/journals result.
type Journal struct {
	ID        any      `json:"id"`
	Title     string   `json:"title"`
	Publisher string   `json:"publisher"`
	ISSN      []string `json:"issn"`
	Subjects  []string `json:"subjects"`
	Language  string   `json:"language"`
	Country   string   `json:"country"`
	URL       string   `json:"url"`
}

type ConceptScore struct {
	Name  string `json:"name"`
	Score any    `json:"score"`
}

// Dataset is a cleaned OpenAlex work of type dataset.
type Dataset struct {
	ID              any            `json:"id"`
	Title           any            `json:"title"`
	Abstract        any            `json:"abstract"`
	Authors         []Author       `json:"authors"`
	PublicationDate any            `json:"publication_date"`
	DOI             any            `json:"doi"`
	URL             any            `json:"url"`
	Concepts        []ConceptScore `json:"concepts"`
}

// Concept is a cleaned OpenAlex concept autocomplete result.
type Concept struct {
	ID          any `json:"id"`
	DisplayName any `json:"display_name"`
	Level       any `json:"level"`
	WikidataID  any `json:"wikidata_id"`
}

// HealthStatus reports reachability of both upstream metadata APIs.
type HealthStatus struct {
	Status  string         `json:"status"`
	Service string         `json:"service"`
	APIs    map[string]any `json:"apis"`
}
