package scholar

import "strconv"

// Reshaping of raw upstream payloads into cleaned envelopes. Upstream fields
// are polymorphic (language may be an object or a string, ids numeric or
// string), so raw responses are handled as generic maps with defensive
// accessors rather than rigid structs.

func cleanWorks(raw map[string]any) Envelope[Work] {
	results := listAt(raw, "results")
	cleaned := make([]Work, 0, len(results))
	for _, item := range results {
		w := Work{
			ID:          item["id"],
			Title:       stringAt(item, "title"),
			Abstract:    stringAt(item, "abstract"),
			Authors:     authorNames(listAt(item, "authors")),
			DownloadURL: item["downloadUrl"],
			Language:    nameOrString(item["language"]),
			Publisher:   stringAt(item, "publisher"),
			Subjects:    subjectNames(item["subjects"]),
			Type:        documentType(item["documentType"]),
		}
		w.PublicationYear = item["year"]
		w.DOI = firstDOI(item)
		cleaned = append(cleaned, w)
	}
	total := intAt(raw, "totalHits")
	return Envelope[Work]{
		Results:    cleaned,
		TotalCount: total,
		Page:       pageOrDefault(raw),
		PageSize:   len(cleaned),
		TotalPages: ceilPages(total),
	}
}

func cleanJournals(raw map[string]any) Envelope[Journal] {
	results := listAt(raw, "results")
	cleaned := make([]Journal, 0, len(results))
	for _, item := range results {
		j := Journal{
			ID:        item["id"],
			Title:     stringAt(item, "title"),
			Publisher: stringAt(item, "publisher"),
			ISSN:      []string{},
			Subjects:  subjectNames(item["subjects"]),
			Language:  nameOrString(item["language"]),
			Country:   stringAt(item, "country"),
			URL:       stringAt(item, "url"),
		}
		if ids, ok := item["identifiers"].(map[string]any); ok {
			if issn, ok := ids["issn"].([]any); ok {
				for _, v := range issn {
					if s, ok := v.(string); ok {
						j.ISSN = append(j.ISSN, s)
					}
				}
			}
		}
		cleaned = append(cleaned, j)
	}
	total := intAt(raw, "totalHits")
	return Envelope[Journal]{
		Results:    cleaned,
		TotalCount: total,
		Page:       pageOrDefault(raw),
		PageSize:   len(cleaned),
		TotalPages: ceilPages(total),
	}
}

func cleanDatasets(raw map[string]any) Envelope[Dataset] {
	results := listAt(raw, "results")
	cleaned := make([]Dataset, 0, len(results))
	for _, item := range results {
		d := Dataset{
			ID:              item["id"],
			Title:           item["title"],
			Abstract:        item["abstract"],
			Authors:         []Author{},
			PublicationDate: item["publication_date"],
			DOI:             item["doi"],
			Concepts:        []ConceptScore{},
		}
		for _, a := range listAt(item, "authorships") {
			author, ok := a["author"].(map[string]any)
			if !ok {
				continue
			}
			name := stringAt(author, "display_name")
			if name == "" {
				continue
			}
			d.Authors = append(d.Authors, Author{Name: name, ID: stringAt(author, "id")})
		}
		if loc, ok := item["primary_location"].(map[string]any); ok {
			d.URL = loc["landing_page_url"]
		}
		concepts := listAt(item, "concepts")
		if len(concepts) > 5 {
			concepts = concepts[:5]
		}
		for _, con := range concepts {
			d.Concepts = append(d.Concepts, ConceptScore{
				Name:  stringAt(con, "display_name"),
				Score: con["score"],
			})
		}
		cleaned = append(cleaned, d)
	}
	meta, _ := raw["meta"].(map[string]any)
	total := intAt(meta, "count")
	return Envelope[Dataset]{
		Results:    cleaned,
		TotalCount: total,
		Page:       intOrDefault(meta, "page", 1),
		PageSize:   len(cleaned),
		TotalPages: ceilPages(total),
	}
}

func cleanConcepts(raw map[string]any) []Concept {
	results := listAt(raw, "results")
	cleaned := make([]Concept, 0, len(results))
	for _, item := range results {
		cleaned = append(cleaned, Concept{
			ID:          item["id"],
			DisplayName: item["display_name"],
			Level:       item["level"],
			WikidataID:  item["wikidata"],
		})
	}
	return cleaned
}

func ceilPages(total int) int {
	return (total + PageSize - 1) / PageSize
}

func authorNames(list []map[string]any) []Author {
	out := make([]Author, 0, len(list))
	for _, a := range list {
		out = append(out, Author{Name: stringAt(a, "name")})
	}
	return out
}

func subjectNames(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, s := range list {
		if m, ok := s.(map[string]any); ok {
			out = append(out, stringAt(m, "name"))
		}
	}
	return out
}

// nameOrString handles fields that arrive as either {"name": ...} or a bare
// string.
func nameOrString(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return stringAt(t, "name")
	case string:
		return t
	}
	return ""
}

func documentType(v any) string {
	switch t := v.(type) {
	case map[string]any:
		if name := stringAt(t, "name"); name != "" {
			return name
		}
		return "Unknown"
	case string:
		return t
	}
	return "Unknown"
}

func firstDOI(item map[string]any) *string {
	ids, ok := item["identifiers"].(map[string]any)
	if !ok {
		return nil
	}
	dois, ok := ids["doi"].([]any)
	if !ok || len(dois) == 0 {
		return nil
	}
	if s, ok := dois[0].(string); ok {
		return &s
	}
	return nil
}

func listAt(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if item, ok := v.(map[string]any); ok {
			out = append(out, item)
		}
	}
	return out
}

func stringAt(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intAt(m map[string]any, key string) int {
	return intOrDefault(m, key, 0)
}

func intOrDefault(m map[string]any, key string, fallback int) int {
	if m == nil {
		return fallback
	}
	switch t := m[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		// OpenAlex meta.page is sometimes a string.
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
		return fallback
	}
	return fallback
}

func pageOrDefault(raw map[string]any) int {
	return intOrDefault(raw, "page", 1)
}
