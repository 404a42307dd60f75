package scholar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestCleanWorks(t *testing.T) {
	raw := decodeRaw(t, `{
		"totalHits": 60,
		"page": 2,
		"results": [{
			"id": 123,
			"title": "Deep Learning Survey",
			"abstract": "An overview.",
			"authors": [{"name": "A. Smith"}, {"name": "B. Jones"}],
			"year": 2021,
			"identifiers": {"doi": ["10.1000/xyz"]},
			"downloadUrl": "https://example.org/paper.pdf",
			"language": {"name": "English"},
			"publisher": "Example Press",
			"subjects": [{"name": "Computer Science"}],
			"documentType": {"name": "research"}
		}]
	}`)

	env := cleanWorks(raw)
	require.Equal(t, 60, env.TotalCount)
	require.Equal(t, 2, env.Page)
	require.Equal(t, 1, env.PageSize)
	require.Equal(t, 3, env.TotalPages)
	require.Len(t, env.Results, 1)

	w := env.Results[0]
	require.Equal(t, "Deep Learning Survey", w.Title)
	require.Equal(t, []Author{{Name: "A. Smith"}, {Name: "B. Jones"}}, w.Authors)
	require.NotNil(t, w.DOI)
	require.Equal(t, "10.1000/xyz", *w.DOI)
	require.Equal(t, "English", w.Language)
	require.Equal(t, []string{"Computer Science"}, w.Subjects)
	require.Equal(t, "research", w.Type)
}

func TestCleanWorksPolymorphicFields(t *testing.T) {
	raw := decodeRaw(t, `{
		"totalHits": 1,
		"results": [{
			"title": "Sparse Metadata",
			"language": "fr",
			"documentType": "thesis"
		}]
	}`)

	env := cleanWorks(raw)
	w := env.Results[0]
	require.Equal(t, "fr", w.Language)
	require.Equal(t, "thesis", w.Type)
	require.Nil(t, w.DOI)
	require.Empty(t, w.Subjects)
	require.Equal(t, 1, env.Page, "missing page defaults to 1")
}

func TestCleanWorksUnknownDocumentType(t *testing.T) {
	raw := decodeRaw(t, `{"totalHits": 1, "results": [{"title": "x"}]}`)
	require.Equal(t, "Unknown", cleanWorks(raw).Results[0].Type)
}

func TestCleanJournals(t *testing.T) {
	raw := decodeRaw(t, `{
		"totalHits": 26,
		"page": 1,
		"results": [{
			"id": "jrnl-1",
			"title": "Journal of Examples",
			"publisher": "Example Press",
			"identifiers": {"issn": ["1234-5678", "8765-4321"]},
			"subjects": [{"name": "Biology"}],
			"language": "en",
			"country": "GB",
			"url": "https://example.org"
		}]
	}`)

	env := cleanJournals(raw)
	require.Equal(t, 26, env.TotalCount)
	require.Equal(t, 2, env.TotalPages)
	j := env.Results[0]
	require.Equal(t, []string{"1234-5678", "8765-4321"}, j.ISSN)
	require.Equal(t, []string{"Biology"}, j.Subjects)
	require.Equal(t, "GB", j.Country)
}

func TestCleanDatasets(t *testing.T) {
	raw := decodeRaw(t, `{
		"meta": {"count": 51, "page": "2"},
		"results": [{
			"id": "https://openalex.org/W1",
			"title": "A Dataset",
			"publication_date": "2020-01-01",
			"doi": "10.1000/abc",
			"primary_location": {"landing_page_url": "https://example.org/data"},
			"authorships": [
				{"author": {"display_name": "C. Doe", "id": "https://openalex.org/A1"}},
				{"author": {}}
			],
			"concepts": [
				{"display_name": "c1", "score": 0.9},
				{"display_name": "c2", "score": 0.8},
				{"display_name": "c3", "score": 0.7},
				{"display_name": "c4", "score": 0.6},
				{"display_name": "c5", "score": 0.5},
				{"display_name": "c6", "score": 0.4}
			]
		}]
	}`)

	env := cleanDatasets(raw)
	require.Equal(t, 51, env.TotalCount)
	require.Equal(t, 2, env.Page)
	require.Equal(t, 3, env.TotalPages)

	d := env.Results[0]
	require.Equal(t, []Author{{Name: "C. Doe", ID: "https://openalex.org/A1"}}, d.Authors)
	require.Len(t, d.Concepts, 5, "only top 5 concepts are kept")
	require.Equal(t, "c1", d.Concepts[0].Name)
	require.Equal(t, "https://example.org/data", d.URL)
}

func TestCleanConcepts(t *testing.T) {
	raw := decodeRaw(t, `{
		"results": [{
			"id": "https://openalex.org/C1",
			"display_name": "Machine learning",
			"level": 1,
			"wikidata": "https://www.wikidata.org/wiki/Q2539"
		}]
	}`)

	got := cleanConcepts(raw)
	require.Len(t, got, 1)
	require.Equal(t, "Machine learning", got[0].DisplayName)
	require.Equal(t, "https://www.wikidata.org/wiki/Q2539", got[0].WikidataID)
}

func TestCeilPages(t *testing.T) {
	require.Equal(t, 0, ceilPages(0))
	require.Equal(t, 1, ceilPages(1))
	require.Equal(t, 1, ceilPages(25))
	require.Equal(t, 2, ceilPages(26))
}
