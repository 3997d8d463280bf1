package sources

import "strings"

// Supported source kinds.
const (
	KindHeadlines = "headlines"
	KindEditorial = "editorial"
)

// FieldTable maps Article fields to dot paths inside one raw provider record.
// List is the path to the record array inside the response envelope.
type FieldTable struct {
	List        string
	Title       string
	Author      string
	Description string
	URL         string
	PublishedAt string
}

// Shape is everything kind-specific about a source: how the request is
// parameterized and where fields live in the response.
type Shape struct {
	Kind            string
	CategoryParam   string
	CredentialParam string
	FixedParams     map[string]string
	Fields          FieldTable
}

var shapes = map[string]Shape{
	KindHeadlines: {
		Kind:            KindHeadlines,
		CategoryParam:   "category",
		CredentialParam: "apiKey",
		FixedParams:     map[string]string{"language": "en"},
		Fields: FieldTable{
			List:        "articles",
			Title:       "title",
			Author:      "author",
			Description: "description",
			URL:         "url",
			PublishedAt: "publishedAt",
		},
	},
	KindEditorial: {
		Kind:            KindEditorial,
		CategoryParam:   "section",
		CredentialParam: "api-key",
		FixedParams:     map[string]string{"show-fields": "headline,byline,trailText"},
		Fields: FieldTable{
			List:        "response.results",
			Title:       "fields.headline",
			Author:      "fields.byline",
			Description: "fields.trailText",
			URL:         "webUrl",
			PublishedAt: "webPublicationDate",
		},
	},
}

// ShapeFor returns the shape registered for kind.
func ShapeFor(kind string) (Shape, bool) {
	s, ok := shapes[strings.ToLower(strings.TrimSpace(kind))]
	return s, ok
}

// Kinds lists the registered source kinds.
func Kinds() []string {
	return []string{KindHeadlines, KindEditorial}
}
