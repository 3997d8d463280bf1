package domain

// Domain contains core models shared by sources, cache and aggregator.

// Article is the normalized record produced for every upstream item.
// Category and Source are stamped by the fetcher, never read from the payload.
type Article struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// CloneArticles returns an independent copy of the slice (never nil).
func CloneArticles(in []Article) []Article {
	out := make([]Article, len(in))
	copy(out, in)
	return out
}
