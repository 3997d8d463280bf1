package sources

import (
	"strings"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

// Normalize maps one raw provider record into an Article using the field table.
// Category and label are stamped as given; missing or non-string values become "".
func Normalize(record map[string]any, category, label string, fields FieldTable) domain.Article {
	return domain.Article{
		Title:       stringAt(record, fields.Title),
		Author:      stringAt(record, fields.Author),
		Description: stringAt(record, fields.Description),
		URL:         stringAt(record, fields.URL),
		Category:    category,
		Source:      label,
		PublishedAt: stringAt(record, fields.PublishedAt),
	}
}

func stringAt(record map[string]any, path string) string {
	v, ok := lookup(record, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// lookup walks a dot path through nested JSON objects.
func lookup(node map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur any = node
	for _, p := range parts {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
