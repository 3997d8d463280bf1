package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

// jsonFetcher fetches one source whose endpoint answers a GET with a JSON envelope.
type jsonFetcher struct {
	src    Source
	shape  Shape
	client HTTPClient
}

// NewFetcher builds the fetcher for src using the shape registered for its kind.
func NewFetcher(src Source, client HTTPClient) (Fetcher, error) {
	shape, ok := ShapeFor(src.Kind)
	if !ok {
		return nil, fmt.Errorf("no shape registered for kind %q (source %q)", src.Kind, src.ID)
	}
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &jsonFetcher{src: src.clone(), shape: shape, client: client}, nil
}

func (f *jsonFetcher) ID() string    { return f.src.ID }
func (f *jsonFetcher) Label() string { return f.src.Name }

func (f *jsonFetcher) Fetch(ctx context.Context, category string) ([]domain.Article, error) {
	resp, err := f.client.Get(ctx, f.src.Endpoint, f.query(category), f.src.Headers)
	if err != nil {
		return nil, f.fail(category, ErrTransport, 0, errors.New(redact(err.Error(), f.src.Credential)))
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, f.fail(category, ErrStatus, code, fmt.Errorf("body: %s", redact(responseSnippet(body), f.src.Credential)))
	}

	records, err := extractRecords(body, f.shape.Fields.List)
	if err != nil {
		return nil, f.fail(category, ErrShape, 0, err)
	}

	articles := make([]domain.Article, 0, len(records))
	for _, rec := range records {
		articles = append(articles, Normalize(rec, category, f.src.Name, f.shape.Fields))
	}
	return articles, nil
}

// query builds the request parameters: category, credential, kind defaults, then source overrides.
func (f *jsonFetcher) query(category string) url.Values {
	q := url.Values{}
	for k, v := range f.shape.FixedParams {
		q.Set(k, v)
	}
	for k, v := range f.src.Params {
		q.Set(k, v)
	}
	q.Set(f.shape.CategoryParam, category)
	if f.src.Credential != "" {
		q.Set(f.shape.CredentialParam, f.src.Credential)
	}
	return q
}

func (f *jsonFetcher) fail(category string, kind error, status int, err error) error {
	return &FetchError{
		SourceID:   f.src.ID,
		Category:   category,
		Kind:       kind,
		StatusCode: status,
		Err:        err,
	}
}

// extractRecords decodes body and returns the objects found at the list path.
func extractRecords(body []byte, listPath string) ([]map[string]any, error) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}

	raw, ok := lookup(envelope, listPath)
	if !ok {
		return nil, fmt.Errorf("list field %q missing", listPath)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("list field %q is %T, not an array", listPath, raw)
	}

	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is %T, not an object", listPath, i, item)
		}
		records = append(records, rec)
	}
	return records, nil
}
