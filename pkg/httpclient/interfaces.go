package httpclient

import (
	"context"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP GETs so fetchers can inject fakes or a different transport.
// query is merged into any query already present on rawURL.
type Client interface {
	Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (Response, error)
}
