package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPReader fetches a dataset over HTTP(S), optionally through a Cache.
type HTTPReader struct {
	URL      string
	Required []string

	client *resty.Client
	cache  *Cache
	logger *slog.Logger
}

// HTTPOption configures an HTTPReader.
type HTTPOption func(*HTTPReader)

// WithCache serves repeated fetches from c.
func WithCache(c *Cache) HTTPOption {
	return func(r *HTTPReader) { r.cache = c }
}

// WithHTTPLogger sets the reader logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(r *HTTPReader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClient replaces the resty client.
func WithClient(c *resty.Client) HTTPOption {
	return func(r *HTTPReader) { r.client = c }
}

// NewHTTPReader creates a reader for url with the given request timeout.
func NewHTTPReader(url string, required []string, timeout time.Duration, opts ...HTTPOption) *HTTPReader {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(2)

	r := &HTTPReader{
		URL:      url,
		Required: required,
		client:   client,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadRows implements RowReader.
func (r *HTTPReader) ReadRows(ctx context.Context) ([]Row, error) {
	data, err := r.body(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := parseRequired(data, FormatFromName(r.URL), r.Required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.URL, err)
	}
	return rows, nil
}

func (r *HTTPReader) body(ctx context.Context) ([]byte, error) {
	if r.cache != nil {
		data, ok, err := r.cache.Get(r.URL)
		if err != nil {
			r.logger.Warn("dataset cache read failed", slog.String("url", r.URL), slog.String("error", err.Error()))
		} else if ok {
			r.logger.Debug("dataset served from cache", slog.String("url", r.URL), slog.Int("bytes", len(data)))
			return data, nil
		}
	}

	resp, err := r.client.R().SetContext(ctx).Get(r.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.URL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", r.URL, resp.Status())
	}
	data := resp.Body()

	if r.cache != nil {
		if err := r.cache.Put(r.URL, data); err != nil {
			r.logger.Warn("dataset cache write failed", slog.String("url", r.URL), slog.String("error", err.Error()))
		}
	}
	return data, nil
}
