// Package catalog resolves ISBNs to bibliographic records using the Open
// Library books API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"personal-library/isbn"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultUserAgent = "personal-library/1.0"
)

var (
	ErrInvalidISBN = errors.New("invalid ISBN")

	// ErrNotFound means the catalog has no record for the ISBN.
	ErrNotFound  = errors.New("no catalog record for ISBN")
	// ErrTransport covers network failures, unexpected statuses and
	// undecodable responses.
	ErrTransport = errors.New("catalog lookup failed")
)

// Options configures an OpenLibraryClient. Zero values fall back to
// defaults.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// OpenLibraryClient fetches book data from Open Library.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewOpenLibraryClient creates a client throttled to opts.RequestsPerSecond.
func NewOpenLibraryClient(opts Options) *OpenLibraryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(limit, 1),
		log:        opts.Logger,
	}
}

// LookupISBN returns the record for rawISBN. It fails with ErrInvalidISBN
// before any request is made, ErrNotFound when Open Library has no entry,
// and ErrTransport for everything else.
func (c *OpenLibraryClient) LookupISBN(ctx context.Context, rawISBN string) (*Record, error) {
	code := isbn.Normalize(rawISBN)
	if code == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidISBN, rawISBN)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	bibkey := "ISBN:" + code
	q := url.Values{}
	q.Set("bibkeys", bibkey)
	q.Set("format", "json")
	q.Set("jscmd", "data")
	endpoint := fmt.Sprintf("%s/api/books?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("catalog request failed", zap.String("isbn", code), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	c.log.Debug("catalog response",
		zap.String("isbn", code),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}

	raw, ok := body[bibkey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", ErrTransport, err)
	}
	record.ISBN = code
	return &record, nil
}
