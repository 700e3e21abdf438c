package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

// Options configures an OMDb provider.
type Options struct {
	Base              string  // e.g. "www.omdbapi.com"
	APIKey            string
	Type              string  // result type filter; empty searches every type
	RequestsPerSecond float64 // zero disables rate limiting
	Client            *http.Client
}

// OMDb implements the Provider interface for the OMDb API.
type OMDb struct {
	base    string
	apiKey  string
	typ     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewOMDb creates a new OMDb provider.
func NewOMDb(opts Options) *OMDb {
	client := opts.Client
	if client == nil {
		client = httputil.NewClient(0)
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &OMDb{
		base:    opts.Base,
		apiKey:  opts.APIKey,
		typ:     strings.ToLower(opts.Type),
		client:  client,
		limiter: limiter,
	}
}

// Search returns one page of results for term.
func (o *OMDb) Search(ctx context.Context, term string, page int) (*media.SearchPage, error) {
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("s", term)
	q.Set("page", strconv.Itoa(page))
	if o.typ != "" {
		q.Set("type", o.typ)
	}

	body, err := o.get(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", term, err)
	}

	res, err := parseSearch(body)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", term, err)
	}
	return res, nil
}

// Details returns full metadata for one title.
func (o *OMDb) Details(ctx context.Context, id string) (*media.Detail, error) {
	if err := httputil.ValidateIMDbID(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	q := url.Values{}
	q.Set("i", id)
	q.Set("plot", "full")

	body, err := o.get(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("getting details for %s: %w", id, err)
	}

	d, err := parseDetail(body)
	if err != nil {
		return nil, fmt.Errorf("getting details for %s: %w", id, err)
	}
	return d, nil
}

func (o *OMDb) get(ctx context.Context, q url.Values) ([]byte, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	q.Set("apikey", o.apiKey)
	return httputil.GetJSON(ctx, o.client, httputil.BuildQueryURL(o.base, "/", q))
}
