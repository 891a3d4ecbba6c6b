// Package provider implements the client for the paid external review
// provider (Outscraper Google Maps reviews API). It is the last tier of the
// retrieval pipeline and is only reached when both the cache and the durable
// store miss.
//
// The provider response is validated at the boundary: a non-success status
// or a payload that does not match the expected shape is reported as
// ErrBadPayload rather than assumed well-formed downstream.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrBadPayload indicates the provider responded with a non-success status
// or a payload whose shape does not match the documented contract.
var ErrBadPayload = errors.New("provider returned unexpected payload")

// Client calls the Outscraper reviews endpoint. It is safe for concurrent
// use; the embedded http.Client carries a bounded timeout so a stalled
// provider cannot hang requests.
type Client struct {
	baseURL  string
	apiKey   string
	limit    int
	language string
	http     *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL  string        // e.g. "https://api.app.outscraper.com"
	APIKey   string        // X-API-KEY header value
	Limit    int           // reviews requested per place
	Language string        // review language requested from the provider
	Timeout  time.Duration // per-request deadline
}

// New returns a provider client with the given options.
func New(opts Options) *Client {
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   opts.APIKey,
		limit:    opts.Limit,
		language: opts.Language,
		http:     &http.Client{Timeout: opts.Timeout},
	}
}

// Wire shapes. Only the review text field is requested; everything else the
// provider sends is ignored.
type reviewData struct {
	ReviewText string `json:"review_text"`
}

type placeResult struct {
	ReviewsData []reviewData `json:"reviews_data"`
}

type reviewsEnvelope struct {
	Data []placeResult `json:"data"`
}

// FetchReviews requests up to the configured limit of newest reviews for
// placeID in the configured language. It returns the raw review texts in
// provider order; language and blank filtering is the pipeline's job.
func (c *Client) FetchReviews(ctx context.Context, placeID string) ([]string, error) {
	q := url.Values{}
	q.Set("query", placeID)
	q.Set("reviewsLimit", strconv.Itoa(c.limit))
	q.Set("language", c.language)
	q.Set("sort", "newest")
	q.Set("fields", "reviews_data.review_text")
	q.Set("async", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/maps/reviews-v3?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the error message, never all of it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: status %d: %s", ErrBadPayload, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var env reviewsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(env.Data) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(env.Data[0].ReviewsData))
	for _, r := range env.Data[0].ReviewsData {
		texts = append(texts, r.ReviewText)
	}
	return texts, nil
}
