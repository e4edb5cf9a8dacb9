// Package restsearch is the client for the GNAVI RestSearch API, used to find
// cafes around a user's shared location.
package restsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/config"
	"cafe_bot_backend/platform/logger"
)

const (
	// DefaultErrorMessage is shown when the API reports an error without a message.
	DefaultErrorMessage = "\n申し訳ありません、データを取得できませんでした。\n少し時間を空けて、もう一度試してみてください。\n"
	// NoHitMessage is used when nothing matched around the given point.
	NoHitMessage = "お近くにぐるなびに登録されている喫茶店はないようです\U00100017"
)

// CategoryCodes are the small-category codes searched for. Order is kept in
// the request.
var CategoryCodes = []string{
	"RSFST18008",
	"RSFST18009",
	"RSFST18010",
	"RSFST18011",
	"RSFST18012",
}

// Query is the set of parameters for one search call.
type Query struct {
	APIKey        string
	Latitude      float64
	Longitude     float64
	CategoryCodes []string
}

// Encode renders the query string. Commas are left unescaped so the category
// list reads "A,B,C" on the wire.
func (q Query) Encode() string {
	params := url.Values{}
	params.Set("keyid", q.APIKey)
	params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("category_s", strings.Join(q.CategoryCodes, ","))
	return strings.ReplaceAll(params.Encode(), "%2C", ",")
}

// Client issues RestSearch calls.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a search client. httpClient carries the proxy and
// timeout settings shared by all outbound calls.
func NewClient(cfg config.SearchConfig, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: cfg.GetRestSearchURL(),
		apiKey:  cfg.GetRestSearchAPIKey(),
		http:    httpClient,
		log:     log,
	}
}

// Search looks up cafes around coords.
//
// On success the returned slice is never empty. An explicit API error is
// returned as an apperr.KindUpstream error carrying the API's message, and
// "nothing found" as apperr.KindNotFound carrying NoHitMessage. Transport and
// decoding failures are returned as plain wrapped errors.
func (c *Client) Search(ctx context.Context, coords Coordinates) ([]Venue, error) {
	query := Query{
		APIKey:        c.apiKey,
		Latitude:      coords.Latitude,
		Longitude:     coords.Longitude,
		CategoryCodes: CategoryCodes,
	}

	reqURL := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create restsearch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("restsearch request failed", "error", err)
		return nil, fmt.Errorf("restsearch request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Error("failed to decode restsearch payload", "error", err, "status", resp.StatusCode)
		return nil, fmt.Errorf("decode restsearch response: %w", err)
	}

	return c.classify(body, resp.StatusCode)
}

func (c *Client) classify(body searchResponse, status int) ([]Venue, error) {
	if len(body.Error) > 0 {
		message := DefaultErrorMessage
		if body.Message != nil {
			message = string(*body.Message)
		}
		err := apperr.Upstream(message)
		c.log.UpstreamError("restsearch", status, err)
		return nil, err
	}

	if body.TotalHitCount != nil && *body.TotalHitCount < 1 {
		return nil, apperr.NotFound(NoHitMessage)
	}

	if len(body.Rest) == 0 {
		return nil, apperr.NotFound(NoHitMessage)
	}

	venues := make([]Venue, 0, len(body.Rest))
	for _, record := range body.Rest {
		venues = append(venues, record.toVenue())
	}

	c.log.Debug("restsearch results", "count", len(venues))
	return venues, nil
}
