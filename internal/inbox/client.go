package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ajramos/mailcore/internal/poll"
)

// Client fetches the mail list from the HTTP list endpoint. It implements
// poll.Fetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given list endpoint URL.
func NewClient(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("inbox endpoint cannot be empty")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FetchList performs the list call. The response body is decoded into the
// {results, count} shape the engine consumes; anything else is an error
// and leaves engine state untouched.
func (c *Client) FetchList(ctx context.Context, q poll.Query) (*poll.Result, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	params.Set("folder", q.Folder)
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch list: unexpected status %d", resp.StatusCode)
	}

	var result poll.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return &result, nil
}
