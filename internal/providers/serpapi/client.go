package serpapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evoleadai/evolead/internal/config"
	"github.com/go-resty/resty/v2"
)

const (
	searchEndpoint = "https://serpapi.com/search"
	maxResults     = 100
)

// Result is one raw search hit, already flattened across the organic and
// local result shapes.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	LocalResults   localResults    `json:"local_results"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type localResults struct {
	Places []localPlace `json:"places"`
}

type localPlace struct {
	Title   string `json:"title"`
	Website string `json:"website"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Client queries the SerpAPI search endpoint for raw business candidates.
type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(cfg config.Config) *Client {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", "evolead/1.0")
	return &Client{
		http:   client,
		apiKey: cfg.SerpAPIKey,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// Search asks for up to 2x the requested count so downstream extraction
// has slack, capped at the API's page size.
func (c *Client) Search(ctx context.Context, businessType, country, state, city string, leadsRequested int) ([]Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("SERPAPI_KEY not configured")
	}

	num := leadsRequested * 2
	if num > maxResults {
		num = maxResults
	}
	query := fmt.Sprintf("%s in %s, %s, %s", businessType, city, state, country)

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("engine", "google").
		SetQueryParam("q", query).
		SetQueryParam("num", strconv.Itoa(num)).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&result).
		Get(searchEndpoint)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("serpapi error (status %d): %s", resp.StatusCode(), resp.String())
	}

	return flattenResults(result, num), nil
}

func flattenResults(res searchResponse, limit int) []Result {
	out := make([]Result, 0, limit)
	for _, place := range res.LocalResults.Places {
		if strings.TrimSpace(place.Title) == "" {
			continue
		}
		out = append(out, Result{
			Title:   place.Title,
			Link:    place.Website,
			Address: place.Address,
			Phone:   place.Phone,
		})
		if len(out) >= limit {
			return out
		}
	}
	for _, organic := range res.OrganicResults {
		if strings.TrimSpace(organic.Title) == "" {
			continue
		}
		out = append(out, Result{
			Title:   organic.Title,
			Link:    organic.Link,
			Snippet: organic.Snippet,
		})
		if len(out) >= limit {
			return out
		}
	}
	return out
}
