package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/evoleadai/evolead/internal/config"
	leadgendomain "github.com/evoleadai/evolead/internal/leadgen/domain"
	"github.com/evoleadai/evolead/internal/providers/serpapi"
	"github.com/go-resty/resty/v2"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta"

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client wraps the Gemini generateContent endpoint for structured lead
// extraction and direct generation.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewClient(cfg config.Config) *Client {
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "evolead/1.0")
	return &Client{
		http:   client,
		apiKey: cfg.GeminiAPIKey,
		model:  model,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// ExtractLeads restructures raw search results into leads via a
// structured-extraction prompt. The result is truncated or padded by the
// caller; this returns whatever the model produced.
func (c *Client) ExtractLeads(ctx context.Context, results []serpapi.Result, count int, businessType, location string) ([]leadgendomain.RawLead, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract up to %d %s businesses in %s from these search results.\n", count, businessType, location)
	sb.WriteString("Respond with ONLY a JSON array of objects with keys: business_name, email, phone, website, address.\n\nSearch results:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s | %s | %s | %s | %s\n", i+1, r.Title, r.Link, r.Snippet, r.Address, r.Phone)
	}

	text, err := c.generate(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	return parseLeadArray(text)
}

// GenerateLeads asks the model to synthesize plausible businesses when the
// search tier returned nothing.
func (c *Client) GenerateLeads(ctx context.Context, count int, businessType, location string) ([]leadgendomain.RawLead, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured")
	}

	prompt := fmt.Sprintf(
		"Generate %d plausible %s businesses located in %s. Respond with ONLY a JSON array of objects with keys: business_name, email, phone, website, address.",
		count, businessType, location,
	)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseLeadArray(text)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode(), resp.String())
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// parseLeadArray trusts the model output only if it parses as a JSON
// array of objects. Each element is defaulted field by field; there is no
// further schema validation.
func parseLeadArray(text string) ([]leadgendomain.RawLead, error) {
	cleaned := stripCodeFences(text)

	var elements []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	leads := make([]leadgendomain.RawLead, 0, len(elements))
	for _, element := range elements {
		leads = append(leads, leadgendomain.RawLead{
			BusinessName: stringFieldOr(element, "Unknown Business", "business_name", "name"),
			Email:        stringFieldOr(element, "", "email"),
			Phone:        stringFieldOr(element, "", "phone"),
			Website:      stringFieldOr(element, "", "website"),
			Address:      stringFieldOr(element, "", "address"),
		})
	}
	return leads, nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

func stringFieldOr(element map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if value, ok := element[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return fallback
}
