// Package llm calls the generative text-extraction service and enforces its
// output contract. The service is untrusted: every response is re-validated
// locally before anything downstream sees it.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/albla038/middagsflyt/models"
)

// ErrNoResponseText is returned when a nominally successful service response
// carries no text at all.
var ErrNoResponseText = fmt.Errorf("no response text from extraction service")

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	http   *resty.Client
	model  string
	logger *slog.Logger
}

func NewClient(cfg models.LLMConfig, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}
	return &Client{
		http:   httpClient,
		model:  cfg.Model,
		logger: logger,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat completion and returns the raw response text.
// Single attempt, no retry: failures surface to the caller, which may retry
// the whole pipeline.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0,
		ResponseFormat: &formatSpec{Type: "json_object"},
	}

	var parsed chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("extraction service request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode(), snippet(resp.String()))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrNoResponseText
	}
	return parsed.Choices[0].Message.Content, nil
}

// recipeEnvelope is the discriminated success/failure contract the service
// must answer extraction requests with.
type recipeEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// ExtractFromStructured sends validated JSON-LD metadata through the
// structured-data prompt variant.
func (c *Client) ExtractFromStructured(ctx context.Context, scraped *models.ScrapedRecipe) (*models.GeneratedRecipe, error) {
	payload, err := json.Marshal(scraped)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal structured payload: %w", err)
	}
	system := recipeSystemCommon + "\n\n" + recipeOutputSchema
	user := structuredTask + "\n\n" + string(payload)
	return c.extractRecipe(ctx, system, user)
}

// ExtractFromHTML sends sanitized page text through the raw-HTML prompt
// variant. language, when known, tells the model what language ingredient
// lookup names must stay in.
func (c *Client) ExtractFromHTML(ctx context.Context, text, language string) (*models.GeneratedRecipe, error) {
	system := recipeSystemCommon + "\n\n" + recipeOutputSchema
	task := rawHTMLTask
	if language != "" {
		task += fmt.Sprintf("\nSidans språk: %s. Ingrediensernas uppslagsnamn ska vara på detta språk.", language)
	}
	user := task + "\n\n" + text
	return c.extractRecipe(ctx, system, user)
}

func (c *Client) extractRecipe(ctx context.Context, system, user string) (*models.GeneratedRecipe, error) {
	raw, err := c.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var envelope recipeEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		c.logger.Warn("extraction service returned non-JSON text", "snippet", snippet(raw))
		return nil, fmt.Errorf("failed to parse extraction response as JSON: %w", err)
	}

	switch envelope.Status {
	case "success":
		if len(envelope.Data) == 0 {
			return nil, fmt.Errorf("extraction response has status success but no data")
		}
		var recipe models.GeneratedRecipe
		if err := json.Unmarshal(envelope.Data, &recipe); err != nil {
			return nil, fmt.Errorf("failed to decode extracted recipe: %w", err)
		}
		if err := recipe.Validate(); err != nil {
			return nil, fmt.Errorf("extracted recipe violates output schema: %w", err)
		}
		return &recipe, nil
	case "failed":
		return nil, fmt.Errorf("extraction service reported failure: %s", envelope.Error)
	default:
		return nil, fmt.Errorf("extraction response has invalid status %q", envelope.Status)
	}
}

// GenerateIngredients asks the service to synthesize dictionary entries for
// unknown ingredient names. This mode has no envelope: the contract is a flat
// array of entries.
func (c *Client) GenerateIngredients(ctx context.Context, names []string) ([]models.GeneratedIngredient, error) {
	user := ingredientTask + "\n" + strings.Join(names, "\n")
	raw, err := c.complete(ctx, ingredientSystem, user)
	if err != nil {
		return nil, err
	}

	// Some models wrap the array in an object when forced into JSON mode.
	var entries []models.GeneratedIngredient
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		var wrapped struct {
			Ingredients []models.GeneratedIngredient `json:"ingredients"`
		}
		if err2 := json.Unmarshal([]byte(raw), &wrapped); err2 != nil || wrapped.Ingredients == nil {
			c.logger.Warn("ingredient generation returned non-conforming text", "snippet", snippet(raw))
			return nil, fmt.Errorf("failed to parse generated ingredients: %w", err)
		}
		entries = wrapped.Ingredients
	}

	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("generated ingredient violates schema: %w", err)
		}
	}
	return entries, nil
}

// snippet trims raw model output for log and error messages.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
