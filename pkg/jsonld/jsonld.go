// Package jsonld locates embedded JSON-LD Recipe metadata in an HTML document
// and normalizes the first schema-valid block into a ScrapedRecipe.
//
// Absence of valid metadata is an expected outcome, not an error: ExtractRecipe
// returns (nil, nil) and the caller falls back to HTML sanitization.
package jsonld

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"

	"github.com/albla038/middagsflyt/models"
)

// ExtractRecipe scans every ld+json script block in document order and
// returns the first candidate that validates. Malformed blocks are repaired
// when possible and skipped (logged, not fatal) when not.
func ExtractRecipe(html string, logger *slog.Logger) (*models.ScrapedRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var found *models.ScrapedRecipe
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		root, err := parseBlock(s.Text())
		if err != nil {
			logger.Debug("skipping unparseable ld+json block", "index", i, "error", err)
			return true
		}

		for _, candidate := range recipeNodes(root) {
			scraped := normalize(candidate)
			if scraped.Valid() {
				found = scraped
				return false
			}
			logger.Debug("skipping schema-invalid Recipe block", "index", i, "name", scraped.Name)
		}
		return true
	})

	return found, nil
}

// parseBlock parses one script body, first strictly, then with a tolerant
// JSON5 pass that accepts the trailing commas and unquoted keys common on
// hand-maintained sites.
func parseBlock(text string) (any, error) {
	var root any
	if err := json.Unmarshal([]byte(text), &root); err == nil {
		return root, nil
	}
	if err := json5.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("failed to parse even after repair: %w", err)
	}
	return root, nil
}

// recipeNodes collects every object self-declaring @type Recipe, walking
// top-level arrays and @graph containers in document order.
func recipeNodes(root any) []map[string]any {
	var out []map[string]any
	switch v := root.(type) {
	case []any:
		for _, item := range v {
			out = append(out, recipeNodes(item)...)
		}
	case map[string]any:
		if isRecipeType(v["@type"]) {
			out = append(out, v)
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				out = append(out, recipeNodes(item)...)
			}
		}
	}
	return out
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Recipe")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

// normalize maps the loosely typed JSON-LD object onto the strict
// ScrapedRecipe shape, coercing numeral strings and converting durations to
// seconds.
func normalize(node map[string]any) *models.ScrapedRecipe {
	scraped := &models.ScrapedRecipe{
		Name:        asString(node["name"]),
		Description: asString(node["description"]),
		ImageURL:    imageURL(node["image"]),
		Author:      authorName(node["author"]),
		Category:    firstString(node["recipeCategory"]),
		Cuisine:     firstString(node["recipeCuisine"]),
		Yield:       asInt(node["recipeYield"]),
	}

	for _, item := range asList(node["recipeIngredient"]) {
		if s := strings.TrimSpace(asString(item)); s != "" {
			scraped.Ingredients = append(scraped.Ingredients, s)
		}
	}
	scraped.Instructions = instructionTexts(node["recipeInstructions"])

	if secs, ok := durationSeconds(node["totalTime"]); ok {
		scraped.TotalTimeSeconds = secs
	} else {
		prep, _ := durationSeconds(node["prepTime"])
		cook, _ := durationSeconds(node["cookTime"])
		scraped.TotalTimeSeconds = prep + cook
	}

	return scraped
}

// instructionTexts flattens the recipeInstructions property, which may be a
// plain string, a list of strings, HowToStep objects, or HowToSection
// containers.
func instructionTexts(v any) []string {
	var out []string
	switch node := v.(type) {
	case string:
		if s := strings.TrimSpace(node); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range node {
			out = append(out, instructionTexts(item)...)
		}
	case map[string]any:
		if items, ok := node["itemListElement"].([]any); ok {
			for _, item := range items {
				out = append(out, instructionTexts(item)...)
			}
			return out
		}
		if s := strings.TrimSpace(asString(node["text"])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func durationSeconds(v any) (int, bool) {
	s := asString(v)
	if s == "" {
		return 0, false
	}
	secs, err := parseDuration(s)
	if err != nil {
		return 0, false
	}
	return secs, true
}

func imageURL(v any) string {
	switch node := v.(type) {
	case string:
		return node
	case []any:
		if len(node) > 0 {
			return imageURL(node[0])
		}
	case map[string]any:
		return asString(node["url"])
	}
	return ""
}

func authorName(v any) string {
	switch node := v.(type) {
	case string:
		return node
	case []any:
		if len(node) > 0 {
			return authorName(node[0])
		}
	case map[string]any:
		return asString(node["name"])
	}
	return ""
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func firstString(v any) string {
	switch node := v.(type) {
	case string:
		return node
	case []any:
		if len(node) > 0 {
			return asString(node[0])
		}
	}
	return ""
}

func asList(v any) []any {
	switch node := v.(type) {
	case []any:
		return node
	case nil:
		return nil
	default:
		return []any{node}
	}
}

// asInt coerces yields that arrive as numbers, numeral strings, or lists
// ("4", "4 portioner", ["4", "4 servings"]) to a plain integer.
func asInt(v any) int {
	switch node := v.(type) {
	case float64:
		return int(node)
	case string:
		fields := strings.Fields(node)
		if len(fields) == 0 {
			return 0
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return n
		}
	case []any:
		for _, item := range node {
			if n := asInt(item); n > 0 {
				return n
			}
		}
	}
	return 0
}
