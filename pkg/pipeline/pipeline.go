// Package pipeline orchestrates a recipe import end to end: permission check,
// page fetch, structured-data or raw-HTML extraction, ingredient
// reconciliation, and persistence.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
	"github.com/albla038/middagsflyt/pkg/fetcher"
	"github.com/albla038/middagsflyt/pkg/jsonld"
	"github.com/albla038/middagsflyt/pkg/robots"
	"github.com/albla038/middagsflyt/pkg/sanitize"
)

// RobotsChecker decides whether a URL may be crawled.
type RobotsChecker interface {
	Check(ctx context.Context, rawURL string) robots.Decision
}

// PageFetcher retrieves and decodes one page.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// Extractor turns page content into a validated recipe.
type Extractor interface {
	ExtractFromStructured(ctx context.Context, scraped *models.ScrapedRecipe) (*models.GeneratedRecipe, error)
	ExtractFromHTML(ctx context.Context, text, language string) (*models.GeneratedRecipe, error)
}

// Resolver maps extracted ingredient names to canonical dictionary names.
type Resolver interface {
	Resolve(ctx context.Context, names []string) (map[string]string, error)
}

// Service runs imports against one database.
type Service struct {
	store     *db.DB
	robots    RobotsChecker
	fetcher   PageFetcher
	extractor Extractor
	resolver  Resolver
	logger    *slog.Logger
}

func NewService(store *db.DB, rc RobotsChecker, pf PageFetcher, ex Extractor, res Resolver, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		robots:    rc,
		fetcher:   pf,
		extractor: ex,
		resolver:  res,
		logger:    logger,
	}
}

// Result identifies the recipe an import produced, or the one that already
// existed for the same source URL.
type Result struct {
	RecipeID      int64
	Slug          string
	Name          string
	AlreadyExists bool
}

// Import runs the whole pipeline for one URL on behalf of owner. A URL that
// was imported before short-circuits to the existing recipe without touching
// the network. Failures come back as *Error carrying both the stage
// classification and the diagnostic cause.
func (s *Service) Import(ctx context.Context, rawURL, owner string) (*Result, error) {
	existing, err := s.store.GetRecipeBySourceURL(ctx, rawURL)
	if err != nil {
		return nil, failed(KindPersistenceFailure, "failed to check for existing import: %w", err)
	}
	if existing != nil {
		s.logger.Info("url already imported", "url", rawURL, "slug", existing.Slug)
		return &Result{RecipeID: existing.ID, Slug: existing.Slug, Name: existing.Name, AlreadyExists: true}, nil
	}

	if decision := s.robots.Check(ctx, rawURL); !decision.Allowed {
		return nil, failed(KindPermissionDenied, "crawl not permitted for %s: %s", rawURL, decision.Reason)
	}

	page, err := s.fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, failed(KindFetchFailure, "failed to fetch %s: %w", rawURL, err)
	}
	s.logger.Debug("page fetched", "url", rawURL, "bytes", len(page.Body), "encoding", page.Encoding)

	recipe, err := s.extract(ctx, page)
	if err != nil {
		return nil, err
	}
	if err := recipe.Validate(); err != nil {
		return nil, failed(KindExtractionFailure, "extraction output invalid: %w", err)
	}
	normalizeNames(recipe)

	resolved, err := s.resolver.Resolve(ctx, recipe.IngredientNames())
	if err != nil {
		return nil, failed(KindIngredientResolution, "failed to reconcile ingredients: %w", err)
	}

	created, err := s.store.CreateImportedRecipe(ctx, db.CreateRecipeArgs{
		Recipe:    recipe,
		SourceURL: rawURL,
		Language:  importLanguage(recipe, page),
		CreatedBy: owner,
		Resolved:  resolved,
	})
	if err != nil {
		return nil, failed(KindPersistenceFailure, "failed to persist recipe: %w", err)
	}

	s.logger.Info("recipe imported", "url", rawURL, "slug", created.Slug, "ingredients", len(recipe.Ingredients))
	return &Result{RecipeID: created.ID, Slug: created.Slug, Name: created.Name}, nil
}

// extract prefers embedded structured data and falls back to sanitized raw
// HTML when the page carries none.
func (s *Service) extract(ctx context.Context, page *fetcher.Page) (*models.GeneratedRecipe, error) {
	scraped, err := jsonld.ExtractRecipe(page.Text, s.logger)
	if err != nil {
		return nil, failed(KindExtractionFailure, "failed to scan structured data: %w", err)
	}

	if scraped != nil {
		s.logger.Debug("structured data found", "url", page.URL, "name", scraped.Name)
		recipe, err := s.extractor.ExtractFromStructured(ctx, scraped)
		if err != nil {
			return nil, failed(KindExtractionFailure, "structured extraction failed: %w", err)
		}
		return recipe, nil
	}

	s.logger.Debug("no structured data, using sanitized page", "url", page.URL)
	cleaned, err := sanitize.Clean(page.Text)
	if err != nil {
		return nil, failed(KindExtractionFailure, "failed to sanitize page: %w", err)
	}
	recipe, err := s.extractor.ExtractFromHTML(ctx, cleaned, sanitize.DetectLanguage(cleaned))
	if err != nil {
		return nil, failed(KindExtractionFailure, "raw extraction failed: %w", err)
	}
	backfillMeta(recipe, sanitize.ExtractMeta(page.Text, page.URL))
	return recipe, nil
}

// backfillMeta fills optional fields the model left empty with publisher
// metadata from the page itself. It never overrides extracted values.
func backfillMeta(recipe *models.GeneratedRecipe, meta sanitize.PageMeta) {
	if recipe.OriginalAuthor == "" {
		if meta.Byline != "" {
			recipe.OriginalAuthor = meta.Byline
		} else if meta.SiteName != "" {
			recipe.OriginalAuthor = meta.SiteName
		}
	}
	if recipe.ImageURL == "" {
		recipe.ImageURL = meta.Image
	}
}

// normalizeNames lowercases and trims ingredient lookup names so they key
// consistently through reconciliation and persistence.
func normalizeNames(recipe *models.GeneratedRecipe) {
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].Name = strings.ToLower(strings.TrimSpace(recipe.Ingredients[i].Name))
	}
}

// importLanguage picks the language recorded on the recipe row. Detection
// runs over the page text, already decoded, which works for both extraction
// modes.
func importLanguage(recipe *models.GeneratedRecipe, page *fetcher.Page) string {
	var b strings.Builder
	b.WriteString(recipe.Name)
	b.WriteString(" ")
	b.WriteString(recipe.Description)
	for _, ins := range recipe.Instructions {
		b.WriteString(" ")
		b.WriteString(ins.Text)
	}
	if lang := sanitize.DetectLanguage(b.String()); lang != "" {
		return lang
	}
	return sanitize.DetectLanguage(page.Text)
}
