package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
	"github.com/albla038/middagsflyt/pkg/fetcher"
	"github.com/albla038/middagsflyt/pkg/reconcile"
	"github.com/albla038/middagsflyt/pkg/robots"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

type fakeRobots struct {
	allowed bool
	calls   int
}

func (f *fakeRobots) Check(ctx context.Context, rawURL string) robots.Decision {
	f.calls++
	if f.allowed {
		return robots.Decision{Allowed: true}
	}
	return robots.Decision{Allowed: false, Reason: "disallowed by policy"}
}

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string) (*fetcher.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fetcher.Page{URL: rawURL, Body: []byte(f.html), Encoding: "utf-8", Text: f.html}, nil
}

type fakeExtractor struct {
	recipe          *models.GeneratedRecipe
	err             error
	structuredCalls int
	htmlCalls       int
	lastScraped     *models.ScrapedRecipe
	lastText        string
	lastLanguage    string
}

func (f *fakeExtractor) ExtractFromStructured(ctx context.Context, scraped *models.ScrapedRecipe) (*models.GeneratedRecipe, error) {
	f.structuredCalls++
	f.lastScraped = scraped
	return f.recipe, f.err
}

func (f *fakeExtractor) ExtractFromHTML(ctx context.Context, text, language string) (*models.GeneratedRecipe, error) {
	f.htmlCalls++
	f.lastText = text
	f.lastLanguage = language
	return f.recipe, f.err
}

type fakeGenerator struct {
	entries []models.GeneratedIngredient
	calls   int
}

func (f *fakeGenerator) GenerateIngredients(ctx context.Context, names []string) ([]models.GeneratedIngredient, error) {
	f.calls++
	out := make([]models.GeneratedIngredient, 0, len(names))
	for _, name := range names {
		for _, e := range f.entries {
			if e.Name == name {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func extractedRecipe() *models.GeneratedRecipe {
	qty := 400.0
	return &models.GeneratedRecipe{
		Name:        "Kycklinggryta",
		Description: "En krämig gryta med paprika.",
		Servings:    4,
		RecipeType:  "HUVUDRÄTT",
		ProteinType: "KYCKLING",
		Ingredients: []models.RecipeIngredientDraft{
			{ReferenceID: 1, Text: "400 g kycklingfilé", Name: "kycklingfilé", Quantity: &qty, Unit: models.UnitGram},
			{ReferenceID: 2, Text: "1 röd paprika", Name: "röd paprika"},
		},
		Instructions: []models.RecipeInstructionDraft{
			{Step: 1, Text: "Bryn kycklingen tills den fått färg.", IngredientIDs: []int{1}},
			{Step: 2, Text: "Strimla paprikan och lägg i grytan.", IngredientIDs: []int{2}},
		},
	}
}

func seedChicken(t *testing.T, database *db.DB) {
	t.Helper()
	entries := []models.GeneratedIngredient{
		{Name: "kycklingfilé", DisplayNameSingular: "Kycklingfilé", DisplayNamePlural: "Kycklingfiléer",
			ShoppingUnit: models.ShoppingUnitGram, Category: "Kött & Fågel"},
	}
	if err := database.CreateIngredients(context.Background(), entries); err != nil {
		t.Fatalf("failed to seed dictionary: %v", err)
	}
}

func paprikaEntry() models.GeneratedIngredient {
	return models.GeneratedIngredient{
		Name: "röd paprika", DisplayNameSingular: "Röd paprika", DisplayNamePlural: "Röda paprikor",
		ShoppingUnit: models.ShoppingUnitPiece, Category: "Frukt & Grönt", Aliases: []string{"paprika röd"},
	}
}

const structuredPage = `<html><head><script type="application/ld+json">{
	"@type": "Recipe",
	"name": "Kycklinggryta",
	"recipeIngredient": ["400 g kycklingfilé", "1 röd paprika"],
	"recipeInstructions": ["Bryn kycklingen.", "Lägg i paprikan."]
}</script></head><body></body></html>`

const plainPage = `<html><body>
	<h1>Kycklinggryta</h1>
	<p>Bryn kycklingen tills den fått färg. Strimla paprikan och lägg i grytan.
	Sjud under lock i tjugo minuter och smaka av med salt och peppar.</p>
</body></html>`

func newTestService(t *testing.T, database *db.DB, rc *fakeRobots, pf *fakeFetcher, ex *fakeExtractor, gen *fakeGenerator) *Service {
	t.Helper()
	return NewService(database, rc, pf, ex, reconcile.NewEngine(database, gen, testLogger()), testLogger())
}

func TestImportStructuredPath(t *testing.T) {
	database := testDB(t)
	seedChicken(t, database)

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: structuredPage}
	ex := &fakeExtractor{recipe: extractedRecipe()}
	gen := &fakeGenerator{entries: []models.GeneratedIngredient{paprikaEntry()}}
	svc := newTestService(t, database, rc, pf, ex, gen)

	res, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.AlreadyExists {
		t.Error("AlreadyExists = true on first import")
	}
	if res.Slug != "kycklinggryta" {
		t.Errorf("Slug = %q", res.Slug)
	}

	if ex.structuredCalls != 1 || ex.htmlCalls != 0 {
		t.Errorf("extractor calls structured/html = %d/%d, want 1/0", ex.structuredCalls, ex.htmlCalls)
	}
	if ex.lastScraped == nil || ex.lastScraped.Name != "Kycklinggryta" {
		t.Errorf("structured payload = %+v", ex.lastScraped)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1 for the unknown paprika", gen.calls)
	}

	stored, err := database.GetRecipeBySourceURL(context.Background(), "https://example.com/recept/gryta")
	if err != nil {
		t.Fatalf("GetRecipeBySourceURL() error: %v", err)
	}
	if stored == nil || stored.CreatedBy != "anna" || !stored.IsImported {
		t.Errorf("stored recipe = %+v", stored)
	}
}

func TestImportAllIngredientsKnown(t *testing.T) {
	database := testDB(t)
	entries := []models.GeneratedIngredient{
		{Name: "mjöl", DisplayNameSingular: "Mjöl", DisplayNamePlural: "Mjöl",
			ShoppingUnit: models.ShoppingUnitKilogram, Category: "Skafferi"},
		{Name: "socker", DisplayNameSingular: "Socker", DisplayNamePlural: "Socker",
			ShoppingUnit: models.ShoppingUnitKilogram, Category: "Skafferi"},
		{Name: "ägg", DisplayNameSingular: "Ägg", DisplayNamePlural: "Ägg",
			ShoppingUnit: models.ShoppingUnitPiece, Category: "Mejeri & Ägg"},
	}
	if err := database.CreateIngredients(context.Background(), entries); err != nil {
		t.Fatalf("failed to seed dictionary: %v", err)
	}

	recipe := &models.GeneratedRecipe{
		Name:        "Sockerkaka",
		RecipeType:  "BAKVERK",
		ProteinType: "VEGETARISKT",
		Ingredients: []models.RecipeIngredientDraft{
			{ReferenceID: 1, Text: "3 dl mjöl", Name: "mjöl"},
			{ReferenceID: 2, Text: "2 dl socker", Name: "socker"},
			{ReferenceID: 3, Text: "3 ägg", Name: "ägg"},
		},
		Instructions: []models.RecipeInstructionDraft{
			{Step: 1, Text: "Blanda allt och grädda.", IngredientIDs: []int{1, 2, 3}},
		},
	}

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: structuredPage}
	ex := &fakeExtractor{recipe: recipe}
	gen := &fakeGenerator{}
	svc := newTestService(t, database, rc, pf, ex, gen)

	if _, err := svc.Import(context.Background(), "https://example.com/recept/kaka", "anna"); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("generator called %d times for fully known ingredients, want 0", gen.calls)
	}

	dictionary, err := database.ListIngredients(context.Background())
	if err != nil {
		t.Fatalf("ListIngredients() error: %v", err)
	}
	if len(dictionary) != 3 {
		t.Errorf("dictionary has %d entries after import, want the 3 seeded", len(dictionary))
	}

	recipes, ingredients, instructions, links, err := database.CountRecipeRows(context.Background())
	if err != nil {
		t.Fatalf("CountRecipeRows() error: %v", err)
	}
	if recipes != 1 || ingredients != 3 || instructions != 1 || links != 3 {
		t.Errorf("row counts = %d/%d/%d/%d, want 1/3/1/3", recipes, ingredients, instructions, links)
	}
}

func TestImportRawHTMLFallback(t *testing.T) {
	database := testDB(t)
	seedChicken(t, database)

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: plainPage}
	ex := &fakeExtractor{recipe: extractedRecipe()}
	gen := &fakeGenerator{entries: []models.GeneratedIngredient{paprikaEntry()}}
	svc := newTestService(t, database, rc, pf, ex, gen)

	res, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Slug != "kycklinggryta" {
		t.Errorf("Slug = %q", res.Slug)
	}

	if ex.structuredCalls != 0 || ex.htmlCalls != 1 {
		t.Errorf("extractor calls structured/html = %d/%d, want 0/1", ex.structuredCalls, ex.htmlCalls)
	}
	if ex.lastLanguage != "sv" {
		t.Errorf("detected language = %q, want sv", ex.lastLanguage)
	}
	if !strings.Contains(ex.lastText, "Bryn kycklingen") {
		t.Errorf("sanitized text lost content: %q", ex.lastText)
	}
}

func TestImportAlreadyImported(t *testing.T) {
	database := testDB(t)
	seedChicken(t, database)

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: structuredPage}
	ex := &fakeExtractor{recipe: extractedRecipe()}
	gen := &fakeGenerator{entries: []models.GeneratedIngredient{paprikaEntry()}}
	svc := newTestService(t, database, rc, pf, ex, gen)

	first, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	if err != nil {
		t.Fatalf("first Import() error: %v", err)
	}

	second, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	if err != nil {
		t.Fatalf("second Import() error: %v", err)
	}
	if !second.AlreadyExists {
		t.Error("AlreadyExists = false on repeat import")
	}
	if second.RecipeID != first.RecipeID {
		t.Errorf("repeat import returned recipe %d, want %d", second.RecipeID, first.RecipeID)
	}
	if pf.calls != 1 {
		t.Errorf("fetcher called %d times, want 1: repeat imports must not refetch", pf.calls)
	}
	if rc.calls != 1 {
		t.Errorf("robots checked %d times, want 1", rc.calls)
	}
}

func TestImportPermissionDenied(t *testing.T) {
	database := testDB(t)

	rc := &fakeRobots{allowed: false}
	pf := &fakeFetcher{html: structuredPage}
	ex := &fakeExtractor{recipe: extractedRecipe()}
	svc := newTestService(t, database, rc, pf, ex, &fakeGenerator{})

	_, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	if err == nil {
		t.Fatal("Import() succeeded despite denied permission")
	}

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if perr.Kind != KindPermissionDenied {
		t.Errorf("Kind = %v, want KindPermissionDenied", perr.Kind)
	}
	if perr.UserMessage() != "Sidan tillåter inte import av recept." {
		t.Errorf("UserMessage() = %q", perr.UserMessage())
	}
	if pf.calls != 0 {
		t.Errorf("fetcher called %d times after denial, want 0", pf.calls)
	}
}

func TestImportFetchFailure(t *testing.T) {
	database := testDB(t)

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{err: fmt.Errorf("connection refused")}
	svc := newTestService(t, database, rc, pf, &fakeExtractor{}, &fakeGenerator{})

	_, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != KindFetchFailure {
		t.Fatalf("error = %v, want KindFetchFailure", err)
	}
	if perr.UserMessage() != "Det gick inte att läsa in sidan." {
		t.Errorf("UserMessage() = %q", perr.UserMessage())
	}
}

func TestImportExtractionFailure(t *testing.T) {
	database := testDB(t)

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: plainPage}
	ex := &fakeExtractor{err: fmt.Errorf("no recipe on page")}
	svc := newTestService(t, database, rc, pf, ex, &fakeGenerator{})

	_, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != KindExtractionFailure {
		t.Fatalf("error = %v, want KindExtractionFailure", err)
	}
	if perr.UserMessage() != "Det gick inte att läsa receptet från länken." {
		t.Errorf("UserMessage() = %q", perr.UserMessage())
	}
}

func TestImportInvalidExtractionOutput(t *testing.T) {
	database := testDB(t)

	recipe := extractedRecipe()
	recipe.Instructions = nil

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: plainPage}
	ex := &fakeExtractor{recipe: recipe}
	svc := newTestService(t, database, rc, pf, ex, &fakeGenerator{})

	_, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != KindExtractionFailure {
		t.Fatalf("error = %v, want KindExtractionFailure for invalid output", err)
	}
}

func TestImportReconciliationFailure(t *testing.T) {
	database := testDB(t)
	seedChicken(t, database)

	rc := &fakeRobots{allowed: true}
	pf := &fakeFetcher{html: structuredPage}
	ex := &fakeExtractor{recipe: extractedRecipe()}
	// Generator that covers nothing: the paprika stays unresolved.
	svc := newTestService(t, database, rc, pf, ex, &fakeGenerator{})

	_, err := svc.Import(context.Background(), "https://example.com/recept/gryta", "anna")
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != KindIngredientResolution {
		t.Fatalf("error = %v, want KindIngredientResolution", err)
	}
	if perr.UserMessage() != "Något gick fel. Försök igen." {
		t.Errorf("UserMessage() = %q", perr.UserMessage())
	}

	// Nothing may have been persisted.
	stored, err2 := database.GetRecipeBySourceURL(context.Background(), "https://example.com/recept/gryta")
	if err2 != nil {
		t.Fatalf("GetRecipeBySourceURL() error: %v", err2)
	}
	if stored != nil {
		t.Error("a recipe was stored despite failed reconciliation")
	}
}
