package jsonld

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wrap(blocks ...string) string {
	html := "<html><head>"
	for _, b := range blocks {
		html += `<script type="application/ld+json">` + b + `</script>`
	}
	return html + "</head><body></body></html>"
}

const validBlock = `{
	"@context": "https://schema.org",
	"@type": "Recipe",
	"name": "Kycklinggryta",
	"description": "En krämig gryta.",
	"recipeYield": "4 portioner",
	"totalTime": "PT45M",
	"image": ["https://example.com/bild.jpg"],
	"author": {"@type": "Person", "name": "Anna Andersson"},
	"recipeIngredient": ["400 g kycklingfilé", "2 dl grädde"],
	"recipeInstructions": [
		{"@type": "HowToStep", "text": "Bryn kycklingen."},
		{"@type": "HowToStep", "text": "Häll i grädden."}
	]
}`

func TestExtractRecipeValidBlock(t *testing.T) {
	scraped, err := ExtractRecipe(wrap(validBlock), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped == nil {
		t.Fatal("ExtractRecipe() = nil, want recipe")
	}
	if scraped.Name != "Kycklinggryta" {
		t.Errorf("Name = %q", scraped.Name)
	}
	if scraped.Yield != 4 {
		t.Errorf("Yield = %d, want 4", scraped.Yield)
	}
	if scraped.TotalTimeSeconds != 45*60 {
		t.Errorf("TotalTimeSeconds = %d, want 2700", scraped.TotalTimeSeconds)
	}
	if scraped.ImageURL != "https://example.com/bild.jpg" {
		t.Errorf("ImageURL = %q", scraped.ImageURL)
	}
	if scraped.Author != "Anna Andersson" {
		t.Errorf("Author = %q", scraped.Author)
	}
	if len(scraped.Ingredients) != 2 || len(scraped.Instructions) != 2 {
		t.Errorf("ingredients/instructions = %d/%d, want 2/2", len(scraped.Ingredients), len(scraped.Instructions))
	}
}

func TestExtractRecipeNoMetadata(t *testing.T) {
	scraped, err := ExtractRecipe("<html><body><h1>Recept</h1></body></html>", testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped != nil {
		t.Errorf("ExtractRecipe() = %+v, want nil", scraped)
	}
}

func TestExtractRecipeWrongType(t *testing.T) {
	block := `{"@type": "Article", "name": "Om mat", "recipeIngredient": ["x"], "recipeInstructions": ["y"]}`
	scraped, err := ExtractRecipe(wrap(block), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped != nil {
		t.Error("ExtractRecipe() accepted a non-Recipe block")
	}
}

func TestExtractRecipeSchemaInvalidSkipped(t *testing.T) {
	// Recipe typed but missing instructions: skip it and use the next block.
	invalid := `{"@type": "Recipe", "name": "Halvfärdig", "recipeIngredient": ["x"]}`
	scraped, err := ExtractRecipe(wrap(invalid, validBlock), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped == nil || scraped.Name != "Kycklinggryta" {
		t.Errorf("ExtractRecipe() = %+v, want the later valid block", scraped)
	}
}

func TestExtractRecipeFirstValidWins(t *testing.T) {
	second := `{"@type": "Recipe", "name": "Andra receptet", "recipeIngredient": ["a"], "recipeInstructions": ["b"]}`
	scraped, err := ExtractRecipe(wrap(validBlock, second), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped == nil || scraped.Name != "Kycklinggryta" {
		t.Errorf("ExtractRecipe() = %+v, want first valid block", scraped)
	}
}

func TestExtractRecipeGraphContainer(t *testing.T) {
	block := `{"@context": "https://schema.org", "@graph": [
		{"@type": "WebPage", "name": "Sidan"},
		{"@type": ["Recipe", "Thing"], "name": "Grytan",
		 "recipeIngredient": ["1 lök"], "recipeInstructions": "Hacka löken."}
	]}`
	scraped, err := ExtractRecipe(wrap(block), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped == nil || scraped.Name != "Grytan" {
		t.Errorf("ExtractRecipe() = %+v, want recipe from @graph", scraped)
	}
	if len(scraped.Instructions) != 1 || scraped.Instructions[0] != "Hacka löken." {
		t.Errorf("Instructions = %v", scraped.Instructions)
	}
}

func TestExtractRecipeTrailingCommaRepaired(t *testing.T) {
	block := `{
		"@type": "Recipe",
		"name": "Trasig men läsbar",
		"recipeIngredient": ["1 morot",],
		"recipeInstructions": ["Riv moroten.",],
	}`
	scraped, err := ExtractRecipe(wrap(block), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped == nil || scraped.Name != "Trasig men läsbar" {
		t.Errorf("ExtractRecipe() = %+v, want repaired block", scraped)
	}
}

func TestExtractRecipeUnrepairableSkipped(t *testing.T) {
	scraped, err := ExtractRecipe(wrap(`{"@type": "Recipe", "name": `), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped != nil {
		t.Error("ExtractRecipe() produced a recipe from garbage")
	}
}

func TestExtractRecipeHowToSections(t *testing.T) {
	block := `{"@type": "Recipe", "name": "Paj",
		"recipeIngredient": ["3 dl mjöl"],
		"recipeInstructions": [
			{"@type": "HowToSection", "name": "Degen", "itemListElement": [
				{"@type": "HowToStep", "text": "Blanda mjölet."},
				{"@type": "HowToStep", "text": "Kavla ut."}
			]},
			{"@type": "HowToStep", "text": "Grädda."}
		]}`
	scraped, err := ExtractRecipe(wrap(block), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped == nil {
		t.Fatal("ExtractRecipe() = nil")
	}
	want := []string{"Blanda mjölet.", "Kavla ut.", "Grädda."}
	if len(scraped.Instructions) != len(want) {
		t.Fatalf("Instructions = %v, want %v", scraped.Instructions, want)
	}
	for i := range want {
		if scraped.Instructions[i] != want[i] {
			t.Errorf("Instructions[%d] = %q, want %q", i, scraped.Instructions[i], want[i])
		}
	}
}

func TestExtractRecipePrepCookFallback(t *testing.T) {
	block := `{"@type": "Recipe", "name": "Soppa",
		"prepTime": "PT15M", "cookTime": "PT30M",
		"recipeIngredient": ["1 potatis"], "recipeInstructions": ["Koka."]}`
	scraped, err := ExtractRecipe(wrap(block), testLogger())
	if err != nil {
		t.Fatalf("ExtractRecipe() error: %v", err)
	}
	if scraped.TotalTimeSeconds != 45*60 {
		t.Errorf("TotalTimeSeconds = %d, want 2700", scraped.TotalTimeSeconds)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "PT45M", want: 2700},
		{in: "PT1H30M", want: 5400},
		{in: "PT90S", want: 90},
		{in: "P1DT2H", want: 93600},
		{in: "PT0.5S", want: 0},
		{in: "PT", wantErr: true},
		{in: "45 min", wantErr: true},
		{in: "", wantErr: true},
		{in: "P1M", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseDuration(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
