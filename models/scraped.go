package models

// ScrapedRecipe is the normalized form of an embedded JSON-LD Recipe block.
// Durations are already converted to plain seconds; downstream consumers never
// see ISO-8601.
type ScrapedRecipe struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Ingredients      []string `json:"ingredients"`
	Instructions     []string `json:"instructions"`
	Yield            int      `json:"yield,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Author           string   `json:"author,omitempty"`
	TotalTimeSeconds int      `json:"totalTimeSeconds,omitempty"`
	Category         string   `json:"category,omitempty"`
	Cuisine          string   `json:"cuisine,omitempty"`
}

// Valid reports whether the block carries the minimum a recipe needs:
// a name, at least one ingredient and at least one instruction.
func (s *ScrapedRecipe) Valid() bool {
	return s.Name != "" && len(s.Ingredients) > 0 && len(s.Instructions) > 0
}
