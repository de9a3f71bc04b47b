// Package models defines the shared data structures of the recipe import
// pipeline: configuration, the extraction output contract, and the scraped
// structured-metadata form.
package models

import (
	"fmt"
)

// Unit is a measurement unit on a recipe ingredient line.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitCentiliter Unit = "cl"
	UnitDeciliter  Unit = "dl"
	UnitLiter      Unit = "l"
	UnitKrm        Unit = "krm"
	UnitTsk        Unit = "tsk"
	UnitMsk        Unit = "msk"
	UnitPiece      Unit = "st"
	UnitPackage    Unit = "förp"
)

// Units lists every valid measurement unit, in the order presented to the
// extraction service.
var Units = []Unit{
	UnitGram, UnitKilogram, UnitMilliliter, UnitCentiliter, UnitDeciliter,
	UnitLiter, UnitKrm, UnitTsk, UnitMsk, UnitPiece, UnitPackage,
}

func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

// RecipeTypes classifies what kind of dish a recipe is.
var RecipeTypes = []string{
	"FÖRRÄTT", "HUVUDRÄTT", "EFTERRÄTT", "FRUKOST", "BAKVERK", "TILLBEHÖR", "DRYCK", "ÖVRIGT",
}

// ProteinTypes classifies the main protein of a recipe.
var ProteinTypes = []string{
	"KYCKLING", "NÖTKÖTT", "FLÄSK", "LAMM", "VILT", "FISK", "SKALDJUR", "VEGETARISKT", "VEGANSKT", "ANNAT",
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GeneratedRecipe is the canonical extraction output: the shape the
// text-extraction service must return regardless of whether it was fed
// structured metadata or sanitized HTML.
type GeneratedRecipe struct {
	Name                   string                   `json:"name"`
	Description            string                   `json:"description,omitempty"`
	Servings               int                      `json:"servings,omitempty"`
	RecipeType             string                   `json:"recipeType"`
	ProteinType            string                   `json:"proteinType"`
	ImageURL               string                   `json:"imageUrl,omitempty"`
	TotalTimeSeconds       int                      `json:"totalTimeSeconds,omitempty"`
	OvenTemperatureCelsius *int                     `json:"ovenTemperatureCelsius"`
	OriginalAuthor         string                   `json:"originalAuthor,omitempty"`
	Ingredients            []RecipeIngredientDraft  `json:"ingredients"`
	Instructions           []RecipeInstructionDraft `json:"instructions"`
}

// RecipeIngredientDraft is one ingredient line as extracted. ReferenceID is a
// recipe-local integer starting at 1; instructions cross-link to ingredients
// through it before any database identifiers exist.
type RecipeIngredientDraft struct {
	ReferenceID int      `json:"referenceId"`
	Text        string   `json:"text"`
	Name        string   `json:"name"`
	Note        string   `json:"note,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Unit        Unit     `json:"unit,omitempty"`
}

// RecipeInstructionDraft is one instruction step as extracted. IngredientIDs
// holds the reference ids of ingredients first used in this step.
type RecipeInstructionDraft struct {
	Step          int    `json:"step"`
	Text          string `json:"text"`
	IngredientIDs []int  `json:"ingredientIds,omitempty"`
}

// Validate enforces the output contract: required fields, enumerations, and
// reference-id closure between instructions and ingredients.
func (r *GeneratedRecipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe must have at least one ingredient")
	}
	if len(r.Instructions) == 0 {
		return fmt.Errorf("recipe must have at least one instruction")
	}
	if !contains(RecipeTypes, r.RecipeType) {
		return fmt.Errorf("invalid recipe type %q", r.RecipeType)
	}
	if !contains(ProteinTypes, r.ProteinType) {
		return fmt.Errorf("invalid protein type %q", r.ProteinType)
	}
	if r.Servings < 0 {
		return fmt.Errorf("servings must not be negative")
	}

	refIDs := make(map[int]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.ReferenceID < 1 {
			return fmt.Errorf("ingredient %q has reference id %d, must be >= 1", ing.Name, ing.ReferenceID)
		}
		if _, ok := refIDs[ing.ReferenceID]; ok {
			return fmt.Errorf("duplicate ingredient reference id %d", ing.ReferenceID)
		}
		refIDs[ing.ReferenceID] = struct{}{}
		if ing.Name == "" {
			return fmt.Errorf("ingredient %d is missing a lookup name", ing.ReferenceID)
		}
		if ing.Text == "" {
			return fmt.Errorf("ingredient %q is missing display text", ing.Name)
		}
		if ing.Quantity != nil && *ing.Quantity <= 0 {
			return fmt.Errorf("ingredient %q has non-positive quantity", ing.Name)
		}
		if ing.Unit != "" && !ing.Unit.Valid() {
			return fmt.Errorf("ingredient %q has invalid unit %q", ing.Name, ing.Unit)
		}
	}

	steps := make(map[int]struct{}, len(r.Instructions))
	for _, ins := range r.Instructions {
		if ins.Step < 1 {
			return fmt.Errorf("instruction step %d must be >= 1", ins.Step)
		}
		if _, ok := steps[ins.Step]; ok {
			return fmt.Errorf("duplicate instruction step %d", ins.Step)
		}
		steps[ins.Step] = struct{}{}
		if ins.Text == "" {
			return fmt.Errorf("instruction %d is missing text", ins.Step)
		}
		for _, id := range ins.IngredientIDs {
			if _, ok := refIDs[id]; !ok {
				return fmt.Errorf("instruction %d references unknown ingredient id %d", ins.Step, id)
			}
		}
	}

	return nil
}

// IngredientNames returns the canonical-lookup names of all ingredient lines,
// in reference-id order of appearance.
func (r *GeneratedRecipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}
