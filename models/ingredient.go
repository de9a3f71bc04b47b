package models

import (
	"fmt"
	"strings"
)

// ShoppingUnit is the unit an ingredient is bought in, used by shopping lists.
type ShoppingUnit string

const (
	ShoppingUnitPiece      ShoppingUnit = "st"
	ShoppingUnitGram       ShoppingUnit = "g"
	ShoppingUnitKilogram   ShoppingUnit = "kg"
	ShoppingUnitMilliliter ShoppingUnit = "ml"
	ShoppingUnitDeciliter  ShoppingUnit = "dl"
	ShoppingUnitLiter      ShoppingUnit = "l"
	ShoppingUnitPackage    ShoppingUnit = "förp"
)

var ShoppingUnits = []ShoppingUnit{
	ShoppingUnitPiece, ShoppingUnitGram, ShoppingUnitKilogram,
	ShoppingUnitMilliliter, ShoppingUnitDeciliter, ShoppingUnitLiter, ShoppingUnitPackage,
}

func (u ShoppingUnit) Valid() bool {
	for _, v := range ShoppingUnits {
		if u == v {
			return true
		}
	}
	return false
}

// IngredientCategories is the fixed grocery category list new dictionary
// entries are assigned from.
var IngredientCategories = []string{
	"Frukt & Grönt",
	"Mejeri & Ägg",
	"Kött & Fågel",
	"Fisk & Skaldjur",
	"Skafferi",
	"Bröd & Bageri",
	"Kryddor & Såser",
	"Fryst",
	"Dryck",
	"Övrigt",
}

// GeneratedIngredient is a canonical dictionary entry as synthesized by the
// text-extraction service for a previously unknown ingredient name.
type GeneratedIngredient struct {
	Name                string       `json:"name"`
	DisplayNameSingular string       `json:"displayNameSingular"`
	DisplayNamePlural   string       `json:"displayNamePlural"`
	ShoppingUnit        ShoppingUnit `json:"shoppingUnit"`
	Category            string       `json:"category"`
	Aliases             []string     `json:"aliases,omitempty"`
}

// Validate enforces the dictionary-entry contract. Canonical names are
// lowercase singular; aliases must not repeat the canonical name.
func (g *GeneratedIngredient) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if g.Name != strings.ToLower(g.Name) {
		return fmt.Errorf("ingredient name %q must be lowercase", g.Name)
	}
	if g.DisplayNameSingular == "" || g.DisplayNamePlural == "" {
		return fmt.Errorf("ingredient %q is missing display names", g.Name)
	}
	if !g.ShoppingUnit.Valid() {
		return fmt.Errorf("ingredient %q has invalid shopping unit %q", g.Name, g.ShoppingUnit)
	}
	if !contains(IngredientCategories, g.Category) {
		return fmt.Errorf("ingredient %q has invalid category %q", g.Name, g.Category)
	}
	seen := make(map[string]struct{}, len(g.Aliases))
	for _, alias := range g.Aliases {
		if alias == "" {
			return fmt.Errorf("ingredient %q has an empty alias", g.Name)
		}
		if alias == g.Name {
			return fmt.Errorf("ingredient %q lists itself as an alias", g.Name)
		}
		if _, ok := seen[alias]; ok {
			return fmt.Errorf("ingredient %q has duplicate alias %q", g.Name, alias)
		}
		seen[alias] = struct{}{}
	}
	return nil
}
