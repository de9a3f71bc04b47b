package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/albla038/middagsflyt/models"
)

// Ingredient is a canonical dictionary entry as stored.
type Ingredient struct {
	ID                  int64
	Name                string
	DisplayNameSingular string
	DisplayNamePlural   string
	ShoppingUnit        string
	Category            string
	CreatedAt           time.Time
}

// NameMatch is one row of a name lookup: the requested name, the canonical
// name it resolves to, and whether the hit was direct or via an alias.
type NameMatch struct {
	Name          string
	CanonicalName string
	Kind          string
}

// LookupNames matches the requested names simultaneously against canonical
// names and aliases. The result contains one entry per matched requested
// name; unmatched names are simply absent.
func (db *DB) LookupNames(ctx context.Context, names []string) ([]NameMatch, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = name
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT n.name, i.name, n.kind
		FROM ingredient_names n
		JOIN ingredients i ON n.ingredient_id = i.ingredient_id
		WHERE n.name IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ingredient names: %w", err)
	}
	defer rows.Close()

	var matches []NameMatch
	for rows.Next() {
		var m NameMatch
		if err := rows.Scan(&m.Name, &m.CanonicalName, &m.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan name match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CreateIngredients persists generated dictionary entries and their aliases
// in one transaction. If any entry fails (including a uniqueness violation on
// the shared name/alias namespace), none are committed.
func (db *DB) CreateIngredients(ctx context.Context, entries []models.GeneratedIngredient) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (name, display_name_singular, display_name_plural, shopping_unit, category)
			VALUES (?, ?, ?, ?, ?)
		`, entry.Name, entry.DisplayNameSingular, entry.DisplayNamePlural, string(entry.ShoppingUnit), entry.Category)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient %q: %w", entry.Name, err)
		}
		ingredientID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get ingredient id for %q: %w", entry.Name, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ingredient_names (name, ingredient_id, kind) VALUES (?, ?, 'canonical')
		`, entry.Name, ingredientID); err != nil {
			return fmt.Errorf("failed to register canonical name %q: %w", entry.Name, err)
		}
		for _, alias := range entry.Aliases {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO ingredient_names (name, ingredient_id, kind) VALUES (?, ?, 'alias')
			`, alias, ingredientID); err != nil {
				return fmt.Errorf("failed to register alias %q for %q: %w", alias, entry.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingredient creation: %w", err)
	}
	return nil
}

// GetIngredientByName returns the canonical entry for an exact name, or nil
// when it does not exist.
func (db *DB) GetIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	var ing Ingredient
	err := db.QueryRowContext(ctx, `
		SELECT ingredient_id, name, display_name_singular, display_name_plural, shopping_unit, category, created_at
		FROM ingredients WHERE name = ?
	`, name).Scan(&ing.ID, &ing.Name, &ing.DisplayNameSingular, &ing.DisplayNamePlural, &ing.ShoppingUnit, &ing.Category, &ing.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ingredient %q: %w", name, err)
	}
	return &ing, nil
}

// ListIngredients returns the whole dictionary in name order.
func (db *DB) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT ingredient_id, name, display_name_singular, display_name_plural, shopping_unit, category, created_at
		FROM ingredients ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.DisplayNameSingular, &ing.DisplayNamePlural, &ing.ShoppingUnit, &ing.Category, &ing.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}
