package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/albla038/middagsflyt/models"
)

// Recipe is the persisted recipe row.
type Recipe struct {
	ID               int64
	Slug             string
	Name             string
	Description      string
	Servings         int
	RecipeType       string
	ProteinType      string
	ImageURL         string
	TotalTimeSeconds int
	OvenTempCelsius  sql.NullInt64
	OriginalAuthor   string
	SourceURL        string
	IsImported       bool
	Language         string
	CreatedBy        string
	CreatedAt        time.Time
}

// CreateRecipeArgs carries everything the persistence transaction needs: the
// validated extraction output, its provenance, and the name to canonical name
// resolution map produced by reconciliation.
type CreateRecipeArgs struct {
	Recipe    *models.GeneratedRecipe
	SourceURL string
	Language  string
	CreatedBy string
	Resolved  map[string]string
}

// GetRecipeBySourceURL returns the recipe previously imported from sourceURL,
// or nil when none exists. This backs the already-imported gate that runs
// before any fetching.
func (db *DB) GetRecipeBySourceURL(ctx context.Context, sourceURL string) (*Recipe, error) {
	return db.getRecipe(ctx, "source_url = ?", sourceURL)
}

// GetRecipeBySlug returns the recipe with the given slug, or nil.
func (db *DB) GetRecipeBySlug(ctx context.Context, slug string) (*Recipe, error) {
	return db.getRecipe(ctx, "slug = ?", slug)
}

func (db *DB) getRecipe(ctx context.Context, where string, arg any) (*Recipe, error) {
	var r Recipe
	var description, imageURL, originalAuthor, sourceURL, language sql.NullString
	var servings, totalTime sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT recipe_id, slug, name, description, servings, recipe_type, protein_type,
			image_url, total_time_seconds, oven_temp_celsius, original_author,
			source_url, is_imported, language, created_by, created_at
		FROM recipes WHERE `+where, arg).Scan(
		&r.ID, &r.Slug, &r.Name, &description, &servings, &r.RecipeType, &r.ProteinType,
		&imageURL, &totalTime, &r.OvenTempCelsius, &originalAuthor,
		&sourceURL, &r.IsImported, &language, &r.CreatedBy, &r.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	r.Description = description.String
	r.Servings = int(servings.Int64)
	r.ImageURL = imageURL.String
	r.TotalTimeSeconds = int(totalTime.Int64)
	r.OriginalAuthor = originalAuthor.String
	r.SourceURL = sourceURL.String
	r.Language = language.String
	return &r, nil
}

// CreateImportedRecipe creates the recipe, its ingredient line items, and its
// instruction steps as one atomic unit. Slug resolution happens inside the
// same transaction as the inserts so concurrent imports of similarly named
// recipes serialize on commit. On success the recipe is re-read to confirm
// existence before being returned.
func (db *DB) CreateImportedRecipe(ctx context.Context, args CreateRecipeArgs) (*Recipe, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slug, err := resolveSlug(ctx, tx, Slugify(args.Recipe.Name))
	if err != nil {
		return nil, err
	}

	var ovenTemp sql.NullInt64
	if args.Recipe.OvenTemperatureCelsius != nil {
		ovenTemp = sql.NullInt64{Int64: int64(*args.Recipe.OvenTemperatureCelsius), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (slug, name, description, servings, recipe_type, protein_type,
			image_url, total_time_seconds, oven_temp_celsius, original_author,
			source_url, is_imported, language, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, slug, args.Recipe.Name, NewNullString(args.Recipe.Description), NewNullInt64(args.Recipe.Servings),
		args.Recipe.RecipeType, args.Recipe.ProteinType, NewNullString(args.Recipe.ImageURL),
		NewNullInt64(args.Recipe.TotalTimeSeconds), ovenTemp, NewNullString(args.Recipe.OriginalAuthor),
		NewNullString(args.SourceURL), NewNullString(args.Language), args.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}
	recipeID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe id: %w", err)
	}

	// Reference id -> recipe_ingredient row id, built as rows are inserted.
	rowIDs := make(map[int]int64, len(args.Recipe.Ingredients))
	for _, line := range args.Recipe.Ingredients {
		canonical, ok := args.Resolved[line.Name]
		if !ok {
			// Reconciliation guarantees coverage; a gap here is an invariant
			// violation, not a skippable line.
			return nil, fmt.Errorf("no canonical ingredient resolved for %q", line.Name)
		}
		var ingredientID int64
		err := tx.QueryRowContext(ctx,
			"SELECT ingredient_id FROM ingredients WHERE name = ?", canonical,
		).Scan(&ingredientID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve canonical ingredient %q: %w", canonical, err)
		}

		var quantity sql.NullFloat64
		if line.Quantity != nil {
			quantity = sql.NullFloat64{Float64: *line.Quantity, Valid: true}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, display_order, text, note, quantity, unit, ingredient_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, recipeID, line.ReferenceID, line.Text, NewNullString(line.Note), quantity, NewNullString(string(line.Unit)), ingredientID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ingredient line %d: %w", line.ReferenceID, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get ingredient line id: %w", err)
		}
		rowIDs[line.ReferenceID] = rowID
	}

	for _, ins := range args.Recipe.Instructions {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_instructions (recipe_id, step, text) VALUES (?, ?, ?)
		`, recipeID, ins.Step, ins.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to insert instruction %d: %w", ins.Step, err)
		}
		instructionID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get instruction id: %w", err)
		}

		for _, refID := range ins.IngredientIDs {
			rowID, ok := rowIDs[refID]
			if !ok {
				return nil, fmt.Errorf("instruction %d references unknown ingredient id %d", ins.Step, refID)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO instruction_ingredients (instruction_id, recipe_ingredient_id) VALUES (?, ?)
			`, instructionID, rowID); err != nil {
				return nil, fmt.Errorf("failed to link instruction %d to ingredient %d: %w", ins.Step, refID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe creation: %w", err)
	}

	// Re-read after commit: guards against drivers that do not surface every
	// failure class from the write calls themselves.
	created, err := db.GetRecipeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("recipe %q not found after commit", slug)
	}
	return created, nil
}

// resolveSlug finds the first free slug for base: the base itself, then
// base-2, base-3, and so on. Runs inside the creation transaction.
func resolveSlug(ctx context.Context, tx *sql.Tx, base string) (string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT slug FROM recipes WHERE slug = ? OR slug LIKE ?", base, base+"-%")
	if err != nil {
		return "", fmt.Errorf("failed to query existing slugs: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return "", fmt.Errorf("failed to scan slug: %w", err)
		}
		taken[slug] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read existing slugs: %w", err)
	}

	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// RecipeSummary is one row of a recipe listing.
type RecipeSummary struct {
	ID         int64
	Slug       string
	Name       string
	RecipeType string
	IsImported bool
	SourceURL  string
	CreatedAt  time.Time
}

// ListRecipes returns all recipes, newest first.
func (db *DB) ListRecipes(ctx context.Context) ([]RecipeSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT recipe_id, slug, name, recipe_type, is_imported, source_url, created_at
		FROM recipes ORDER BY created_at DESC, recipe_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var out []RecipeSummary
	for rows.Next() {
		var r RecipeSummary
		var sourceURL sql.NullString
		if err := rows.Scan(&r.ID, &r.Slug, &r.Name, &r.RecipeType, &r.IsImported, &sourceURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		r.SourceURL = sourceURL.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRecipeRows returns row counts for a recipe's aggregate parts. Used by
// tests to assert transactional atomicity.
func (db *DB) CountRecipeRows(ctx context.Context) (recipes, ingredients, instructions, links int, err error) {
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes").Scan(&recipes); err != nil {
		return
	}
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipe_ingredients").Scan(&ingredients); err != nil {
		return
	}
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipe_instructions").Scan(&instructions); err != nil {
		return
	}
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM instruction_ingredients").Scan(&links)
	return
}
