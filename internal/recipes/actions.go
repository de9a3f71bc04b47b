package recipes

import (
	"fmt"
	"strings"

	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
	"github.com/urfave/cli/v2"
)

// ListAction prints all stored recipes as a table.
func ListAction(c *cli.Context) error {
	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	database, err := db.Open(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	recipes, err := database.ListRecipes(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}

	if len(recipes) == 0 {
		fmt.Println("No recipes found")
		return nil
	}

	fmt.Printf("%-6s %-30s %-30s %-12s %-20s\n", "ID", "Slug", "Name", "Type", "Created")
	fmt.Println(strings.Repeat("-", 100))
	for _, r := range recipes {
		fmt.Printf("%-6d %-30s %-30s %-12s %-20s\n",
			r.ID, truncate(r.Slug, 30), truncate(r.Name, 30), r.RecipeType,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\nTotal: %d recipes\n", len(recipes))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
