package ingredients

import (
	"fmt"
	"strings"

	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
	"github.com/urfave/cli/v2"
)

// ListAction prints the canonical ingredient dictionary.
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

	entries, err := database.ListIngredients(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list ingredients: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No ingredients found")
		return nil
	}

	fmt.Printf("%-6s %-25s %-20s %-8s %-20s\n", "ID", "Name", "Singular", "Unit", "Category")
	fmt.Println(strings.Repeat("-", 85))
	for _, ing := range entries {
		fmt.Printf("%-6d %-25s %-20s %-8s %-20s\n",
			ing.ID, ing.Name, ing.DisplayNameSingular, ing.ShoppingUnit, ing.Category)
	}
	fmt.Printf("\nTotal: %d ingredients\n", len(entries))
	return nil
}
