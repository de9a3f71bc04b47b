package main

import (
	"fmt"
	"log"
	"os"

	"github.com/albla038/middagsflyt/internal/imports"
	"github.com/albla038/middagsflyt/internal/ingredients"
	"github.com/albla038/middagsflyt/internal/recipes"
	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "middagsflyt",
		Usage: "Import recipes from the web into a local cookbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import one or more recipe URLs",
				ArgsUsage: "[url ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "comma-separated list of URLs to import",
					},
					&cli.StringFlag{
						Name:  "owner",
						Value: "import",
						Usage: "user the imported recipes are created for",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 4,
						Usage: "number of concurrent import workers",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
				Action: imports.ImportAction,
			},
			{
				Name:   "recipes",
				Usage:  "List stored recipes",
				Action: recipes.ListAction,
			},
			{
				Name:   "ingredients",
				Usage:  "List the canonical ingredient dictionary",
				Action: ingredients.ListAction,
			},
			{
				Name:  "db",
				Usage: "Database maintenance",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Create the database and schema",
						Action: func(c *cli.Context) error {
							config, err := models.LoadConfig(c.String("config"))
							if err != nil {
								return err
							}
							database, err := db.Open(config.Database.Path)
							if err != nil {
								return err
							}
							defer database.Close()
							fmt.Printf("Database ready at %s\n", database.Path())
							return nil
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
