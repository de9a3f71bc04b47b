package imports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
	"github.com/albla038/middagsflyt/pkg/fetcher"
	"github.com/albla038/middagsflyt/pkg/llm"
	"github.com/albla038/middagsflyt/pkg/pipeline"
	"github.com/albla038/middagsflyt/pkg/reconcile"
	"github.com/albla038/middagsflyt/pkg/robots"
	"github.com/urfave/cli/v2"
)

// ImportAction imports one or more recipe URLs. URLs come from positional
// arguments or the comma-separated --urls flag.
func ImportAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	urls := c.Args().Slice()
	if c.IsSet("urls") {
		for _, u := range strings.Split(c.String("urls"), ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("no urls given: pass them as arguments or with --urls")
	}

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	database, err := db.Open(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	client := llm.NewClient(config.LLM, logger)
	svc := pipeline.NewService(
		database,
		robots.NewChecker(config.Crawler.UserAgent, config.Crawler.Timeout()),
		fetcher.NewFetcher(config.Crawler.UserAgent, config.Crawler.Timeout()),
		client,
		reconcile.NewEngine(database, client, logger),
		logger,
	)

	results := run(context.Background(), logger, svc, c.String("owner"), urls, c.Int("workers"))

	var failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("FAIL  %s\n      %s\n", r.URL, userMessage(r.Err))
		case r.Recipe.AlreadyExists:
			fmt.Printf("SKIP  %s\n      finns redan som %q\n", r.URL, r.Recipe.Slug)
		default:
			fmt.Printf("OK    %s\n      sparat som %q\n", r.URL, r.Recipe.Slug)
		}
	}
	fmt.Printf("\n%d imported, %d failed\n", len(results)-failures, failures)

	if failures > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// userMessage extracts the fixed user-facing message from a pipeline error.
func userMessage(err error) string {
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		return perr.UserMessage()
	}
	return "Något gick fel. Försök igen."
}
