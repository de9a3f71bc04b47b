// Package reconcile resolves the ingredient names an extraction produced
// against the canonical ingredient dictionary, generating dictionary entries
// on demand for names that are unknown.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/albla038/middagsflyt/models"
	"github.com/albla038/middagsflyt/pkg/db"
)

// Store is the dictionary surface reconciliation needs.
type Store interface {
	LookupNames(ctx context.Context, names []string) ([]db.NameMatch, error)
	CreateIngredients(ctx context.Context, entries []models.GeneratedIngredient) error
}

// Generator produces canonical dictionary entries for names that have no
// match, neither direct nor via alias.
type Generator interface {
	GenerateIngredients(ctx context.Context, names []string) ([]models.GeneratedIngredient, error)
}

// Engine runs the lookup, generate, insert, re-query cycle.
type Engine struct {
	store  Store
	gen    Generator
	logger *slog.Logger
}

func NewEngine(store Store, gen Generator, logger *slog.Logger) *Engine {
	return &Engine{store: store, gen: gen, logger: logger}
}

// Resolve maps every requested ingredient name to the canonical name it is
// stored under. Names already known, directly or through an alias, are never
// regenerated. Unknown names are sent to the generator in one batch and the
// results inserted atomically before a final lookup confirms full coverage.
func (e *Engine) Resolve(ctx context.Context, names []string) (map[string]string, error) {
	wanted := normalize(names)
	if len(wanted) == 0 {
		return nil, fmt.Errorf("no ingredient names to resolve")
	}

	resolved, err := e.lookup(ctx, wanted)
	if err != nil {
		return nil, err
	}

	missing := missingNames(wanted, resolved)
	if len(missing) == 0 {
		return resolved, nil
	}
	e.logger.Info("generating missing ingredients", "count", len(missing), "names", missing)

	entries, err := e.gen.GenerateIngredients(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ingredients: %w", err)
	}
	if err := coversAll(missing, entries); err != nil {
		return nil, err
	}
	if err := e.store.CreateIngredients(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to store generated ingredients: %w", err)
	}

	// Re-query instead of trusting the generation output: the stored rows are
	// the source of truth for canonical names.
	resolved, err = e.lookup(ctx, wanted)
	if err != nil {
		return nil, err
	}
	if gaps := missingNames(wanted, resolved); len(gaps) > 0 {
		return nil, fmt.Errorf("ingredients still unresolved after generation: %s", strings.Join(gaps, ", "))
	}
	return resolved, nil
}

func (e *Engine) lookup(ctx context.Context, names []string) (map[string]string, error) {
	matches, err := e.store.LookupNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	resolved := make(map[string]string, len(matches))
	for _, m := range matches {
		// A name can match at most one row, the names table is a single
		// primary-key namespace.
		resolved[m.Name] = m.CanonicalName
	}
	return resolved, nil
}

// normalize lowercases, trims, and deduplicates while keeping first-seen
// order. Empty names are dropped.
func normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func missingNames(wanted []string, resolved map[string]string) []string {
	var missing []string
	for _, name := range wanted {
		if _, ok := resolved[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// coversAll verifies that every requested name appears in the generation
// output, as an entry's canonical name or one of its aliases. Partial
// coverage aborts the whole reconciliation rather than leaving some recipe
// lines dangling.
func coversAll(requested []string, entries []models.GeneratedIngredient) error {
	covered := make(map[string]struct{})
	for _, entry := range entries {
		covered[entry.Name] = struct{}{}
		for _, alias := range entry.Aliases {
			covered[alias] = struct{}{}
		}
	}
	var gaps []string
	for _, name := range requested {
		if _, ok := covered[name]; !ok {
			gaps = append(gaps, name)
		}
	}
	if len(gaps) > 0 {
		sort.Strings(gaps)
		return fmt.Errorf("generation output does not cover: %s", strings.Join(gaps, ", "))
	}
	return nil
}
