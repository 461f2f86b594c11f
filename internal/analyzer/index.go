package analyzer

import (
	"context"
	"fmt"

	"github.com/jgillick/jwalk/internal/graph"
)

// IndexSummary counts what IndexResults wrote.
type IndexSummary struct {
	Files   int
	Skipped int
}

// IndexResults initializes the schema of s and writes every successful
// result, replacing whatever the store held for the same paths.
func IndexResults(ctx context.Context, s graph.Store, results []Result) (IndexSummary, error) {
	var sum IndexSummary
	if err := s.InitSchema(ctx); err != nil {
		return sum, fmt.Errorf("init schema: %w", err)
	}
	for _, r := range results {
		if r.Err != nil || r.File == nil {
			sum.Skipped++
			continue
		}
		if err := graph.WriteScriptFile(ctx, s, r.File); err != nil {
			return sum, fmt.Errorf("index %s: %w", r.Path, err)
		}
		sum.Files++
	}
	return sum, nil
}
