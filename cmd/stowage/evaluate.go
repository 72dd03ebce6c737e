package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// searchCase is one search-quality check: a query and the name tokens an
// acceptable top result must contain.
type searchCase struct {
	query    string
	expected []string
	kind     string
}

var searchCases = []searchCase{
	// Semantic queries: related products should surface even without exact
	// token overlap.
	{query: "electric scooter", expected: []string{"scooter"}, kind: "semantic"},
	{query: "hoverboard", expected: []string{"hover", "swag"}, kind: "semantic"},
	{query: "kids toy", expected: []string{"kid", "toy", "child"}, kind: "semantic"},
	{query: "pet accessories", expected: []string{"dog", "pet", "costume"}, kind: "semantic"},

	// Keyword parity: exact brand/model queries must rank the named product
	// first regardless of tier.
	{query: "Segway Ninebot", expected: []string{"segway ninebot"}, kind: "keyword"},
	{query: "Swagtron", expected: []string{"swagtron"}, kind: "keyword"},
	{query: "Razor scooter", expected: []string{"razor"}, kind: "keyword"},
}

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate search quality against built-in cases",
		Long: `Run each built-in search case through the lookup pipeline and report
whether the top result matches, with per-query latency. Useful after
reindexing or tuning.`,
		RunE: runEvaluate,
	}
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	engine, err := buildSearchEngine(store)
	if err != nil {
		return err
	}

	passed := 0
	byKind := map[string][2]int{}
	for _, tc := range searchCases {
		start := time.Now()
		result, err := engine.Lookup(ctx, tc.query)
		latency := time.Since(start)

		counts := byKind[tc.kind]
		counts[1]++

		switch {
		case err != nil:
			cmd.Printf("FAIL: %q - lookup error: %v\n", tc.query, err)
		case !result.Found:
			cmd.Printf("FAIL: %q - no results found\n", tc.query)
		default:
			name := result.BestMatch.ProductName
			ok := containsAny(name, tc.expected)
			status := "FAIL"
			if ok {
				status = "PASS"
				passed++
				counts[0]++
			}
			cmd.Printf("%s: %q\n", status, tc.query)
			cmd.Printf("  Top result: %s\n", truncate(name, 60))
			cmd.Printf("  Similarity: %.2f, Latency: %dms\n",
				result.BestMatch.Similarity, latency.Milliseconds())
		}
		byKind[tc.kind] = counts
	}

	cmd.Println(strings.Repeat("=", 60))
	for _, kind := range []string{"semantic", "keyword"} {
		counts := byKind[kind]
		cmd.Printf("%-9s tests: %d/%d passed\n", kind, counts[0], counts[1])
	}
	cmd.Printf("Total:          %d/%d passed\n", passed, len(searchCases))
	return nil
}

func containsAny(name string, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, token := range tokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
