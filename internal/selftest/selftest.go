// Package selftest runs the built-in sanity checks exposed at /api/selftest.
package selftest

import (
	"strings"

	"github.com/socialchef/cocktail-studio/internal/services/recipe"
	"github.com/socialchef/cocktail-studio/internal/validation"
)

// Result is the outcome of one check.
type Result struct {
	Name     string `json:"name"`
	Pass     bool   `json:"pass"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

// Run executes every check and returns the results in a fixed order.
func Run() []Result {
	var results []Result

	s1 := validation.Sanitize("  lime \n")
	results = append(results, Result{
		Name: "sanitize trims whitespace", Pass: s1 == "lime", Expected: "lime", Actual: s1,
	})

	s2 := validation.Sanitize("\u0000te\u0001st")
	results = append(results, Result{
		Name: "sanitize removes control chars", Pass: s2 == "test", Expected: "test", Actual: s2,
	})

	recs := recipe.GenerateMockRecipes("maracujá")
	results = append(results, Result{
		Name: "generateMockRecipes returns 3 items", Pass: len(recs) == 3, Expected: 3, Actual: len(recs),
	})

	allTitles := len(recs) > 0
	for _, r := range recs {
		if !strings.Contains(r.Title, "maracujá") {
			allTitles = false
		}
	}
	results = append(results, Result{
		Name: "titles contain ingredient", Pass: allTitles, Expected: true, Actual: allTitles,
	})

	empty := recipe.GenerateMockRecipes("")
	results = append(results, Result{
		Name: "generateMockRecipes with empty returns []", Pass: empty != nil && len(empty) == 0, Expected: 0, Actual: len(empty),
	})

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}
