package recipe

import (
	"github.com/socialchef/cocktail-studio/internal/validation"
)

// Recipe is a single cocktail idea. Values are built once by the generator
// and never modified afterwards.
type Recipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Method      string   `json:"method"`
}

// template is one fixed recipe skeleton. Each func receives the sanitized
// ingredient and substitutes it verbatim.
type template struct {
	title       func(s string) string
	ingredients func(s string) []string
	method      string
}

// templates are emitted in this order for every non-empty input.
var templates = []template{
	{
		title: func(s string) string { return s + " Royale" },
		ingredients: func(s string) []string {
			return []string{"50ml vodka", "20ml licor de flor", "10g " + s + " syrup"}
		},
		method: "Shake com gelo, coar em taça resfriada, decorar com zeste",
	},
	{
		title: func(s string) string { return s + " Fumée" },
		ingredients: func(s string) []string {
			return []string{"40ml bourbon", "15ml vermute", "Infusão de " + s}
		},
		method: "Stir, servir sobre gelo, fumaça de madeira leve",
	},
	{
		title: func(s string) string { return s + " Spritz" },
		ingredients: func(s string) []string {
			return []string{"60ml prosecco", "30ml soda", "20ml cordial de " + s}
		},
		method: "Montar em copo com gelo, guarnecer com ervas",
	},
}

// GenerateMockRecipes returns the three template recipes for ingredient, in
// Royale, Fumée, Spritz order. The input is sanitized first; if nothing is
// left the result is an empty, non-nil slice.
func GenerateMockRecipes(ingredient string) []Recipe {
	safe := validation.Sanitize(ingredient)
	if safe == "" {
		return []Recipe{}
	}

	recipes := make([]Recipe, 0, len(templates))
	for _, t := range templates {
		recipes = append(recipes, Recipe{
			Title:       t.title(safe),
			Ingredients: t.ingredients(safe),
			Method:      t.method,
		})
	}
	return recipes
}
