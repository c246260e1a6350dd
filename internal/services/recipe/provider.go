package recipe

import "context"

// ProviderType represents the kind of ideation backend
type ProviderType string

const (
	ProviderTemplate ProviderType = "template"
)

// Provider defines the interface for recipe ideation backends
type Provider interface {
	Ideate(ctx context.Context, ingredient string) ([]Recipe, error)
}

// TemplateProvider answers ideation requests from the fixed recipe templates.
// It never fails.
type TemplateProvider struct{}

// NewTemplateProvider creates a new template provider
func NewTemplateProvider() *TemplateProvider {
	return &TemplateProvider{}
}

// Ideate delegates to GenerateMockRecipes
func (p *TemplateProvider) Ideate(_ context.Context, ingredient string) ([]Recipe, error) {
	return GenerateMockRecipes(ingredient), nil
}

// Type reports the provider kind
func (p *TemplateProvider) Type() ProviderType {
	return ProviderTemplate
}
