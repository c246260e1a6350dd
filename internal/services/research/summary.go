package research

import (
	"fmt"

	"github.com/socialchef/cocktail-studio/internal/validation"
)

const summaryTemplate = "Resumo curto sobre '%s': a técnica envolve balancear acidez, doçura e corpo; " +
	"atenção a solubilidade de aromas e temperatura de serviço. " +
	"Sugestões práticas: testar em pequenas doses, documentar pH do xarope."

// Summarize returns the canned technical summary for query, or "" when the
// sanitized query is empty.
func Summarize(query string) string {
	safe := validation.Sanitize(query)
	if safe == "" {
		return ""
	}
	return fmt.Sprintf(summaryTemplate, safe)
}
