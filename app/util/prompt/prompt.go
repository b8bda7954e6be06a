// Package prompt renders the embedded prompt templates.
package prompt

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

type Template struct {
	tmpl prompts.PromptTemplate
}

// MustParse builds a Go-template prompt that requires the listed variables.
// It renders once with placeholder values so syntax errors fail at startup.
func MustParse(text string, vars ...string) Template {
	t := Template{tmpl: prompts.NewPromptTemplate(text, vars)}

	probe := make(map[string]any, len(vars))
	for _, v := range vars {
		probe[v] = ""
	}
	if _, err := t.tmpl.Format(probe); err != nil {
		panic(fmt.Sprintf("prompt: invalid template: %v", err))
	}

	return t
}

func (t Template) Render(values map[string]any) (string, error) {
	result, err := t.tmpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return result, nil
}
