// Package qa answers natural-language questions about a dataset through
// the model backend. Answers are displayed as text, never executed, so
// no extraction or sanitization is involved.
package qa

import (
	"context"
	"fmt"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/provider"
)

// fallbackAnswer is returned when the backend produces empty output.
const fallbackAnswer = "Sorry, I couldn't find an answer to your question."

// Answerer contextualizes questions against a named table and forwards
// them to the model backend.
type Answerer struct {
	gen provider.Generator
}

// New creates an Answerer.
func New(gen provider.Generator) *Answerer {
	return &Answerer{gen: gen}
}

// Answer asks the backend a question about the named table. Empty
// questions are rejected before the service call; backend failures
// propagate verbatim.
func (a *Answerer) Answer(ctx context.Context, question, tableName string) (string, error) {
	if err := api.ValidateQuery(question); err != nil {
		return "", err
	}

	contextualized := fmt.Sprintf("Using the %s table, %s", tableName, question)
	answer, err := a.gen.Generate(ctx, contextualized)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallbackAnswer, nil
	}
	return answer, nil
}
