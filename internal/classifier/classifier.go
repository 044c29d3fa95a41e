// Package classifier turns one row of feedback text into a sentiment
// outcome. The remote backend talks to the hosted model with a bounded
// retry state machine; the vader backend scores locally and never
// touches the network.
package classifier

import (
	"context"

	"github.com/gkwang4912/speechwall/config"
	"github.com/gkwang4912/speechwall/internal/clients"
	"github.com/gkwang4912/speechwall/internal/models"
)

// Classifier is the capability the orchestrator depends on. Callers
// guarantee text is non-empty; empty rows are filtered and counted as
// skipped upstream. The returned error is non-nil only for context
// cancellation — classification dead ends come back as StatusFailed or
// StatusUnclassifiable results so one bad row never aborts the batch.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.RowResult, error)
}

// New picks the backend for the configured model.
func New(cfg *config.Config, client *clients.GeminiClient) Classifier {
	if cfg.Model == config.ModelVader {
		return NewVader()
	}
	return NewRemote(cfg, client)
}
