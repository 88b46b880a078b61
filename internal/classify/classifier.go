// Package classify defines the external AI classifier boundary. The pipeline
// sends one batch of uncategorized transactions per call and receives an
// ordered list of category labels of the same length; anything else is an
// error the caller must absorb with its deterministic fallback.
package classify

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is a single transaction handed to the classifier
type Item struct {
	Description string
	Amount      decimal.Decimal
}

// Classifier labels a batch of transactions with raw category strings. The
// labels are untrusted until validated against the fixed vocabulary by the
// caller.
type Classifier interface {
	ClassifyBatch(ctx context.Context, items []Item) ([]string, error)
}
