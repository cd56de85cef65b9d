package port

import (
	"context"

	"freightsnap/internal/domain"
)

// Normalizer turns free-form document text into the common extraction
// schema by invoking a hosted language model. documentText must be
// non-empty after trimming and at least ten characters; the caller
// enforces that precondition before dispatching.
type Normalizer interface {
	Normalize(ctx context.Context, documentText, sourceName string) (*domain.ExtractedDocument, error)
}
