package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
)

// fetchFailed marks a document store failure. The cause stays reachable
// through errors.Is so timeouts can be told apart.
func fetchFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrFetchFailed, op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrDocumentNotFound)
}

// decodeAll decodes every document into T, skipping malformed ones.
func decodeAll[T any](docs []docstore.Document) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			logger.Warn().Err(err).Str("collection", doc.Collection).Str("id", doc.ID).Msg("Skipping malformed document")
			continue
		}
		out = append(out, v)
	}
	return out
}

// putDocument encodes v and stores it under collection/id.
func putDocument(ctx context.Context, store docstore.Store, collection, id string, v interface{}) error {
	data, err := docstore.Encode(v)
	if err != nil {
		return err
	}
	if err := store.SetDocument(ctx, collection, id, data, false); err != nil {
		logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error writing document")
		return fmt.Errorf("error writing %s/%s: %w", collection, id, err)
	}
	return nil
}
