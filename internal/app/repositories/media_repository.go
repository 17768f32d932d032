package repositories

import (
	"context"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
)

// IMediaRepository pages through news or perks images
type IMediaRepository interface {
	ListItems(ctx context.Context, offset uint64, limit int) ([]models.MediaItem, int64, error)
	SaveItem(ctx context.Context, item *models.MediaItem) error
}

// MediaRepository reads one image collection
type MediaRepository struct {
	store      docstore.Store
	collection string
}

// NewNewsRepository reads the news collection
func NewNewsRepository(store docstore.Store) *MediaRepository {
	return &MediaRepository{store: store, collection: models.CollectionNews}
}

// NewPerksRepository reads the perks collection
func NewPerksRepository(store docstore.Store) *MediaRepository {
	return &MediaRepository{store: store, collection: models.CollectionPerks}
}

// ListItems returns one page of items in creation order and the total count
func (r *MediaRepository) ListItems(ctx context.Context, offset uint64, limit int) ([]models.MediaItem, int64, error) {
	docs, total, err := r.store.ListDocuments(ctx, r.collection, offset, limit)
	if err != nil {
		return nil, 0, fetchFailed("listing "+r.collection, err)
	}

	items := make([]models.MediaItem, 0, len(docs))
	for _, doc := range docs {
		var item models.MediaItem
		if err := doc.Decode(&item); err != nil {
			logger.Warn().Err(err).Str("collection", r.collection).Str("id", doc.ID).Msg("Skipping malformed media item")
			continue
		}
		if item.URL == "" {
			continue
		}
		item.ID = doc.ID
		items = append(items, item)
	}
	return items, total, nil
}

// SaveItem writes an item under its id
func (r *MediaRepository) SaveItem(ctx context.Context, item *models.MediaItem) error {
	return putDocument(ctx, r.store, r.collection, item.ID, item)
}
