package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/helpers"
)

// GalleryService pages through the news and perks image lists
type GalleryService interface {
	ListNews(ctx context.Context, page, size int) (*dto.PaginatedResponse, error)
	ListPerks(ctx context.Context, page, size int) (*dto.PaginatedResponse, error)
}

type galleryServiceImpl struct {
	news   repositories.IMediaRepository
	perks  repositories.IMediaRepository
	logger zerolog.Logger
}

// NewGalleryService creates a new GalleryService
func NewGalleryService(news, perks repositories.IMediaRepository, logger zerolog.Logger) GalleryService {
	return &galleryServiceImpl{
		news:   news,
		perks:  perks,
		logger: logger,
	}
}

func (s *galleryServiceImpl) ListNews(ctx context.Context, page, size int) (*dto.PaginatedResponse, error) {
	return s.list(ctx, s.news, page, size)
}

func (s *galleryServiceImpl) ListPerks(ctx context.Context, page, size int) (*dto.PaginatedResponse, error) {
	return s.list(ctx, s.perks, page, size)
}

func (s *galleryServiceImpl) list(ctx context.Context, repo repositories.IMediaRepository, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := repo.ListItems(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}
