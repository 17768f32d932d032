package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/helpers"
)

// GalleryController serves the news and perks image lists
type GalleryController struct {
	galleryService services.GalleryService
	logger         zerolog.Logger
}

// NewGalleryController creates a new GalleryController
func NewGalleryController(galleryService services.GalleryService, logger zerolog.Logger) *GalleryController {
	return &GalleryController{
		galleryService: galleryService,
		logger:         logger,
	}
}

// ListNews returns a page of news images
// @Summary News
// @Description Returns a page of news images
// @Tags gallery
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.MediaItem}} "News"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /news [get]
func (c *GalleryController) ListNews(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.galleryService.ListNews(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// ListPerks returns a page of perk images
// @Summary Perks
// @Description Returns a page of student perk images
// @Tags gallery
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.MediaItem}} "Perks"
// @Failure 502 {object} dto.ErrorResponse "Record store unavailable"
// @Router /perks [get]
func (c *GalleryController) ListPerks(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.galleryService.ListPerks(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}
