package controller

import (
	"github.com/gin-gonic/gin"

	"shopfront_api_202610/internal/api/dto"
	"shopfront_api_202610/internal/service"
)

type CatalogController struct {
	catalog *service.CatalogService
}

func NewCatalogController(catalog *service.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "success", categories)
}

func (ctrl *CatalogController) CreateCategory(c *gin.Context) {
	var req dto.CreateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := ctrl.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Category created", category)
}

func (ctrl *CatalogController) ListTags(c *gin.Context) {
	tags, err := ctrl.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "success", tags)
}

func (ctrl *CatalogController) CreateTag(c *gin.Context) {
	var req dto.CreateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tag, err := ctrl.catalog.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Tag created", tag)
}
