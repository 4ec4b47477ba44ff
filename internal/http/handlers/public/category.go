package public

import (
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Title string `json:"title"`
}

// ListCategories 获取全部分类
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, nil)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	c.JSON(response.CodeOK, gin.H{"categories": categories})
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidRequestBody, nil)
		return
	}

	category, err := h.CategoryService.Create(c.Request.Context(), req.Title)
	if err != nil {
		respondWithMappedError(c, err, categoryCreateErrorRules)
		return
	}
	response.Detail(c, response.CodeCreated, "Category created", []models.Category{*category})
}
