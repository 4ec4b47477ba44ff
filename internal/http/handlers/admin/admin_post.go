package admin

import (
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/models"

	"github.com/gin-gonic/gin"
)

// ListArchivedPosts 已删除文章归档列表（按删除时间倒序）
func (h *Handler) ListArchivedPosts(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePagination(c)
	if !ok {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}

	items, total, err := h.PostService.ListArchived(page, pageSize)
	if err != nil {
		respondListError(c, err)
		return
	}
	if items == nil {
		items = []models.ArchivedPost{}
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}
