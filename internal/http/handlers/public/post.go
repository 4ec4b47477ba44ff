package public

import (
	"mime/multipart"

	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePostForm 创建文章表单（multipart）
type CreatePostForm struct {
	Title      string                `form:"title" binding:"required,notblank"`
	Text       string                `form:"text" binding:"required,notblank"`
	Categories []string              `form:"categories"`
	Image      *multipart.FileHeader `form:"image"`
}

// UpdatePostForm 更新文章表单（multipart）
type UpdatePostForm struct {
	PostID     string                `form:"post_id" binding:"required"`
	Title      string                `form:"title" binding:"required,notblank"`
	Text       string                `form:"text" binding:"required,notblank"`
	Categories []string              `form:"categories"`
	Image      *multipart.FileHeader `form:"image"`
}

// ListPosts 按分类与检索词查询文章
func (h *Handler) ListPosts(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePagination(c)
	if !ok {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}

	posts, err := h.PostService.List(service.ListPostsInput{
		Page:       page,
		PageSize:   pageSize,
		Categories: c.QueryArray("categories"),
		Search:     c.Query("search"),
	})
	if err != nil {
		respondWithMappedError(c, err, postListErrorRules)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	response.Data(c, response.CodeOK, posts)
}

// CreatePost 创建文章
func (h *Handler) CreatePost(c *gin.Context) {
	var form CreatePostForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, response.CodeBadRequest, handlershared.BindingErrorMessage(err), nil)
		return
	}

	post, err := h.PostService.Create(c.Request.Context(), service.CreatePostInput{
		Title:      form.Title,
		Text:       form.Text,
		Categories: form.Categories,
		Image:      form.Image,
	})
	if err != nil {
		respondWithMappedError(c, err, postWriteErrorRules)
		return
	}
	requestLog(c).Infow("post_created", "post_id", post.ID)
	response.Detail(c, response.CodeCreated, "Post created", []models.Post{*post})
}

// UpdatePost 更新文章
func (h *Handler) UpdatePost(c *gin.Context) {
	var form UpdatePostForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, response.CodeBadRequest, handlershared.BindingErrorMessage(err), nil)
		return
	}

	post, err := h.PostService.Update(c.Request.Context(), service.UpdatePostInput{
		PostID:     form.PostID,
		Title:      form.Title,
		Text:       form.Text,
		Categories: form.Categories,
		Image:      form.Image,
	})
	if err != nil {
		respondWithMappedError(c, err, postWriteErrorRules)
		return
	}
	requestLog(c).Infow("post_updated", "post_id", post.ID)
	response.Detail(c, response.CodeCreated, "Post updated", []models.Post{*post})
}

// DeletePost 删除文章并归档
func (h *Handler) DeletePost(c *gin.Context) {
	archived, err := h.PostService.Delete(c.Query("post_id"))
	if err != nil {
		respondWithMappedError(c, err, postDeleteErrorRules)
		return
	}
	requestLog(c).Infow("post_deleted", "post_id", archived.ID)
	response.Detail(c, response.CodeOK, "Post delete", []models.ArchivedPost{*archived})
}
