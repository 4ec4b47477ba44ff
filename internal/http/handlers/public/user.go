package public

import (
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterUserRequest 注册请求
type RegisterUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterUser 用户注册
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidRequestBody, nil)
		return
	}

	user, err := h.UserService.Register(c.Request.Context(), service.RegisterUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, userRegisterErrorRules)
		return
	}
	requestLog(c).Infow("user_registered", "user_id", user.ID)
	response.Status(c, response.CodeCreated, "User create", []models.User{*user})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserService.GetByID(userID)
	if err != nil {
		respondWithMappedError(c, err, currentUserErrorRules)
		return
	}
	response.Data(c, response.CodeOK, user)
}

// GetMyLoginLogs 获取当前用户登录日志
func (h *Handler) GetMyLoginLogs(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize, ok := handlershared.ParsePagination(c)
	if !ok {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}
	logs, total, err := h.LoginLogService.ListByUser(userID, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, paginationErrorRules)
		return
	}
	if logs == nil {
		logs = []models.UserLoginLog{}
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
