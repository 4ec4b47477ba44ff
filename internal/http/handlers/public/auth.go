package public

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/constants"
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
	Token      string `json:"token"`
	ExpiresAt  string `json:"expires_at"`
}

// Login 用户名密码登录，签发 Token 并写入 Cookie
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, handlershared.BindingErrorMessage(err), nil)
		return
	}

	result, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		requestLog(c).Infow("auth_login_failed", "username", req.Username, "client_ip", c.ClientIP())
		h.recordUserLogin(c, req.Username, 0, err)
		respondWithMappedError(c, err, loginErrorRules)
		return
	}
	h.recordUserLogin(c, result.User.Username, result.User.ID, nil)

	h.setAccessTokenCookie(c, result.Token, int(time.Until(result.ExpiresAt).Seconds()))
	requestLog(c).Infow("auth_login_success", "user_id", result.User.ID)
	c.JSON(response.CodeOK, LoginResponse{
		StatusCode: response.CodeOK,
		Detail:     fmt.Sprintf("Wellcome %s!", result.User.FirstName),
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout 注销当前用户的全部 Token 并清除 Cookie
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, response.CodeInternal, handlershared.MsgInternal, err)
		return
	}
	h.setAccessTokenCookie(c, "", -1)
	response.Status(c, response.CodeOK, "Successfully logged out", nil)
}

func (h *Handler) recordUserLogin(c *gin.Context, username string, userID uint, loginErr error) {
	if h.LoginLogService == nil {
		return
	}
	status := constants.LoginLogStatusSuccess
	if loginErr != nil {
		status = constants.LoginLogStatusFailed
	}
	err := h.LoginLogService.Record(service.RecordUserLoginInput{
		UserID:     userID,
		Username:   username,
		Status:     status,
		FailReason: service.LoginFailReason(loginErr),
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		RequestID:  handlershared.RequestID(c),
	})
	if err != nil {
		requestLog(c).Warnw("auth_login_log_record_failed", "username", username, "error", err)
	}
}

func (h *Handler) setAccessTokenCookie(c *gin.Context, value string, maxAge int) {
	name := constants.AccessTokenCookie
	secure := false
	domain := ""
	if h.Config != nil {
		if cookie := strings.TrimSpace(h.Config.JWT.CookieName); cookie != "" {
			name = cookie
		}
		secure = h.Config.JWT.CookieSecure
		domain = h.Config.JWT.CookieDomain
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", domain, secure, true)
}
