package public

import (
	"errors"

	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
// passMessage 为 true 时直接透出业务错误文本。
type mappedHandlerError struct {
	target      error
	code        int
	msg         string
	passMessage bool
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	for _, rule := range rules {
		if !errors.Is(err, rule.target) {
			continue
		}
		msg := rule.msg
		if rule.passMessage {
			msg = err.Error()
		}
		var cause error
		if rule.code >= response.CodeInternal {
			cause = err
		}
		respondError(c, rule.code, msg, cause)
		return
	}
	respondError(c, response.CodeInternal, handlershared.MsgInternal, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

const (
	msgPostNotFound          = "Post not found"
	msgCategoriesNotFound    = "Some categories not found"
	msgInvalidCredentials    = "Invalid authentication credentials"
	msgInvalidRequestBody    = "Invalid request body"
	msgCategoryTitleRequired = "Category title is required"
)

var categoryLookupErrorRules = []mappedHandlerError{
	{target: service.ErrCategoriesRequired, code: response.CodeBadRequest, msg: "Categories are required"},
	{target: service.ErrCategoriesNotFound, code: response.CodeNotFound, msg: msgCategoriesNotFound},
}

var paginationErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidPagination, code: response.CodeBadRequest, msg: handlershared.MsgInvalidPagination},
}

var postListErrorRules = concatMappedHandlerErrors(paginationErrorRules, categoryLookupErrorRules)

var postWriteErrorRules = concatMappedHandlerErrors([]mappedHandlerError{
	{target: service.ErrPostNotFound, code: response.CodeNotFound, msg: msgPostNotFound},
	{target: service.ErrPostTitleExists, code: response.CodeBadRequest, msg: "Post with same title is already exist"},
	{target: service.ErrPostTextExists, code: response.CodeBadRequest, msg: "Post with same text is already exist"},
	{target: service.ErrPostTitleRequired, code: response.CodeBadRequest, msg: "Post title is required"},
	{target: service.ErrPostTextRequired, code: response.CodeBadRequest, msg: "Post text is required"},
	{target: service.ErrFileTooLarge, code: response.CodeBadRequest, passMessage: true},
	{target: service.ErrInvalidFileType, code: response.CodeBadRequest, passMessage: true},
	{target: service.ErrStorageUnavailable, code: response.CodeUnavailable, msg: "Object storage unavailable"},
}, categoryLookupErrorRules)

var postDeleteErrorRules = []mappedHandlerError{
	{target: service.ErrPostNotFound, code: response.CodeNotFound, msg: msgPostNotFound},
}

var categoryCreateErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryTitleRequired, code: response.CodeBadRequest, msg: msgCategoryTitleRequired},
	{target: service.ErrCategoryExists, code: response.CodeBadRequest, msg: "Category with same title is already exist"},
}

var userRegisterErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidUserInput, code: response.CodeBadRequest, passMessage: true},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, passMessage: true},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "Invalid email address"},
	{target: service.ErrEmailExists, code: response.CodeBadRequest, msg: "This email has been registered"},
	{target: service.ErrUsernameExists, code: response.CodeBadRequest, msg: "This username is taken"},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: msgInvalidCredentials},
	{target: service.ErrUserDisabled, code: response.CodeUnauthorized, msg: "Inactive user"},
}

var currentUserErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "User not found"},
}
