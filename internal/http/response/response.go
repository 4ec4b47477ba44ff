package response

import (
	"github.com/gin-gonic/gin"
)

// DetailResponse 带提示消息的响应
type DetailResponse struct {
	Detail string      `json:"detail"`
	Data   interface{} `json:"data"`
}

// StatusResponse 携带业务状态码的响应
type StatusResponse struct {
	StatusCode int         `json:"status_code"`
	Detail     string      `json:"detail"`
	Data       interface{} `json:"data,omitempty"`
}

// DataResponse 仅包含数据的响应
type DataResponse struct {
	Data interface{} `json:"data"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// Data 返回 {data}
func Data(c *gin.Context, code int, data interface{}) {
	c.JSON(code, DataResponse{Data: data})
}

// Detail 返回 {detail, data}
func Detail(c *gin.Context, code int, detail string, data interface{}) {
	c.JSON(code, DetailResponse{Detail: detail, Data: data})
}

// Status 返回 {status_code, detail, data}
func Status(c *gin.Context, code int, detail string, data interface{}) {
	c.JSON(code, StatusResponse{StatusCode: code, Detail: detail, Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(CodeOK, PageResponse{Data: data, Pagination: pagination})
}

// BuildPagination 计算分页信息
func BuildPagination(page, pageSize int, total int64) Pagination {
	var totalPage int64
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

// Error 错误响应，HTTP 状态即为 code
func Error(c *gin.Context, code int, detail string) {
	c.JSON(code, ErrorResponse{Detail: detail, RequestID: requestID(c)})
}

// Abort 错误响应并中断后续处理
func Abort(c *gin.Context, code int, detail string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Detail: detail, RequestID: requestID(c)})
}

// NotFound 404响应
func NotFound(c *gin.Context, detail string) {
	Error(c, CodeNotFound, detail)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, detail string) {
	Error(c, CodeBadRequest, detail)
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
