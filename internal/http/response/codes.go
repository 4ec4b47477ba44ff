package response

import "net/http"

// 状态码与 HTTP 状态保持一致
const (
	CodeOK              = http.StatusOK
	CodeCreated         = http.StatusCreated
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeInternal        = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
)
