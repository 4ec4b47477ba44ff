package service

import "errors"

var (
	// ErrNotFound 通用资源不存在
	ErrNotFound = errors.New("not found")

	// 分类
	ErrCategoryTitleRequired = errors.New("category title is required")
	ErrCategoryExists        = errors.New("category with same title already exists")
	ErrCategoriesRequired    = errors.New("categories required")
	ErrCategoriesNotFound    = errors.New("some categories not found")

	// 文章
	ErrPostNotFound      = errors.New("post not found")
	ErrPostTitleExists   = errors.New("post with same title already exists")
	ErrPostTextExists    = errors.New("post with same text already exists")
	ErrPostTitleRequired = errors.New("post title is required")
	ErrPostTextRequired  = errors.New("post text is required")
	ErrInvalidPagination = errors.New("invalid pagination")

	// 上传
	ErrFileTooLarge       = errors.New("file size exceeds the limit")
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrStorageUnavailable = errors.New("object storage unavailable")

	// 用户与认证
	ErrInvalidUserInput   = errors.New("invalid user input")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")

	// 权限
	ErrInvalidRole       = errors.New("invalid role")
	ErrSelfAccountChange = errors.New("cannot change own account")

	// 邮件
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
