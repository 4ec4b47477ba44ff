package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/logger"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, bool)
}

// UploadService 文件上传服务
type UploadService struct {
	cfg     *config.UploadConfig
	storage ObjectStorage
	now     func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.UploadConfig, storage ObjectStorage) *UploadService {
	return &UploadService{cfg: cfg, storage: storage, now: time.Now}
}

// PreparedFile 已校验、待上传的文件
type PreparedFile struct {
	Filename    string
	Ext         string
	ContentType string
	Data        []byte
}

// UploadedObject 已上传对象
type UploadedObject struct {
	Key string
	URL string
}

type fileSizeLimitError struct {
	limitMB int64
}

func (e fileSizeLimitError) Error() string {
	return fmt.Sprintf("File size exceeds the limit (%d MB)", e.limitMB)
}

func (e fileSizeLimitError) Is(target error) bool {
	return target == ErrFileTooLarge
}

type fileTypeError struct {
	allowed []string
}

func (e fileTypeError) Error() string {
	return "Invalid file type. Only " + joinAllowedExtensions(e.allowed) + " are allowed"
}

func (e fileTypeError) Is(target error) bool {
	return target == ErrInvalidFileType
}

// Prepare 校验上传文件（大小、扩展名、内容嗅探），不做任何外部写入
// file 为 nil 时返回 nil。
func (s *UploadService) Prepare(file *multipart.FileHeader) (*PreparedFile, error) {
	if file == nil {
		return nil, nil
	}
	maxSize := s.maxSize()
	if file.Size > maxSize {
		return nil, fileSizeLimitError{limitMB: maxSize / 1024 / 1024}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || !isAllowedExtension(ext, s.allowedExtensions()) {
		return nil, fileTypeError{allowed: s.allowedExtensions()}
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fileSizeLimitError{limitMB: maxSize / 1024 / 1024}
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil, fileTypeError{allowed: s.allowedExtensions()}
	}
	if !s.isAllowedType(kind.MIME.Value) {
		return nil, fileTypeError{allowed: s.allowedExtensions()}
	}

	return &PreparedFile{
		Filename:    file.Filename,
		Ext:         ext,
		ContentType: kind.MIME.Value,
		Data:        data,
	}, nil
}

// Store 上传已校验的文件，file 为 nil 时返回 nil
func (s *UploadService) Store(ctx context.Context, file *PreparedFile, scene string) (*UploadedObject, error) {
	if file == nil {
		return nil, nil
	}
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	key, err := buildObjectKey(scene, file.Ext, s.now())
	if err != nil {
		return nil, err
	}
	url, err := s.storage.Upload(ctx, key, file.Data, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &UploadedObject{Key: key, URL: url}, nil
}

// Discard 删除已上传对象（尽力而为）
func (s *UploadService) Discard(ctx context.Context, object *UploadedObject) {
	if object == nil || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, object.Key); err != nil {
		logger.Warnw("upload_discard_failed", "key", object.Key, "error", err)
	}
}

// DiscardURL 按访问地址删除对象（尽力而为），非本存储桶地址忽略
func (s *UploadService) DiscardURL(ctx context.Context, url string) {
	if s.storage == nil || strings.TrimSpace(url) == "" {
		return
	}
	key, ok := s.storage.KeyFromURL(url)
	if !ok {
		return
	}
	s.Discard(ctx, &UploadedObject{Key: key, URL: url})
}

func (s *UploadService) maxSize() int64 {
	if s.cfg == nil || s.cfg.MaxSize <= 0 {
		return 10 << 20
	}
	return s.cfg.MaxSize
}

func (s *UploadService) allowedExtensions() []string {
	if s.cfg == nil || len(s.cfg.AllowedExtensions) == 0 {
		return []string{".png", ".jpg", ".jpeg", ".pdf"}
	}
	return s.cfg.AllowedExtensions
}

func (s *UploadService) isAllowedType(contentType string) bool {
	if s.cfg == nil || len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.cfg.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(t), contentType) {
			return true
		}
	}
	return false
}

// buildObjectKey 生成对象 key：<scene>/<yyyy>/<mm>/<nanoid><ext>
func buildObjectKey(scene, ext string, now time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	scene = strings.Trim(strings.TrimSpace(scene), "/")
	if scene == "" {
		scene = "common"
	}
	return fmt.Sprintf("%s/%s/%s/%s%s", scene, now.Format("2006"), now.Format("01"), id, ext), nil
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := normalizeExtension(allowedExt)
		if normalized == "" {
			continue
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func normalizeExtension(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return ""
	}
	if !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	return normalized
}

// joinAllowedExtensions 生成 ".png, .jpg, .jpeg and .pdf" 形式的列表
func joinAllowedExtensions(allowed []string) string {
	items := make([]string, 0, len(allowed))
	for _, ext := range allowed {
		if normalized := normalizeExtension(ext); normalized != "" {
			items = append(items, normalized)
		}
	}
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
