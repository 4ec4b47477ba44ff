package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	appconfig "github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrStorageNotConfigured 对象存储未配置
var ErrStorageNotConfigured = errors.New("object storage is not configured")

// S3Storage S3 兼容对象存储（MinIO / AWS S3 / R2）
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Storage 创建对象存储客户端
func NewS3Storage(ctx context.Context, cfg *appconfig.StorageConfig) (*S3Storage, error) {
	if cfg == nil || strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrStorageNotConfigured
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config failed: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Storage{
		client:  client,
		bucket:  strings.TrimSpace(cfg.Bucket),
		baseURL: publicBaseURL(cfg, endpoint),
	}, nil
}

// Bucket 返回存储桶名称
func (s *S3Storage) Bucket() string {
	return s.bucket
}

// EnsureBucket 存储桶不存在时创建
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("create bucket %s failed: %w", s.bucket, err)
	}
	logger.Infow("storage_bucket_created", "bucket", s.bucket)
	return nil
}

// Upload 上传对象并返回可访问 URL
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("object key is empty")
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s failed: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// Delete 删除对象
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s failed: %w", key, err)
	}
	return nil
}

// PublicURL 生成对象访问地址：<base>/<bucket>/<key>
func (s *S3Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, strings.TrimLeft(key, "/"))
}

// KeyFromURL 从访问地址反解对象 key，不属于当前存储桶时返回 false
func (s *S3Storage) KeyFromURL(raw string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.baseURL, s.bucket)
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(raw, prefix)
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return key, key != ""
}

func endpointURL(endpoint string, useSSL bool) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func publicBaseURL(cfg *appconfig.StorageConfig, endpoint string) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"); base != "" {
		return base
	}
	return endpoint
}
