package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinIOStore struct {
	client *minio.Client
	cfg    *config.MinIOConfig
}

var _ ObjectStore = (*MinIOStore)(nil)

// NewMinIOStore 创建并返回一个 MinIOStore 实例
func NewMinIOStore(cfg *config.MinIOConfig) (*MinIOStore, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	}

	minioClient, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		logger.Error("初始化 MinIO 客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化 MinIO 客户端: %w", err)
	}

	logger.Info("MinIO 客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &MinIOStore{client: minioClient, cfg: cfg}, nil
}

func (s *MinIOStore) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("MinIO 上传文件失败: %w", xerr.ErrStorageError)
	}
	return nil
}

func (s *MinIOStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("MinIO 获取文件失败: %w", xerr.ErrStorageError)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ObjectInfo{}, fmt.Errorf("MinIO 对象 %s 不存在: %w", key, xerr.ErrResourceNotFound)
		}
		return nil, ObjectInfo{}, fmt.Errorf("MinIO 获取对象信息失败: %w", xerr.ErrStorageError)
	}
	return obj, ObjectInfo{Size: stat.Size, ContentType: stat.ContentType}, nil
}

func (s *MinIOStore) Head(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ObjectInfo{}, fmt.Errorf("MinIO 对象 %s 不存在: %w", key, xerr.ErrResourceNotFound)
		}
		return ObjectInfo{}, fmt.Errorf("MinIO 获取对象信息失败: %w", xerr.ErrStorageError)
	}
	return ObjectInfo{Size: stat.Size, ContentType: stat.ContentType}, nil
}

func (s *MinIOStore) Presign(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	presignedURL, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成 MinIO 预签名URL失败: %w", xerr.ErrStorageError)
	}
	return presignedURL.String(), nil
}

func (s *MinIOStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("检查 MinIO 存储桶存在性失败: %w", xerr.ErrStorageError)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建 MinIO 存储桶失败: %w", xerr.ErrStorageError)
	}
	logger.Info("MinIO 存储桶创建成功", zap.String("bucket", bucket))
	return nil
}

// ObjectURL MinIO 使用 path-style 地址: endpoint/bucket/key
func (s *MinIOStore) ObjectURL(bucket, key string) string {
	endpoint := s.cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if s.cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	return fmt.Sprintf("%s/%s/%s", endpoint, bucket, key)
}

// Locate 解析 path-style 地址,第一段路径是桶名,其余是对象键
func (s *MinIOStore) Locate(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("无法解析资源地址 %s: %w", rawURL, xerr.ErrInvalidParams)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("资源地址 %s 缺少桶名或对象键: %w", rawURL, xerr.ErrInvalidParams)
	}
	return parts[0], parts[1], nil
}
