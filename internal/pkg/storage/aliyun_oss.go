package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"
)

type AliyunOSSStore struct {
	client *oss.Client
	cfg    *config.AliyunOSSConfig
}

var _ ObjectStore = (*AliyunOSSStore)(nil)

// NewAliyunOSSStore 创建并返回一个 AliyunOSSStore 实例
func NewAliyunOSSStore(cfg *config.AliyunOSSConfig) (*AliyunOSSStore, error) {
	ossClient, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logger.Error("初始化阿里云OSS客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化阿里云OSS客户端: %w", err)
	}
	logger.Info("阿里云OSS客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &AliyunOSSStore{client: ossClient, cfg: cfg}, nil
}

func isOSSNotFound(err error) bool {
	if ossErr, ok := err.(oss.ServiceError); ok {
		return ossErr.StatusCode == 404
	}
	return false
}

func (s *AliyunOSSStore) Put(ctx context.Context, bucketName, key string, reader io.Reader, size int64, contentType string) error {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("获取OSS存储桶失败: %w", xerr.ErrStorageError)
	}
	if err := bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return fmt.Errorf("阿里云OSS上传文件失败: %w", xerr.ErrStorageError)
	}
	return nil
}

func (s *AliyunOSSStore) Get(ctx context.Context, bucketName, key string) (io.ReadCloser, ObjectInfo, error) {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("获取OSS存储桶失败: %w", xerr.ErrStorageError)
	}
	info, err := s.headObject(bucket, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	reader, err := bucket.GetObject(key)
	if err != nil {
		if isOSSNotFound(err) {
			return nil, ObjectInfo{}, fmt.Errorf("OSS 对象 %s 不存在: %w", key, xerr.ErrResourceNotFound)
		}
		return nil, ObjectInfo{}, fmt.Errorf("阿里云OSS获取文件失败: %w", xerr.ErrStorageError)
	}
	return reader, info, nil
}

func (s *AliyunOSSStore) Head(ctx context.Context, bucketName, key string) (ObjectInfo, error) {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("获取OSS存储桶失败: %w", xerr.ErrStorageError)
	}
	return s.headObject(bucket, key)
}

func (s *AliyunOSSStore) headObject(bucket *oss.Bucket, key string) (ObjectInfo, error) {
	props, err := bucket.GetObjectDetailedMeta(key)
	if err != nil {
		if isOSSNotFound(err) {
			return ObjectInfo{}, fmt.Errorf("OSS 对象 %s 不存在: %w", key, xerr.ErrResourceNotFound)
		}
		return ObjectInfo{}, fmt.Errorf("获取OSS对象元数据失败: %w", xerr.ErrStorageError)
	}
	info := ObjectInfo{}
	if val := props.Get(oss.HTTPHeaderContentLength); val != "" {
		info.Size, _ = strconv.ParseInt(val, 10, 64)
	}
	info.ContentType = props.Get(oss.HTTPHeaderContentType)
	return info, nil
}

func (s *AliyunOSSStore) Presign(ctx context.Context, bucketName, key string, expiry time.Duration) (string, error) {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return "", fmt.Errorf("获取OSS存储桶失败: %w", xerr.ErrStorageError)
	}
	signedURL, err := bucket.SignURL(key, oss.HTTPGet, int64(expiry.Seconds()))
	if err != nil {
		return "", fmt.Errorf("生成阿里云OSS预签名URL失败: %w", xerr.ErrStorageError)
	}
	return signedURL, nil
}

func (s *AliyunOSSStore) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := s.client.IsBucketExist(bucketName)
	if err != nil {
		return fmt.Errorf("检查阿里云OSS存储桶存在性失败: %w", xerr.ErrStorageError)
	}
	if exists {
		return nil
	}
	if err := s.client.CreateBucket(bucketName); err != nil {
		if ossErr, ok := err.(oss.ServiceError); ok && (ossErr.Code == "BucketAlreadyExists" || ossErr.Code == "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("创建阿里云OSS存储桶失败: %w", xerr.ErrStorageError)
	}
	logger.Info("阿里云OSS存储桶创建成功", zap.String("bucket", bucketName))
	return nil
}

// ObjectURL OSS 使用 virtual-host 地址: bucket.endpoint/key
func (s *AliyunOSSStore) ObjectURL(bucketName, key string) string {
	scheme := "http://"
	if s.cfg.UseSSL {
		scheme = "https://"
	}
	endpoint := s.cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return fmt.Sprintf("%s%s.%s/%s", scheme, bucketName, endpoint, key)
}

// Locate 解析 virtual-host 地址,主机名的第一段是桶名,路径是对象键
func (s *AliyunOSSStore) Locate(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("无法解析资源地址 %s: %w", rawURL, xerr.ErrInvalidParams)
	}
	host := u.Hostname()
	dot := strings.Index(host, ".")
	key := strings.TrimPrefix(u.Path, "/")
	if dot <= 0 || key == "" {
		return "", "", fmt.Errorf("资源地址 %s 缺少桶名或对象键: %w", rawURL, xerr.ErrInvalidParams)
	}
	return host[:dot], key, nil
}
