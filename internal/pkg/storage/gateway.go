package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"golang.org/x/sync/errgroup"
)

// ObjectInfo 对象元数据
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// Object 一个已打开的对象,Reader 使用后需要关闭
type Object struct {
	URL         string
	Reader      io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectStore 定义单个存储后端的基础操作
// 资源地址由各后端自己生成和解析,网关不假定统一的URL格式
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	Head(ctx context.Context, bucket, key string) (ObjectInfo, error)
	Presign(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context, bucket string) error
	ObjectURL(bucket, key string) string
	// Locate 把本后端生成的资源地址还原成 bucket/key
	Locate(rawURL string) (bucket, key string, err error)
}

// Gateway 对象存储网关,在单后端之上提供批量校验和批量拉取
// 批量操作用 errgroup 限并发,任何一个对象失败都会使整批失败
type Gateway struct {
	store         ObjectStore
	bucket        string
	workers       int
	presignExpiry time.Duration
}

// NewGateway 根据配置选择后端并创建网关
func NewGateway(cfg *config.Config) (*Gateway, error) {
	var store ObjectStore
	var err error
	switch cfg.Storage.Type {
	case "minio":
		store, err = NewMinIOStore(&cfg.MinIO)
	case "aliyun_oss":
		store, err = NewAliyunOSSStore(&cfg.AliyunOSS)
	default:
		return nil, errors.New("invalid storage type: " + cfg.Storage.Type)
	}
	if err != nil {
		return nil, err
	}

	bucket := cfg.MinIO.BucketName
	if cfg.Storage.Type == "aliyun_oss" {
		bucket = cfg.AliyunOSS.BucketName
	}

	workers := cfg.Storage.Workers
	if workers <= 0 {
		workers = 8
	}

	return &Gateway{
		store:         store,
		bucket:        bucket,
		workers:       workers,
		presignExpiry: time.Duration(cfg.Storage.PresignedURLExpiry) * time.Minute,
	}, nil
}

// NewGatewayWithStore 用给定后端创建网关,测试时注入内存实现
func NewGatewayWithStore(store ObjectStore, bucket string, workers int) *Gateway {
	if workers <= 0 {
		workers = 8
	}
	return &Gateway{store: store, bucket: bucket, workers: workers, presignExpiry: 15 * time.Minute}
}

// EnsureBucket 保证目标桶存在,应用启动时调用
func (g *Gateway) EnsureBucket(ctx context.Context) error {
	return g.store.EnsureBucket(ctx, g.bucket)
}

// Store 写入对象并返回资源地址
func (g *Gateway) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := g.store.Put(ctx, g.bucket, key, reader, size, contentType); err != nil {
		return "", fmt.Errorf("store object %s: %w", key, err)
	}
	return g.store.ObjectURL(g.bucket, key), nil
}

// PutRequest StoreMany 的一个待写入对象
type PutRequest struct {
	Key         string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// StoreMany 并发写入一批对象,返回对象键到资源地址的映射
// 任何一个写入失败整批报错;已写入的对象留在存储里,元数据未登记时它们只是孤儿,可被重传覆盖
func (g *Gateway) StoreMany(ctx context.Context, reqs []PutRequest) (map[string]string, error) {
	urls := make(map[string]string, len(reqs))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, req := range reqs {
		req := req
		eg.Go(func() error {
			url, err := g.Store(egCtx, req.Key, req.Reader, req.Size, req.ContentType)
			if err != nil {
				return err
			}
			mu.Lock()
			urls[req.Key] = url
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// Stat 校验资源地址指向的对象是否存在,返回其元数据
func (g *Gateway) Stat(ctx context.Context, rawURL string) (ObjectInfo, error) {
	bucket, key, err := g.store.Locate(rawURL)
	if err != nil {
		return ObjectInfo{}, err
	}
	return g.store.Head(ctx, bucket, key)
}

// StatMany 并发校验一批资源地址
// 全部缺失的地址会被收集起来一次性报出,其他错误按首个失败返回
func (g *Gateway) StatMany(ctx context.Context, urls []string) (map[string]ObjectInfo, error) {
	infos := make(map[string]ObjectInfo, len(urls))
	var missing []string
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, rawURL := range urls {
		rawURL := rawURL
		eg.Go(func() error {
			info, err := g.Stat(egCtx, rawURL)
			if err != nil {
				if errors.Is(err, xerr.ErrResourceNotFound) {
					mu.Lock()
					missing = append(missing, rawURL)
					mu.Unlock()
					return nil
				}
				return err
			}
			mu.Lock()
			infos[rawURL] = info
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, xerr.NewNotFoundNames("resource", missing)
	}
	return infos, nil
}

// Fetch 打开一个对象用于读取
func (g *Gateway) Fetch(ctx context.Context, rawURL string) (*Object, error) {
	bucket, key, err := g.store.Locate(rawURL)
	if err != nil {
		return nil, err
	}
	reader, info, err := g.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return &Object{
		URL:         rawURL,
		Reader:      reader,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

// FetchMany 并发打开一批对象
// 出错时已打开的对象会被关闭,调用方不需要清理
func (g *Gateway) FetchMany(ctx context.Context, urls []string) (map[string]*Object, error) {
	objects := make(map[string]*Object, len(urls))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, rawURL := range urls {
		rawURL := rawURL
		eg.Go(func() error {
			obj, err := g.Fetch(egCtx, rawURL)
			if err != nil {
				return err
			}
			mu.Lock()
			objects[rawURL] = obj
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		for _, obj := range objects {
			obj.Reader.Close()
		}
		return nil, err
	}
	return objects, nil
}

// PresignedURL 为下载生成预签名地址
func (g *Gateway) PresignedURL(ctx context.Context, rawURL string) (string, error) {
	bucket, key, err := g.store.Locate(rawURL)
	if err != nil {
		return "", err
	}
	return g.store.Presign(ctx, bucket, key, g.presignExpiry)
}
