package setup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/storage"
)

// InitStorage 初始化对象存储网关并确保存储桶存在
func InitStorage(cfg *config.Config) *storage.Gateway {
	gateway, err := storage.NewGateway(cfg)
	if err != nil {
		logger.Fatal("初始化对象存储网关失败", zap.Error(err))
	}
	logger.Info("对象存储网关初始化成功", zap.String("type", cfg.Storage.Type))

	// 为外部调用使用带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gateway.EnsureBucket(ctx); err != nil {
		logger.Fatal("初始化存储桶失败", zap.Error(err))
	}
	return gateway
}
