package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/handlers"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/cache"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/detection"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"github.com/3Eeeecho/go-filelabel/internal/router"
	"github.com/3Eeeecho/go-filelabel/internal/services/admin"
	"github.com/3Eeeecho/go-filelabel/internal/services/catalog"
	"github.com/3Eeeecho/go-filelabel/internal/setup"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer 负责构建所有依赖
func NewServer(cfg *config.Config) (*Server, error) {
	// 初始化基础设施
	setup.InitMySQL(&cfg.MySQL)
	setup.InitRedis(context.Background(), cfg)
	gateway := setup.InitStorage(cfg)

	db := setup.DB
	redisCache := cache.NewRedisCache(setup.RedisClientGlobal)
	detector := detection.NewClient(&cfg.Detection)

	// 初始化 Repositories
	fileRepo := repositories.NewFileRepository(db)
	labelRepo := repositories.NewLabelRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// 初始化 Services
	tm := catalog.NewTransactionManager(db)
	cascader := catalog.NewCascader(tm, assignmentRepo)
	fileService := catalog.NewFileService(tm, fileRepo, assignmentRepo, gateway, cascader, redisCache)
	labelService := catalog.NewLabelService(tm, labelRepo, cascader)
	assignmentService := catalog.NewAssignmentService(tm, fileRepo, labelRepo, assignmentRepo)
	searchService := catalog.NewSearchService(fileRepo, userRepo)
	transferService := catalog.NewTransferService(fileService, gateway, detector)
	authService := admin.NewAuthService(userRepo, cfg)
	userService := admin.NewUserService(userRepo)

	// 初始化 Handlers
	h := &router.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		User:     handlers.NewUserHandler(userService),
		File:     handlers.NewFileHandler(fileService, searchService, assignmentService),
		Label:    handlers.NewLabelHandler(labelService),
		Transfer: handlers.NewTransferHandler(transferService),
	}

	// 初始化 Gin 引擎和注册路由
	engine := router.InitRouter(h, cfg)

	addr := ":" + cfg.Server.Port
	logger.Info("Server is running", zap.String("addr", addr))
	httpServer := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	return &Server{
		router:     engine,
		httpServer: httpServer,
	}, nil
}

// Run 启动服务器并处理优雅关机
func (s *Server) Run(ctx context.Context, stopChan chan os.Signal) {
	defer setup.CloseRedis()
	defer setup.CloseMySQLDB()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// 等待停止信号
	<-stopChan
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}
