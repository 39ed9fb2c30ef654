package catalog

import (
	"context"

	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommitHooks 收集事务提交后要执行的动作
// 回滚时全部丢弃,保证级联清理不会先于主事务生效
type CommitHooks struct {
	fns []func(ctx context.Context) error
}

// OnCommit 注册一个提交后动作
func (h *CommitHooks) OnCommit(fn func(ctx context.Context) error) {
	h.fns = append(h.fns, fn)
}

func (h *CommitHooks) run(ctx context.Context) {
	for _, fn := range h.fns {
		if err := fn(ctx); err != nil {
			// 主事务已提交,这里只能记录,由后续操作自愈
			logger.Error("commit hook failed", zap.Error(err))
		}
	}
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB, hooks *CommitHooks) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (tm *transactionManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB, hooks *CommitHooks) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	hooks := &CommitHooks{}
	if err := fn(tx, hooks); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	hooks.run(ctx)
	return nil
}
