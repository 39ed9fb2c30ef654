package catalog

import (
	"context"

	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cascader 负责删除后的级联清理
// 文件或标签被软删除并提交后,物理清除它们名下的全部指派,
// 让后续查询和重新指派不再受旧关联影响
type Cascader struct {
	tm          TransactionManager
	assignments repositories.AssignmentRepository
}

func NewCascader(tm TransactionManager, assignments repositories.AssignmentRepository) *Cascader {
	return &Cascader{tm: tm, assignments: assignments}
}

// PurgeForFiles 清除指定文件的全部指派
func (c *Cascader) PurgeForFiles(ctx context.Context, fileIDs []uint64) error {
	err := c.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		return c.assignments.PurgeByFileIDs(tx, fileIDs)
	})
	if err != nil {
		return err
	}
	logger.Info("purged assignments for removed files", zap.Uint64s("file_ids", fileIDs))
	return nil
}

// PurgeForLabels 清除指定标签的全部指派
func (c *Cascader) PurgeForLabels(ctx context.Context, labelIDs []uint64) error {
	err := c.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		return c.assignments.PurgeByLabelIDs(tx, labelIDs)
	})
	if err != nil {
		return err
	}
	logger.Info("purged assignments for removed labels", zap.Uint64s("label_ids", labelIDs))
	return nil
}
