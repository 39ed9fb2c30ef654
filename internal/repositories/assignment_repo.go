package repositories

import (
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentPair 标签和文件的组合键
type AssignmentPair struct {
	LabelID uint64
	FileID  uint64
}

type AssignmentRepository interface {
	// FindPairs 查询给定组合的全部记录,不分状态,用于区分"已指派"和"可复活"
	FindPairs(tx *gorm.DB, pairs []AssignmentPair) ([]models.LabelAssignment, error)
	CreateBatch(tx *gorm.DB, rows []*models.LabelAssignment) error
	Resurrect(tx *gorm.DB, pairs []AssignmentPair, actorID uint64) error
	MarkRemovedPairs(tx *gorm.DB, pairs []AssignmentPair, actorID uint64) error
	ListActiveByFileIDs(tx *gorm.DB, fileIDs []uint64) ([]models.LabelAssignment, error)
	PurgeByFileIDs(tx *gorm.DB, fileIDs []uint64) error
	PurgeByLabelIDs(tx *gorm.DB, labelIDs []uint64) error
}

type assignmentRepository struct {
	db *gorm.DB
}

var _ AssignmentRepository = (*assignmentRepository)(nil)

// NewAssignmentRepository 创建一个新的 AssignmentRepository 实例
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) dbOr(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// pairCondition 把组合键拼成 (label_id = ? AND file_id = ?) OR ... 的形式
// 行值 IN 语法在不同数据库上支持程度不一,这里用展开形式
func pairCondition(db *gorm.DB, pairs []AssignmentPair) *gorm.DB {
	cond := db.Session(&gorm.Session{NewDB: true})
	for i, p := range pairs {
		if i == 0 {
			cond = cond.Where("label_id = ? AND file_id = ?", p.LabelID, p.FileID)
		} else {
			cond = cond.Or("label_id = ? AND file_id = ?", p.LabelID, p.FileID)
		}
	}
	return cond
}

func (r *assignmentRepository) FindPairs(tx *gorm.DB, pairs []AssignmentPair) ([]models.LabelAssignment, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	var rows []models.LabelAssignment
	db := r.dbOr(tx)
	err := db.Where(pairCondition(db, pairs)).Find(&rows).Error
	if err != nil {
		logger.Error("Error finding assignments", zap.Error(err))
		return nil, fmt.Errorf("find assignments: %w", xerr.ErrDatabaseError)
	}
	return rows, nil
}

func (r *assignmentRepository) CreateBatch(tx *gorm.DB, rows []*models.LabelAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.dbOr(tx).Create(rows).Error; err != nil {
		logger.Error("Error creating assignments", zap.Error(err))
		return fmt.Errorf("create assignments: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// Resurrect 把 REMOVED 的组合恢复为 ACTIVE
// 复合主键挡住了同组合的重复插入,重新指派时只能复用旧行
func (r *assignmentRepository) Resurrect(tx *gorm.DB, pairs []AssignmentPair, actorID uint64) error {
	if len(pairs) == 0 {
		return nil
	}
	db := r.dbOr(tx)
	err := db.Model(&models.LabelAssignment{}).
		Where("object_state = ?", models.ObjectStateRemoved).
		Where(pairCondition(db, pairs)).
		Updates(map[string]interface{}{
			"object_state": models.ObjectStateActive,
			"updated_by":   actorID,
		}).Error
	if err != nil {
		logger.Error("Error resurrecting assignments", zap.Error(err))
		return fmt.Errorf("resurrect assignments: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// MarkRemovedPairs 软删除指派,对已删除或不存在的组合不报错
func (r *assignmentRepository) MarkRemovedPairs(tx *gorm.DB, pairs []AssignmentPair, actorID uint64) error {
	if len(pairs) == 0 {
		return nil
	}
	db := r.dbOr(tx)
	err := db.Model(&models.LabelAssignment{}).
		Where("object_state = ?", models.ObjectStateActive).
		Where(pairCondition(db, pairs)).
		Updates(map[string]interface{}{
			"object_state": models.ObjectStateRemoved,
			"updated_by":   actorID,
		}).Error
	if err != nil {
		logger.Error("Error removing assignments", zap.Error(err))
		return fmt.Errorf("remove assignments: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// ListActiveByFileIDs 预载标签,用于在文件响应里展示指派的标签
func (r *assignmentRepository) ListActiveByFileIDs(tx *gorm.DB, fileIDs []uint64) ([]models.LabelAssignment, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	var rows []models.LabelAssignment
	err := r.dbOr(tx).Scopes(ActiveScope("label_assignments")).
		Where("label_assignments.file_id IN ?", fileIDs).
		Preload("Label").
		Find(&rows).Error
	if err != nil {
		logger.Error("Error listing assignments by files", zap.Error(err))
		return nil, fmt.Errorf("list assignments: %w", xerr.ErrDatabaseError)
	}
	return rows, nil
}

// PurgeByFileIDs 物理清除指定文件的全部指派,文件删除后的级联使用
func (r *assignmentRepository) PurgeByFileIDs(tx *gorm.DB, fileIDs []uint64) error {
	if len(fileIDs) == 0 {
		return nil
	}
	err := r.dbOr(tx).Where("file_id IN ?", fileIDs).
		Delete(&models.LabelAssignment{}).Error
	if err != nil {
		logger.Error("Error purging assignments by files", zap.Error(err))
		return fmt.Errorf("purge assignments: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// PurgeByLabelIDs 物理清除指定标签的全部指派,标签删除后的级联使用
func (r *assignmentRepository) PurgeByLabelIDs(tx *gorm.DB, labelIDs []uint64) error {
	if len(labelIDs) == 0 {
		return nil
	}
	err := r.dbOr(tx).Where("label_id IN ?", labelIDs).
		Delete(&models.LabelAssignment{}).Error
	if err != nil {
		logger.Error("Error purging assignments by labels", zap.Error(err))
		return fmt.Errorf("purge assignments: %w", xerr.ErrDatabaseError)
	}
	return nil
}
