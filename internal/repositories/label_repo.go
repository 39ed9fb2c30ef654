package repositories

import (
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LabelRepository interface {
	CreateBatch(tx *gorm.DB, labels []*models.Label) error
	SaveBatch(tx *gorm.DB, labels []*models.Label) error
	FindByIDs(tx *gorm.DB, ids []uint64) ([]models.Label, error)
	FindByNames(tx *gorm.DB, names []string) ([]models.Label, error)
	FindByCreator(creatorID uint64) ([]models.Label, error)
	MarkRemoved(tx *gorm.DB, ids []uint64, actorID uint64) error
}

type labelRepository struct {
	db *gorm.DB
}

var _ LabelRepository = (*labelRepository)(nil)

// NewLabelRepository 创建一个新的 LabelRepository 实例
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{db: db}
}

func (r *labelRepository) dbOr(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *labelRepository) CreateBatch(tx *gorm.DB, labels []*models.Label) error {
	if len(labels) == 0 {
		return nil
	}
	if err := r.dbOr(tx).Create(labels).Error; err != nil {
		logger.Error("Error creating labels", zap.Error(err))
		return fmt.Errorf("create labels: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// SaveBatch 整行保存,调用方负责先更新审计字段
func (r *labelRepository) SaveBatch(tx *gorm.DB, labels []*models.Label) error {
	db := r.dbOr(tx)
	for _, label := range labels {
		if err := db.Save(label).Error; err != nil {
			logger.Error("Error saving label", zap.Uint64("label_id", label.ID), zap.Error(err))
			return fmt.Errorf("save label %d: %w", label.ID, xerr.ErrDatabaseError)
		}
	}
	return nil
}

func (r *labelRepository) FindByIDs(tx *gorm.DB, ids []uint64) ([]models.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var labels []models.Label
	err := r.dbOr(tx).Scopes(ActiveScope("labels")).
		Where("labels.id IN ?", ids).Find(&labels).Error
	if err != nil {
		logger.Error("Error finding labels by ids", zap.Error(err))
		return nil, fmt.Errorf("find labels: %w", xerr.ErrDatabaseError)
	}
	return labels, nil
}

// FindByNames 按名称查询 ACTIVE 标签,用于唯一性冲突检测
func (r *labelRepository) FindByNames(tx *gorm.DB, names []string) ([]models.Label, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var labels []models.Label
	err := r.dbOr(tx).Scopes(ActiveScope("labels")).
		Where("labels.name IN ?", names).Find(&labels).Error
	if err != nil {
		logger.Error("Error finding labels by names", zap.Error(err))
		return nil, fmt.Errorf("find labels by name: %w", xerr.ErrDatabaseError)
	}
	return labels, nil
}

// FindByCreator 列出某个用户创建的全部 ACTIVE 标签
func (r *labelRepository) FindByCreator(creatorID uint64) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.Scopes(ActiveScope("labels")).
		Where("labels.created_by = ?", creatorID).
		Order("labels.name ASC").
		Find(&labels).Error
	if err != nil {
		logger.Error("Error finding labels by creator", zap.Uint64("user_id", creatorID), zap.Error(err))
		return nil, fmt.Errorf("find labels by creator: %w", xerr.ErrDatabaseError)
	}
	return labels, nil
}

// MarkRemoved 软删除:置 REMOVED 并更新审计字段
func (r *labelRepository) MarkRemoved(tx *gorm.DB, ids []uint64, actorID uint64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.dbOr(tx).Model(&models.Label{}).
		Scopes(ActiveScope("labels")).
		Where("labels.id IN ?", ids).
		Updates(map[string]interface{}{
			"object_state": models.ObjectStateRemoved,
			"updated_by":   actorID,
		}).Error
	if err != nil {
		logger.Error("Error removing labels", zap.Error(err))
		return fmt.Errorf("remove labels: %w", xerr.ErrDatabaseError)
	}
	return nil
}
