package catalog

import (
	"context"
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LabelInput 创建标签的输入
type LabelInput struct {
	Name        string `json:"name" binding:"required,max=40"`
	Description string `json:"description" binding:"max=1000"`
	LabelType   string `json:"label_type"`
}

// LabelUpdate 更新标签的输入,整体替换可编辑字段
type LabelUpdate struct {
	ID          uint64 `json:"id" binding:"required"`
	Name        string `json:"name" binding:"required,max=40"`
	Description string `json:"description" binding:"max=1000"`
	LabelType   string `json:"label_type"`
}

// LabelService 标签的批量增删改查
// 名称唯一性只在 ACTIVE 行之间约束;更新和删除要求操作者是标签创建者
type LabelService struct {
	tm      TransactionManager
	labels  repositories.LabelRepository
	cascade *Cascader
}

func NewLabelService(tm TransactionManager, labels repositories.LabelRepository, cascade *Cascader) *LabelService {
	return &LabelService{tm: tm, labels: labels, cascade: cascade}
}

// BulkCreate 批量创建标签,整批成功或整批失败
func (s *LabelService) BulkCreate(ctx context.Context, actorID uint64, inputs []LabelInput) ([]models.Label, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("批量创建标签不能为空: %w", xerr.ErrInvalidParams)
	}

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	if dups := duplicateStrings(names); len(dups) > 0 {
		return nil, xerr.NewConflict("label", "批量请求中标签名称重复", dups)
	}

	labels := make([]*models.Label, len(inputs))
	for i, in := range inputs {
		labelType := in.LabelType
		if labelType == "" {
			labelType = models.LabelTypeUserDefined
		}
		label := &models.Label{
			Name:        in.Name,
			Description: in.Description,
			LabelType:   labelType,
		}
		label.InitAudit(actorID)
		labels[i] = label
	}

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		existing, err := s.labels.FindByNames(tx, names)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			taken := make([]string, len(existing))
			for i, l := range existing {
				taken[i] = l.Name
			}
			return xerr.NewConflict("label", "标签名称已被占用", taken)
		}
		return s.labels.CreateBatch(tx, labels)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("labels created", zap.Int("count", len(labels)), zap.Uint64("actor", actorID))
	out := make([]models.Label, len(labels))
	for i, l := range labels {
		out[i] = *l
	}
	return out, nil
}

// BulkUpdate 批量更新标签
// 名称冲突检测会排除被更新标签自己占用的名字
func (s *LabelService) BulkUpdate(ctx context.Context, actorID uint64, updates []LabelUpdate) ([]models.Label, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("批量更新标签不能为空: %w", xerr.ErrInvalidParams)
	}

	ids := make([]uint64, len(updates))
	names := make([]string, len(updates))
	byID := make(map[uint64]LabelUpdate, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		names[i] = u.Name
		byID[u.ID] = u
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}
	if dups := duplicateStrings(names); len(dups) > 0 {
		return nil, xerr.NewConflict("label", "批量请求中标签名称重复", dups)
	}

	var updated []models.Label
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		labels, err := s.loadOwnedLabels(tx, actorID, ids)
		if err != nil {
			return err
		}

		// 名称冲突排除本批标签自己
		own := make(map[uint64]struct{}, len(ids))
		for _, id := range ids {
			own[id] = struct{}{}
		}
		existing, err := s.labels.FindByNames(tx, names)
		if err != nil {
			return err
		}
		var taken []string
		for _, l := range existing {
			if _, ok := own[l.ID]; !ok {
				taken = append(taken, l.Name)
			}
		}
		if len(taken) > 0 {
			return xerr.NewConflict("label", "标签名称已被占用", taken)
		}

		toSave := make([]*models.Label, len(labels))
		for i := range labels {
			label := &labels[i]
			u := byID[label.ID]
			label.Name = u.Name
			label.Description = u.Description
			if u.LabelType != "" {
				label.LabelType = u.LabelType
			}
			label.Touch(actorID)
			toSave[i] = label
		}
		if err := s.labels.SaveBatch(tx, toSave); err != nil {
			return err
		}
		updated = labels
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("labels updated", zap.Int("count", len(updated)), zap.Uint64("actor", actorID))
	return updated, nil
}

// BulkDelete 批量软删除标签,提交后级联清除相关指派
func (s *LabelService) BulkDelete(ctx context.Context, actorID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return fmt.Errorf("批量删除标签不能为空: %w", xerr.ErrInvalidParams)
	}
	if err := validateIDs(ids); err != nil {
		return err
	}

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB, hooks *CommitHooks) error {
		if _, err := s.loadOwnedLabels(tx, actorID, ids); err != nil {
			return err
		}
		if err := s.labels.MarkRemoved(tx, ids, actorID); err != nil {
			return err
		}
		hooks.OnCommit(func(ctx context.Context) error {
			return s.cascade.PurgeForLabels(ctx, ids)
		})
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("labels removed", zap.Uint64s("label_ids", ids), zap.Uint64("actor", actorID))
	return nil
}

// GetByIDs 按 id 查询标签,缺失的 id 一次性报出
func (s *LabelService) GetByIDs(ctx context.Context, ids []uint64) ([]models.Label, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}
	labels, err := s.labels.FindByIDs(nil, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[uint64]struct{}, len(labels))
	for _, l := range labels {
		found[l.ID] = struct{}{}
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, xerr.NewNotFound("label", missing)
	}
	return labels, nil
}

// ListByCreator 列出操作者自己创建的标签
func (s *LabelService) ListByCreator(ctx context.Context, actorID uint64) ([]models.Label, error) {
	return s.labels.FindByCreator(actorID)
}

// loadOwnedLabels 加载标签并校验存在性和归属
// 缺失的和越权的 id 分别一次性枚举
func (s *LabelService) loadOwnedLabels(tx *gorm.DB, actorID uint64, ids []uint64) ([]models.Label, error) {
	labels, err := s.labels.FindByIDs(tx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[uint64]struct{}, len(labels))
	for _, l := range labels {
		found[l.ID] = struct{}{}
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, xerr.NewNotFound("label", missing)
	}

	var unauthorized []uint64
	for _, l := range labels {
		if l.CreatedBy != actorID {
			unauthorized = append(unauthorized, l.ID)
		}
	}
	if len(unauthorized) > 0 {
		return nil, xerr.NewForbiddenLabels(unauthorized)
	}
	return labels, nil
}
