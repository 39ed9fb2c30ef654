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

// AssignmentRequest 一个文件和要在它上面操作的标签集合
type AssignmentRequest struct {
	FileID   uint64   `json:"file_id" binding:"required"`
	LabelIDs []uint64 `json:"label_ids" binding:"required,min=1"`
}

// AssignmentService 标签指派的一致性引擎
// 指派创建不幂等:重复指派按冲突报出;解除指派幂等:未指派的组合静默跳过
// 任何人都可以给文件指派/解除标签,不要求是标签创建者
type AssignmentService struct {
	tm          TransactionManager
	files       repositories.FileRepository
	labels      repositories.LabelRepository
	assignments repositories.AssignmentRepository
}

func NewAssignmentService(tm TransactionManager, files repositories.FileRepository, labels repositories.LabelRepository, assignments repositories.AssignmentRepository) *AssignmentService {
	return &AssignmentService{tm: tm, files: files, labels: labels, assignments: assignments}
}

// CreateAssignments 批量指派:每个请求项是一个文件和一组标签,整批成功或整批失败
// 已是 ACTIVE 的组合按冲突一次性枚举;REMOVED 的旧行复活而不是重插,
// 因为复合主键挡住了同组合的第二行
func (s *AssignmentService) CreateAssignments(ctx context.Context, actorID uint64, reqs []AssignmentRequest) error {
	pairs, fileIDs, labelIDs, err := flattenRequests(reqs)
	if err != nil {
		return err
	}

	err = s.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		if err := s.checkTargets(tx, fileIDs, labelIDs); err != nil {
			return err
		}

		existing, err := s.assignments.FindPairs(tx, pairs)
		if err != nil {
			return err
		}
		state := make(map[repositories.AssignmentPair]string, len(existing))
		for _, row := range existing {
			state[repositories.AssignmentPair{LabelID: row.LabelID, FileID: row.FileID}] = row.ObjectState
		}

		var conflicts []string
		var revive []repositories.AssignmentPair
		var fresh []*models.LabelAssignment
		for _, pair := range pairs {
			switch state[pair] {
			case models.ObjectStateActive:
				conflicts = append(conflicts, fmt.Sprintf("label %d -> file %d", pair.LabelID, pair.FileID))
			case models.ObjectStateRemoved:
				revive = append(revive, pair)
			default:
				row := &models.LabelAssignment{LabelID: pair.LabelID, FileID: pair.FileID}
				row.InitAudit(actorID)
				fresh = append(fresh, row)
			}
		}
		if len(conflicts) > 0 {
			return xerr.NewConflict("assignment", "标签已指派给文件", conflicts)
		}

		if err := s.assignments.Resurrect(tx, revive, actorID); err != nil {
			return err
		}
		return s.assignments.CreateBatch(tx, fresh)
	})
	if err != nil {
		return err
	}

	logger.Info("labels assigned", zap.Int("pairs", len(pairs)), zap.Uint64("actor", actorID))
	return nil
}

// DeleteAssignments 批量解除指派
// 文件和标签必须存在,但未指派的组合不算错误
func (s *AssignmentService) DeleteAssignments(ctx context.Context, actorID uint64, reqs []AssignmentRequest) error {
	pairs, fileIDs, labelIDs, err := flattenRequests(reqs)
	if err != nil {
		return err
	}

	err = s.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		if err := s.checkTargets(tx, fileIDs, labelIDs); err != nil {
			return err
		}
		return s.assignments.MarkRemovedPairs(tx, pairs, actorID)
	})
	if err != nil {
		return err
	}

	logger.Info("labels unassigned", zap.Int("pairs", len(pairs)), zap.Uint64("actor", actorID))
	return nil
}

// AssignLabels 单文件指派,/files/:id/labels 路由用
func (s *AssignmentService) AssignLabels(ctx context.Context, actorID, fileID uint64, labelIDs []uint64) error {
	return s.CreateAssignments(ctx, actorID, []AssignmentRequest{{FileID: fileID, LabelIDs: labelIDs}})
}

// UnassignLabels 单文件解除指派
func (s *AssignmentService) UnassignLabels(ctx context.Context, actorID, fileID uint64, labelIDs []uint64) error {
	return s.DeleteAssignments(ctx, actorID, []AssignmentRequest{{FileID: fileID, LabelIDs: labelIDs}})
}

// flattenRequests 把请求展平成组合键列表,并收集去重后的文件id和标签id
// 同一文件重复出现或同一组合重复出现都按重复id报错
func flattenRequests(reqs []AssignmentRequest) ([]repositories.AssignmentPair, []uint64, []uint64, error) {
	if len(reqs) == 0 {
		return nil, nil, nil, fmt.Errorf("指派请求不能为空: %w", xerr.ErrInvalidParams)
	}

	var pairs []repositories.AssignmentPair
	var fileIDs []uint64
	seenFile := make(map[uint64]struct{})
	seenLabel := make(map[uint64]struct{})
	var labelIDs []uint64
	for _, req := range reqs {
		if req.FileID == 0 {
			return nil, nil, nil, fmt.Errorf("文件id不能为0: %w", xerr.ErrInvalidParams)
		}
		if _, ok := seenFile[req.FileID]; ok {
			return nil, nil, nil, fmt.Errorf("文件 %d 在请求中重复出现: %w", req.FileID, xerr.ErrDuplicateID)
		}
		seenFile[req.FileID] = struct{}{}
		fileIDs = append(fileIDs, req.FileID)

		if len(req.LabelIDs) == 0 {
			return nil, nil, nil, fmt.Errorf("标签列表不能为空: %w", xerr.ErrInvalidParams)
		}
		if err := validateIDs(req.LabelIDs); err != nil {
			return nil, nil, nil, err
		}
		for _, labelID := range req.LabelIDs {
			pairs = append(pairs, repositories.AssignmentPair{LabelID: labelID, FileID: req.FileID})
			if _, ok := seenLabel[labelID]; !ok {
				seenLabel[labelID] = struct{}{}
				labelIDs = append(labelIDs, labelID)
			}
		}
	}
	return pairs, fileIDs, labelIDs, nil
}

// checkTargets 校验文件和标签都是 ACTIVE,缺失的分别一次性枚举
func (s *AssignmentService) checkTargets(tx *gorm.DB, fileIDs, labelIDs []uint64) error {
	files, err := s.files.FindByIDs(tx, fileIDs)
	if err != nil {
		return err
	}
	foundFiles := make(map[uint64]struct{}, len(files))
	for _, f := range files {
		foundFiles[f.ID] = struct{}{}
	}
	if missing := missingIDs(fileIDs, foundFiles); len(missing) > 0 {
		return xerr.NewNotFound("file", missing)
	}

	labels, err := s.labels.FindByIDs(tx, labelIDs)
	if err != nil {
		return err
	}
	foundLabels := make(map[uint64]struct{}, len(labels))
	for _, l := range labels {
		foundLabels[l.ID] = struct{}{}
	}
	if missing := missingIDs(labelIDs, foundLabels); len(missing) > 0 {
		return xerr.NewNotFound("label", missing)
	}
	return nil
}
