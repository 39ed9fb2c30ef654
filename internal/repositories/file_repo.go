package repositories

import (
	"context"
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/query"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SearchOptions 检索的分页与排序参数,条件本身在 models.FileSearchCriteria 中
type SearchOptions struct {
	// 条件里的 created_by/updated_by 是用户名,服务层解析成内部 id 后放在这里
	CreatedByID *uint64
	UpdatedByID *uint64
	Sort        []query.SortField
	PageNumber  int // 从 0 开始
	PageSize    int
}

type FileRepository interface {
	CreateBatch(tx *gorm.DB, files []*models.File) error
	SaveBatch(tx *gorm.DB, files []*models.File) error
	FindByIDs(tx *gorm.DB, ids []uint64) ([]models.File, error)
	FindByFullPaths(tx *gorm.DB, fullPaths []string) ([]models.File, error)
	FindByResourceURLs(tx *gorm.DB, urls []string) ([]models.File, error)
	MarkRemoved(tx *gorm.DB, ids []uint64, actorID uint64) error
	SearchByCriteria(ctx context.Context, c *models.FileSearchCriteria, opts SearchOptions) (*models.FileSearchResult, error)
}

type fileRepository struct {
	db *gorm.DB
}

var _ FileRepository = (*fileRepository)(nil)

// NewFileRepository 创建一个新的 FileRepository 实例
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) dbOr(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *fileRepository) CreateBatch(tx *gorm.DB, files []*models.File) error {
	if len(files) == 0 {
		return nil
	}
	if err := r.dbOr(tx).Create(files).Error; err != nil {
		logger.Error("Error creating files", zap.Error(err))
		return fmt.Errorf("create files: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// SaveBatch 整行保存,调用方负责先更新审计字段
func (r *fileRepository) SaveBatch(tx *gorm.DB, files []*models.File) error {
	db := r.dbOr(tx)
	for _, file := range files {
		if err := db.Save(file).Error; err != nil {
			logger.Error("Error saving file", zap.Uint64("file_id", file.ID), zap.Error(err))
			return fmt.Errorf("save file %d: %w", file.ID, xerr.ErrDatabaseError)
		}
	}
	return nil
}

// FindByIDs 按 id 查询 ACTIVE 文件,缺失的 id 由调用方比对
func (r *fileRepository) FindByIDs(tx *gorm.DB, ids []uint64) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var files []models.File
	err := r.dbOr(tx).Scopes(ActiveScope("files")).
		Where("files.id IN ?", ids).Find(&files).Error
	if err != nil {
		logger.Error("Error finding files by ids", zap.Error(err))
		return nil, fmt.Errorf("find files: %w", xerr.ErrDatabaseError)
	}
	return files, nil
}

func (r *fileRepository) FindByFullPaths(tx *gorm.DB, fullPaths []string) ([]models.File, error) {
	if len(fullPaths) == 0 {
		return nil, nil
	}
	var files []models.File
	err := r.dbOr(tx).Scopes(ActiveScope("files")).
		Where("files.full_path IN ?", fullPaths).Find(&files).Error
	if err != nil {
		logger.Error("Error finding files by full paths", zap.Error(err))
		return nil, fmt.Errorf("find files by full path: %w", xerr.ErrDatabaseError)
	}
	return files, nil
}

func (r *fileRepository) FindByResourceURLs(tx *gorm.DB, urls []string) ([]models.File, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	var files []models.File
	err := r.dbOr(tx).Scopes(ActiveScope("files")).
		Where("files.resource_url IN ?", urls).Find(&files).Error
	if err != nil {
		logger.Error("Error finding files by resource urls", zap.Error(err))
		return nil, fmt.Errorf("find files by resource url: %w", xerr.ErrDatabaseError)
	}
	return files, nil
}

// MarkRemoved 软删除:置 REMOVED 并更新审计字段
func (r *fileRepository) MarkRemoved(tx *gorm.DB, ids []uint64, actorID uint64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.dbOr(tx).Model(&models.File{}).
		Scopes(ActiveScope("files")).
		Where("files.id IN ?", ids).
		Updates(map[string]interface{}{
			"object_state": models.ObjectStateRemoved,
			"updated_by":   actorID,
		}).Error
	if err != nil {
		logger.Error("Error removing files", zap.Error(err))
		return fmt.Errorf("remove files: %w", xerr.ErrDatabaseError)
	}
	return nil
}

// SearchByCriteria 分页检索
// 同一组条件分别应用到计数查询和分页查询,保证 total 和当前页一致
func (r *fileRepository) SearchByCriteria(ctx context.Context, c *models.FileSearchCriteria, opts SearchOptions) (*models.FileSearchResult, error) {
	predicate := r.buildPredicate(c, opts)

	apply := func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(ActiveScope("files"))
		if predicate != nil {
			sql, args := predicate.Translate()
			db = db.Where(sql, args...)
		}
		return db
	}

	var total int64
	if err := apply(r.db.WithContext(ctx).Model(&models.File{})).Count(&total).Error; err != nil {
		logger.Error("Error counting files", zap.Error(err))
		return nil, fmt.Errorf("count files: %w", xerr.ErrDatabaseError)
	}

	var files []models.File
	err := apply(r.db.WithContext(ctx).Model(&models.File{})).
		Order(query.OrderBy(opts.Sort)).
		Offset(opts.PageNumber * opts.PageSize).
		Limit(opts.PageSize).
		Find(&files).Error
	if err != nil {
		logger.Error("Error searching files", zap.Error(err))
		return nil, fmt.Errorf("search files: %w", xerr.ErrDatabaseError)
	}

	return &models.FileSearchResult{
		Items:      files,
		TotalCount: total,
		PageNumber: opts.PageNumber,
		PageSize:   opts.PageSize,
	}, nil
}

func (r *fileRepository) buildPredicate(c *models.FileSearchCriteria, opts SearchOptions) query.Predicate {
	var parts []query.Predicate

	if c.Name != nil {
		parts = append(parts, query.LikeContains("files.name", *c.Name))
	}
	if c.Path != nil {
		parts = append(parts, query.LikeStartsWith("files.path", *c.Path))
	}
	parts = append(parts,
		query.RangeInt64("files.size", c.MinSize, c.MaxSize),
		query.RangeTime("files.created_at", c.MinCreatedAt, c.MaxCreatedAt),
		query.RangeTime("files.updated_at", c.MinUpdatedAt, c.MaxUpdatedAt),
	)
	if opts.CreatedByID != nil {
		parts = append(parts, query.Equals("files.created_by", *opts.CreatedByID))
	}
	if opts.UpdatedByID != nil {
		parts = append(parts, query.Equals("files.updated_by", *opts.UpdatedByID))
	}
	parts = append(parts,
		query.ContainsAnyLabels(c.ContainsAnyLabels),
		query.ContainsAllLabels(c.ContainsAllLabels),
	)

	return query.And(parts...)
}
