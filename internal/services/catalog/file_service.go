package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/cache"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/storage"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const fileCacheTTL = 10 * time.Minute

// FileInput 创建文件元数据的输入
// Size 不由调用方提供,以对象存储里的真实大小为准
type FileInput struct {
	Name        string `json:"name" binding:"required,max=255"`
	Path        string `json:"path" binding:"required,max=512"`
	Description string `json:"description" binding:"max=1000"`
	ResourceURL string `json:"resource_url" binding:"required,max=512"`
}

// FileUpdate 更新文件元数据的输入,资源地址创建后不可变
type FileUpdate struct {
	ID          uint64 `json:"id" binding:"required"`
	Name        string `json:"name" binding:"required,max=255"`
	Path        string `json:"path" binding:"required,max=512"`
	Description string `json:"description" binding:"max=1000"`
}

// FileWithLabels 文件元数据及其当前指派的标签
type FileWithLabels struct {
	models.File
	Labels []models.Label `json:"labels"`
}

// FileService 文件元数据的批量增删改查
// 创建前校验对象存储里资源确实存在,FullPath 和资源地址在 ACTIVE 行之间唯一
type FileService struct {
	tm          TransactionManager
	files       repositories.FileRepository
	assignments repositories.AssignmentRepository
	gateway     *storage.Gateway
	cascade     *Cascader
	cache       cache.Cache // 可为 nil,此时直接走数据库
}

func NewFileService(tm TransactionManager, files repositories.FileRepository, assignments repositories.AssignmentRepository, gateway *storage.Gateway, cascade *Cascader, fileCache cache.Cache) *FileService {
	return &FileService{tm: tm, files: files, assignments: assignments, gateway: gateway, cascade: cascade, cache: fileCache}
}

// normalizePath 保证逻辑目录以 / 开头、以 / 结尾
func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p = p + "/"
	}
	return p
}

// BulkCreate 批量登记文件元数据,整批成功或整批失败
// 每个资源地址先到对象存储确认存在,文件大小以存储侧为准
func (s *FileService) BulkCreate(ctx context.Context, actorID uint64, inputs []FileInput) ([]models.File, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("批量创建文件不能为空: %w", xerr.ErrInvalidParams)
	}

	fullPaths := make([]string, len(inputs))
	urls := make([]string, len(inputs))
	for i, in := range inputs {
		fullPaths[i] = normalizePath(in.Path) + in.Name
		urls[i] = in.ResourceURL
	}
	if dups := duplicateStrings(fullPaths); len(dups) > 0 {
		return nil, xerr.NewConflict("file", "批量请求中完整路径重复", dups)
	}
	if dups := duplicateStrings(urls); len(dups) > 0 {
		return nil, xerr.NewConflict("file", "批量请求中资源地址重复", dups)
	}

	// 缺失的资源地址由网关一次性枚举
	infos, err := s.gateway.StatMany(ctx, urls)
	if err != nil {
		return nil, err
	}

	files := make([]*models.File, len(inputs))
	for i, in := range inputs {
		file := &models.File{
			Name:        in.Name,
			Path:        normalizePath(in.Path),
			FullPath:    fullPaths[i],
			Description: in.Description,
			Size:        infos[in.ResourceURL].Size,
			ResourceURL: in.ResourceURL,
		}
		file.InitAudit(actorID)
		files[i] = file
	}

	err = s.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		if err := s.checkPathAndURLConflicts(tx, fullPaths, urls, nil); err != nil {
			return err
		}
		return s.files.CreateBatch(tx, files)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("files created", zap.Int("count", len(files)), zap.Uint64("actor", actorID))
	out := make([]models.File, len(files))
	for i, f := range files {
		out[i] = *f
	}
	return out, nil
}

// BulkUpdate 批量更新文件元数据
// FullPath 冲突检测排除被更新文件自己占用的路径
func (s *FileService) BulkUpdate(ctx context.Context, actorID uint64, updates []FileUpdate) ([]models.File, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("批量更新文件不能为空: %w", xerr.ErrInvalidParams)
	}

	ids := make([]uint64, len(updates))
	fullPaths := make([]string, len(updates))
	byID := make(map[uint64]FileUpdate, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		fullPaths[i] = normalizePath(u.Path) + u.Name
		byID[u.ID] = u
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}
	if dups := duplicateStrings(fullPaths); len(dups) > 0 {
		return nil, xerr.NewConflict("file", "批量请求中完整路径重复", dups)
	}

	own := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		own[id] = struct{}{}
	}

	var updated []models.File
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB, _ *CommitHooks) error {
		files, err := s.loadFiles(tx, ids)
		if err != nil {
			return err
		}
		if err := s.checkPathAndURLConflicts(tx, fullPaths, nil, own); err != nil {
			return err
		}

		toSave := make([]*models.File, len(files))
		for i := range files {
			file := &files[i]
			u := byID[file.ID]
			file.Name = u.Name
			file.Path = normalizePath(u.Path)
			file.FullPath = file.Path + file.Name
			file.Description = u.Description
			file.Touch(actorID)
			toSave[i] = file
		}
		if err := s.files.SaveBatch(tx, toSave); err != nil {
			return err
		}
		updated = files
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, ids)
	logger.Info("files updated", zap.Int("count", len(updated)), zap.Uint64("actor", actorID))
	return updated, nil
}

// BulkDelete 批量软删除文件,提交后级联清除相关指派
func (s *FileService) BulkDelete(ctx context.Context, actorID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return fmt.Errorf("批量删除文件不能为空: %w", xerr.ErrInvalidParams)
	}
	if err := validateIDs(ids); err != nil {
		return err
	}

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB, hooks *CommitHooks) error {
		if _, err := s.loadFiles(tx, ids); err != nil {
			return err
		}
		if err := s.files.MarkRemoved(tx, ids, actorID); err != nil {
			return err
		}
		hooks.OnCommit(func(ctx context.Context) error {
			return s.cascade.PurgeForFiles(ctx, ids)
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache(ctx, ids)
	logger.Info("files removed", zap.Uint64s("file_ids", ids), zap.Uint64("actor", actorID))
	return nil
}

// GetByIDs 按 id 查询文件及其标签,缺失的 id 一次性报出
// 文件元数据走 Redis 读穿缓存,标签总是现查,指派变化不经过文件行
func (s *FileService) GetByIDs(ctx context.Context, ids []uint64) ([]FileWithLabels, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	byID := make(map[uint64]models.File, len(ids))
	var misses []uint64
	if s.cache != nil {
		for _, id := range ids {
			var f models.File
			if err := s.cache.Get(ctx, cache.GenerateFileKey(id), &f); err == nil {
				byID[id] = f
			} else {
				misses = append(misses, id)
			}
		}
	} else {
		misses = ids
	}

	if len(misses) > 0 {
		loaded, err := s.loadFiles(nil, misses)
		if err != nil {
			return nil, err
		}
		for _, f := range loaded {
			byID[f.ID] = f
			if s.cache != nil {
				if err := s.cache.Set(ctx, cache.GenerateFileKey(f.ID), f, fileCacheTTL); err != nil {
					logger.Warn("file cache set failed", zap.Uint64("file_id", f.ID), zap.Error(err))
				}
			}
		}
	}

	files := make([]models.File, len(ids))
	for i, id := range ids {
		files[i] = byID[id]
	}
	return s.attachLabels(files)
}

// invalidateCache 变更后清掉相关文件的缓存
func (s *FileService) invalidateCache(ctx context.Context, ids []uint64) {
	if s.cache == nil {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cache.GenerateFileKey(id)
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		logger.Warn("file cache invalidation failed", zap.Uint64s("file_ids", ids), zap.Error(err))
	}
}

// AttachLabels 为一组文件补充当前指派的标签,检索结果展示用
func (s *FileService) AttachLabels(files []models.File) ([]FileWithLabels, error) {
	return s.attachLabels(files)
}

func (s *FileService) attachLabels(files []models.File) ([]FileWithLabels, error) {
	fileIDs := make([]uint64, len(files))
	for i, f := range files {
		fileIDs[i] = f.ID
	}
	rows, err := s.assignments.ListActiveByFileIDs(nil, fileIDs)
	if err != nil {
		return nil, err
	}
	byFile := make(map[uint64][]models.Label)
	for _, row := range rows {
		if row.Label != nil {
			byFile[row.FileID] = append(byFile[row.FileID], *row.Label)
		}
	}
	out := make([]FileWithLabels, len(files))
	for i, f := range files {
		out[i] = FileWithLabels{File: f, Labels: byFile[f.ID]}
	}
	return out, nil
}

func (s *FileService) loadFiles(tx *gorm.DB, ids []uint64) ([]models.File, error) {
	files, err := s.files.FindByIDs(tx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[uint64]struct{}, len(files))
	for _, f := range files {
		found[f.ID] = struct{}{}
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, xerr.NewNotFound("file", missing)
	}
	return files, nil
}

// checkPathAndURLConflicts 检查 FullPath 和资源地址与现有 ACTIVE 行的冲突
// exclude 里的文件 id(更新场景下是本批文件)不算冲突
func (s *FileService) checkPathAndURLConflicts(tx *gorm.DB, fullPaths, urls []string, exclude map[uint64]struct{}) error {
	existing, err := s.files.FindByFullPaths(tx, fullPaths)
	if err != nil {
		return err
	}
	var takenPaths []string
	for _, f := range existing {
		if _, ok := exclude[f.ID]; !ok {
			takenPaths = append(takenPaths, f.FullPath)
		}
	}
	if len(takenPaths) > 0 {
		return xerr.NewConflict("file", "完整路径已被占用", takenPaths)
	}

	existing, err = s.files.FindByResourceURLs(tx, urls)
	if err != nil {
		return err
	}
	var takenURLs []string
	for _, f := range existing {
		if _, ok := exclude[f.ID]; !ok {
			takenURLs = append(takenURLs, f.ResourceURL)
		}
	}
	if len(takenURLs) > 0 {
		return xerr.NewConflict("file", "资源地址已被其他文件引用", takenURLs)
	}
	return nil
}
