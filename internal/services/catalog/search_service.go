package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/query"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchService 文件检索
// 条件里的 created_by/updated_by 是用户名,这里先解析成内部 id 再下推
type SearchService struct {
	files repositories.FileRepository
	users repositories.UserRepository
}

func NewSearchService(files repositories.FileRepository, users repositories.UserRepository) *SearchService {
	return &SearchService{files: files, users: users}
}

// Search 按条件分页检索 ACTIVE 文件
// 不认识的排序属性被静默忽略;用户名解析失败按未找到处理
func (s *SearchService) Search(ctx context.Context, c *models.FileSearchCriteria, sort []query.SortField, pageNumber, pageSize int) (*models.FileSearchResult, error) {
	if pageNumber < 0 {
		return nil, fmt.Errorf("页码不能为负: %w", xerr.ErrInvalidParams)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	opts := repositories.SearchOptions{
		Sort:       sort,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}

	if c.CreatedBy != nil {
		id, err := s.resolveUsername(*c.CreatedBy)
		if err != nil {
			return nil, err
		}
		opts.CreatedByID = &id
	}
	if c.UpdatedBy != nil {
		id, err := s.resolveUsername(*c.UpdatedBy)
		if err != nil {
			return nil, err
		}
		opts.UpdatedByID = &id
	}

	return s.files.SearchByCriteria(ctx, c, opts)
}

func (s *SearchService) resolveUsername(username string) (uint64, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, xerr.NewNotFoundNames("user", []string{username})
		}
		return 0, err
	}
	return user.ID, nil
}
