package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/query"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Label{},
		&models.LabelAssignment{},
	))
	return db
}

func seedFile(t *testing.T, db *gorm.DB, name, path, url string, size int64, createdBy uint64, createdAt time.Time) *models.File {
	t.Helper()
	file := &models.File{
		Name:        name,
		Path:        path,
		FullPath:    path + name,
		Size:        size,
		ResourceURL: url,
	}
	file.InitAudit(createdBy)
	file.CreatedAt = createdAt
	file.UpdatedAt = createdAt
	require.NoError(t, db.Create(file).Error)
	return file
}

func seedLabel(t *testing.T, db *gorm.DB, name string, createdBy uint64) *models.Label {
	t.Helper()
	label := &models.Label{Name: name, LabelType: models.LabelTypeUserDefined}
	label.InitAudit(createdBy)
	require.NoError(t, db.Create(label).Error)
	return label
}

func assignLabel(t *testing.T, db *gorm.DB, labelID, fileID uint64) {
	t.Helper()
	row := &models.LabelAssignment{LabelID: labelID, FileID: fileID}
	row.InitAudit(1)
	require.NoError(t, db.Create(row).Error)
}

func TestSearchEmptyCriteriaReturnsAllActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	seedFile(t, db, "a.txt", "/docs/", "http://minio/b/a", 10, 1, now)
	seedFile(t, db, "b.txt", "/docs/", "http://minio/b/b", 20, 1, now)
	removed := seedFile(t, db, "c.txt", "/docs/", "http://minio/b/c", 30, 1, now)
	require.NoError(t, repo.MarkRemoved(nil, []uint64{removed.ID}, 1))

	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, result.TotalCount)
	require.Len(t, result.Items, 2)
	for _, f := range result.Items {
		require.NotEqual(t, removed.ID, f.ID)
	}
}

func TestSearchNameTreatsWildcardsAsLiterals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	exact := seedFile(t, db, "sale-100%.txt", "/docs/", "http://minio/b/1", 10, 1, now)
	seedFile(t, db, "sale-100x.txt", "/docs/", "http://minio/b/2", 10, 1, now)
	seedFile(t, db, "report_v1.txt", "/docs/", "http://minio/b/3", 10, 1, now)
	underscore := seedFile(t, db, "report_v2.txt", "/docs/", "http://minio/b/4", 10, 1, now)

	name := "100%"
	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{Name: &name}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, exact.ID, result.Items[0].ID)

	// _ 不匹配任意字符
	name = "t_v2"
	result, err = repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{Name: &name}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, underscore.ID, result.Items[0].ID)
}

func TestSearchSizeRangeCollapsesToEquality(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	seedFile(t, db, "s.txt", "/d/", "http://minio/b/s", 10, 1, now)
	mid := seedFile(t, db, "m.txt", "/d/", "http://minio/b/m", 20, 1, now)
	seedFile(t, db, "l.txt", "/d/", "http://minio/b/l", 30, 1, now)

	size := int64(20)
	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{
		MinSize: &size, MaxSize: &size,
	}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, mid.ID, result.Items[0].ID)

	min := int64(15)
	result, err = repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{MinSize: &min}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
}

func TestSearchCreatedAtRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seedFile(t, db, "old.txt", "/d/", "http://minio/b/old", 1, 1, base.AddDate(0, -2, 0))
	recent := seedFile(t, db, "new.txt", "/d/", "http://minio/b/new", 1, 1, base)

	min := base.AddDate(0, -1, 0)
	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{
		MinCreatedAt: &min,
	}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, recent.ID, result.Items[0].ID)
}

func TestSearchByCreator(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	mine := seedFile(t, db, "mine.txt", "/d/", "http://minio/b/mine", 1, 7, now)
	seedFile(t, db, "other.txt", "/d/", "http://minio/b/other", 1, 8, now)

	creator := uint64(7)
	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{}, SearchOptions{
		CreatedByID: &creator,
		PageSize:    10,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, mine.ID, result.Items[0].ID)
}

func TestSearchContainsAnyLabels(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	cat := seedLabel(t, db, "cat", 1)
	dog := seedLabel(t, db, "dog", 1)
	f1 := seedFile(t, db, "1.jpg", "/p/", "http://minio/b/1", 1, 1, now)
	f2 := seedFile(t, db, "2.jpg", "/p/", "http://minio/b/2", 1, 1, now)
	seedFile(t, db, "3.jpg", "/p/", "http://minio/b/3", 1, 1, now)
	assignLabel(t, db, cat.ID, f1.ID)
	assignLabel(t, db, dog.ID, f2.ID)

	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{
		ContainsAnyLabels: []string{"cat", "dog"},
	}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, result.TotalCount)

	// 空集合不构成限制
	result, err = repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{
		ContainsAnyLabels: []string{},
	}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 3, result.TotalCount)
}

func TestSearchContainsAllLabels(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	cat := seedLabel(t, db, "cat", 1)
	dog := seedLabel(t, db, "dog", 1)
	both := seedFile(t, db, "both.jpg", "/p/", "http://minio/b/both", 1, 1, now)
	catOnly := seedFile(t, db, "cat.jpg", "/p/", "http://minio/b/cat", 1, 1, now)
	assignLabel(t, db, cat.ID, both.ID)
	assignLabel(t, db, dog.ID, both.ID)
	assignLabel(t, db, cat.ID, catOnly.ID)

	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{
		ContainsAllLabels: []string{"cat", "dog"},
	}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, both.ID, result.Items[0].ID)
}

func TestSearchRemovedAssignmentDoesNotMatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	assignments := NewAssignmentRepository(db)
	now := time.Now()

	cat := seedLabel(t, db, "cat", 1)
	f := seedFile(t, db, "1.jpg", "/p/", "http://minio/b/1", 1, 1, now)
	assignLabel(t, db, cat.ID, f.ID)
	require.NoError(t, assignments.MarkRemovedPairs(nil, []AssignmentPair{{LabelID: cat.ID, FileID: f.ID}}, 1))

	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{
		ContainsAnyLabels: []string{"cat"},
	}, SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Empty(t, result.Items)
}

func TestSearchSortingAndPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	seedFile(t, db, "a.txt", "/d/", "http://minio/b/a", 30, 1, now)
	seedFile(t, db, "b.txt", "/d/", "http://minio/b/b", 10, 1, now)
	seedFile(t, db, "c.txt", "/d/", "http://minio/b/c", 20, 1, now)

	// 不在白名单的属性被静默忽略,剩下 size 升序生效
	result, err := repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{}, SearchOptions{
		Sort: []query.SortField{
			{Attribute: "resourceUrl", Desc: true},
			{Attribute: "size"},
		},
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	require.EqualValues(t, 10, result.Items[0].Size)
	require.EqualValues(t, 20, result.Items[1].Size)
	require.EqualValues(t, 30, result.Items[2].Size)

	// 分页:总数不受影响,第二页只剩一条
	result, err = repo.SearchByCriteria(context.Background(), &models.FileSearchCriteria{}, SearchOptions{
		Sort:       []query.SortField{{Attribute: "size"}},
		PageNumber: 1,
		PageSize:   2,
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, result.TotalCount)
	require.Len(t, result.Items, 1)
	require.EqualValues(t, 30, result.Items[0].Size)
}

func TestFindByFullPathsOnlyActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	now := time.Now()

	f := seedFile(t, db, "a.txt", "/d/", "http://minio/b/a", 1, 1, now)
	require.NoError(t, repo.MarkRemoved(nil, []uint64{f.ID}, 1))

	// 软删除后同路径可以重新登记
	found, err := repo.FindByFullPaths(nil, []string{"/d/a.txt"})
	require.NoError(t, err)
	require.Empty(t, found)
}
