package catalog

import (
	"context"
	"testing"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/stretchr/testify/require"
)

func TestFileBulkCreateFillsSizeFromStore(t *testing.T) {
	fx := newFixture(t)
	url := fx.putObject(t, "objects/report.pdf", []byte("0123456789"))

	files, err := fx.fileService.BulkCreate(context.Background(), 1, []FileInput{
		{Name: "report.pdf", Path: "docs", ResourceURL: url},
	})
	require.NoError(t, err)
	require.EqualValues(t, 10, files[0].Size)
	// 目录被规范成前后都带斜杠,完整路径由目录和名字拼出
	require.Equal(t, "/docs/", files[0].Path)
	require.Equal(t, "/docs/report.pdf", files[0].FullPath)
}

func TestFileBulkCreateMissingResourceAbortsBatch(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	ok := fx.putObject(t, "objects/a.txt", []byte("aa"))

	_, err := fx.fileService.BulkCreate(ctx, 1, []FileInput{
		{Name: "a.txt", Path: "/d/", ResourceURL: ok},
		{Name: "b.txt", Path: "/d/", ResourceURL: "mem://test-bucket/objects/nope"},
	})
	require.ErrorIs(t, err, xerr.ErrResourceNotFound)

	var notFound *xerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"mem://test-bucket/objects/nope"}, notFound.Names)

	// 没有半批落库
	var n int64
	require.NoError(t, fx.db.Model(&models.File{}).Count(&n).Error)
	require.EqualValues(t, 0, n)
}

func TestFileBulkCreateFullPathConflictAbortsBatch(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.createFile(t, 1, "a.txt", "/d/")
	url := fx.putObject(t, "objects/fresh", []byte("x"))
	url2 := fx.putObject(t, "objects/fresh2", []byte("x"))

	_, err := fx.fileService.BulkCreate(ctx, 1, []FileInput{
		{Name: "a.txt", Path: "/d/", ResourceURL: url},
		{Name: "new.txt", Path: "/d/", ResourceURL: url2},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)

	var conflict *xerr.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, []string{"/d/a.txt"}, conflict.Items)

	var n int64
	require.NoError(t, fx.db.Model(&models.File{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestFileBulkCreateResourceURLConflict(t *testing.T) {
	fx := newFixture(t)
	file := fx.createFile(t, 1, "a.txt", "/d/")

	_, err := fx.fileService.BulkCreate(context.Background(), 1, []FileInput{
		{Name: "copy.txt", Path: "/other/", ResourceURL: file.ResourceURL},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)
}

func TestFileBulkCreateRejectsDuplicatePathsInBatch(t *testing.T) {
	fx := newFixture(t)
	url := fx.putObject(t, "objects/1", []byte("x"))
	url2 := fx.putObject(t, "objects/2", []byte("x"))

	_, err := fx.fileService.BulkCreate(context.Background(), 1, []FileInput{
		{Name: "a.txt", Path: "/d/", ResourceURL: url},
		{Name: "a.txt", Path: "/d/", ResourceURL: url2},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)
}

func TestFileBulkUpdateKeepsOwnPath(t *testing.T) {
	fx := newFixture(t)
	file := fx.createFile(t, 1, "a.txt", "/d/")

	// 路径不变只改描述,不应与自己冲突
	updated, err := fx.fileService.BulkUpdate(context.Background(), 1, []FileUpdate{
		{ID: file.ID, Name: "a.txt", Path: "/d/", Description: "updated"},
	})
	require.NoError(t, err)
	require.Equal(t, "updated", updated[0].Description)
	require.Equal(t, "/d/a.txt", updated[0].FullPath)
}

func TestFileBulkUpdateMove(t *testing.T) {
	fx := newFixture(t)
	file := fx.createFile(t, 1, "a.txt", "/d/")

	updated, err := fx.fileService.BulkUpdate(context.Background(), 2, []FileUpdate{
		{ID: file.ID, Name: "renamed.txt", Path: "/archive/"},
	})
	require.NoError(t, err)
	require.Equal(t, "/archive/renamed.txt", updated[0].FullPath)
	// 资源地址不可变,修改人被记录
	require.Equal(t, file.ResourceURL, updated[0].ResourceURL)
	require.EqualValues(t, 2, updated[0].UpdatedBy)
	require.EqualValues(t, 1, updated[0].CreatedBy)
}

func TestFileBulkUpdatePathTakenByOther(t *testing.T) {
	fx := newFixture(t)
	fx.createFile(t, 1, "a.txt", "/d/")
	other := fx.createFile(t, 1, "b.txt", "/d/")

	_, err := fx.fileService.BulkUpdate(context.Background(), 1, []FileUpdate{
		{ID: other.ID, Name: "a.txt", Path: "/d/"},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)
}

func TestFileBulkDeletePurgesAssignments(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	file := fx.createFile(t, 1, "a.jpg", "/pics/")
	label := fx.createLabel(t, 1, "cat")
	require.NoError(t, fx.assignmentService.AssignLabels(ctx, 1, file.ID, []uint64{label.ID}))

	require.NoError(t, fx.fileService.BulkDelete(ctx, 1, []uint64{file.ID}))

	require.EqualValues(t, 0, fx.countAssignmentRows(t))
	_, err := fx.fileService.GetByIDs(ctx, []uint64{file.ID})
	require.ErrorIs(t, err, xerr.ErrFileNotFound)
}

func TestFileBulkDeleteMissingAbortsBatch(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	file := fx.createFile(t, 1, "a.txt", "/d/")

	err := fx.fileService.BulkDelete(ctx, 1, []uint64{file.ID, 404})
	require.ErrorIs(t, err, xerr.ErrFileNotFound)

	// 整批失败,存在的那个也没被删
	got, err := fx.fileService.GetByIDs(ctx, []uint64{file.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestFileGetByIDsAttachesLabels(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	file := fx.createFile(t, 1, "a.jpg", "/pics/")
	cat := fx.createLabel(t, 1, "cat")
	dog := fx.createLabel(t, 1, "dog")
	require.NoError(t, fx.assignmentService.AssignLabels(ctx, 1, file.ID, []uint64{cat.ID, dog.ID}))
	require.NoError(t, fx.assignmentService.UnassignLabels(ctx, 1, file.ID, []uint64{dog.ID}))

	got, err := fx.fileService.GetByIDs(ctx, []uint64{file.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Labels, 1)
	require.Equal(t, "cat", got[0].Labels[0].Name)
}

func TestFileDeleteFreesPathForReuse(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	file := fx.createFile(t, 1, "a.txt", "/d/")
	require.NoError(t, fx.fileService.BulkDelete(ctx, 1, []uint64{file.ID}))

	// 软删除之后同一路径可以重新登记
	url := fx.putObject(t, "objects/again", []byte("x"))
	_, err := fx.fileService.BulkCreate(ctx, 1, []FileInput{
		{Name: "a.txt", Path: "/d/", ResourceURL: url},
	})
	require.NoError(t, err)
}
