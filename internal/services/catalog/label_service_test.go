package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"github.com/stretchr/testify/require"
)

func TestLabelBulkCreateRejectsDuplicateNamesInBatch(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.labelService.BulkCreate(context.Background(), 1, []LabelInput{
		{Name: "cat"}, {Name: "dog"}, {Name: "cat"},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)

	var conflict *xerr.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, []string{"cat"}, conflict.Items)
}

func TestLabelBulkCreateRejectsTakenNames(t *testing.T) {
	fx := newFixture(t)
	fx.createLabel(t, 1, "cat")

	// 整批失败,dog 也不会被创建
	_, err := fx.labelService.BulkCreate(context.Background(), 2, []LabelInput{
		{Name: "cat"}, {Name: "dog"},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)

	var n int64
	require.NoError(t, fx.db.Model(&models.Label{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestLabelBulkCreateDefaultsType(t *testing.T) {
	fx := newFixture(t)

	labels, err := fx.labelService.BulkCreate(context.Background(), 1, []LabelInput{
		{Name: "plain"},
		{Name: "auto", LabelType: models.LabelTypeDetected},
	})
	require.NoError(t, err)
	require.Equal(t, models.LabelTypeUserDefined, labels[0].LabelType)
	require.Equal(t, models.LabelTypeDetected, labels[1].LabelType)
}

func TestLabelBulkUpdateKeepsOwnName(t *testing.T) {
	fx := newFixture(t)
	label := fx.createLabel(t, 1, "cat")

	// 名字没变只改描述,不应被自己的名字卡住
	updated, err := fx.labelService.BulkUpdate(context.Background(), 1, []LabelUpdate{
		{ID: label.ID, Name: "cat", Description: "felines"},
	})
	require.NoError(t, err)
	require.Equal(t, "felines", updated[0].Description)
}

func TestLabelBulkUpdateRejectsNameTakenByOther(t *testing.T) {
	fx := newFixture(t)
	fx.createLabel(t, 1, "cat")
	dog := fx.createLabel(t, 1, "dog")

	_, err := fx.labelService.BulkUpdate(context.Background(), 1, []LabelUpdate{
		{ID: dog.ID, Name: "cat"},
	})
	require.ErrorIs(t, err, xerr.ErrConflict)
}

func TestLabelBulkUpdateForbiddenForNonCreator(t *testing.T) {
	fx := newFixture(t)
	label := fx.createLabel(t, 1, "cat")

	_, err := fx.labelService.BulkUpdate(context.Background(), 2, []LabelUpdate{
		{ID: label.ID, Name: "renamed"},
	})
	require.ErrorIs(t, err, xerr.ErrForbidden)

	var forbidden *xerr.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	require.Equal(t, []uint64{label.ID}, forbidden.LabelIDs)
}

func TestLabelBulkUpdateMissingIDsEnumerated(t *testing.T) {
	fx := newFixture(t)
	label := fx.createLabel(t, 1, "cat")

	_, err := fx.labelService.BulkUpdate(context.Background(), 1, []LabelUpdate{
		{ID: label.ID, Name: "cat"},
		{ID: 404, Name: "ghost"},
		{ID: 405, Name: "ghost2"},
	})
	require.ErrorIs(t, err, xerr.ErrLabelNotFound)

	var notFound *xerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []uint64{404, 405}, notFound.IDs)
}

func TestLabelBulkDeleteRequiresOwnership(t *testing.T) {
	fx := newFixture(t)
	label := fx.createLabel(t, 1, "cat")

	err := fx.labelService.BulkDelete(context.Background(), 2, []uint64{label.ID})
	require.ErrorIs(t, err, xerr.ErrForbidden)
}

func TestLabelBulkDeletePurgesAssignments(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	label := fx.createLabel(t, 1, "cat")
	file := fx.createFile(t, 1, "photo.jpg", "/pics/")
	require.NoError(t, fx.assignmentService.AssignLabels(ctx, 1, file.ID, []uint64{label.ID}))

	require.NoError(t, fx.labelService.BulkDelete(ctx, 1, []uint64{label.ID}))

	// 指派被物理清除,标签名立即可以复用
	require.EqualValues(t, 0, fx.countAssignmentRows(t))
	_, err := fx.labelService.BulkCreate(ctx, 2, []LabelInput{{Name: "cat"}})
	require.NoError(t, err)

	// 检索也不再命中
	result, err := fx.files.SearchByCriteria(ctx, &models.FileSearchCriteria{
		ContainsAnyLabels: []string{"cat"},
	}, repositories.SearchOptions{PageSize: 10})
	require.NoError(t, err)
	require.Empty(t, result.Items)
}

func TestLabelGetByIDsMissingEnumerated(t *testing.T) {
	fx := newFixture(t)
	label := fx.createLabel(t, 1, "cat")

	_, err := fx.labelService.GetByIDs(context.Background(), []uint64{label.ID, 999})
	require.ErrorIs(t, err, xerr.ErrNotFound)

	var notFound *xerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "label", notFound.Resource)
	require.Equal(t, []uint64{999}, notFound.IDs)
}

func TestLabelGetByIDsRejectsDuplicates(t *testing.T) {
	fx := newFixture(t)
	label := fx.createLabel(t, 1, "cat")

	_, err := fx.labelService.GetByIDs(context.Background(), []uint64{label.ID, label.ID})
	require.ErrorIs(t, err, xerr.ErrDuplicateID)
}

func TestLabelListByCreator(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.createLabel(t, 1, "zebra")
	fx.createLabel(t, 1, "ant")
	fx.createLabel(t, 2, "other")

	mine, err := fx.labelService.ListByCreator(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// 按名称排序返回
	require.Equal(t, "ant", mine[0].Name)
	require.Equal(t, "zebra", mine[1].Name)
}

func TestLabelErrorChainKeepsSentinels(t *testing.T) {
	err := xerr.NewNotFound("label", []uint64{3, 1, 2})
	require.ErrorIs(t, err, xerr.ErrNotFound)
	require.ErrorIs(t, err, xerr.ErrLabelNotFound)
	require.False(t, errors.Is(err, xerr.ErrFileNotFound))

	var notFound *xerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []uint64{1, 2, 3}, notFound.IDs)
}
