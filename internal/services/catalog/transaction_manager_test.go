package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockTM(t *testing.T) (TransactionManager, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewTransactionManager(db), mock
}

func TestWithTransactionRunsHooksAfterCommit(t *testing.T) {
	tm, mock := newMockTM(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var order []string
	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB, hooks *CommitHooks) error {
		hooks.OnCommit(func(ctx context.Context) error {
			order = append(order, "hook")
			return nil
		})
		order = append(order, "body")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"body", "hook"}, order)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionDiscardsHooksOnRollback(t *testing.T) {
	tm, mock := newMockTM(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	hookRan := false
	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB, hooks *CommitHooks) error {
		hooks.OnCommit(func(ctx context.Context) error {
			hookRan = true
			return nil
		})
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, hookRan)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionHookErrorNotReturned(t *testing.T) {
	tm, mock := newMockTM(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	// 主事务已提交,钩子失败只记日志不回传
	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB, hooks *CommitHooks) error {
		hooks.OnCommit(func(ctx context.Context) error {
			return errors.New("cleanup failed")
		})
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
