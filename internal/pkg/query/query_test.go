package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	require.Equal(t, "plain", EscapeLike("plain"))
	require.Equal(t, "100!%", EscapeLike("100%"))
	require.Equal(t, "a!_b", EscapeLike("a_b"))
	require.Equal(t, "bang!!", EscapeLike("bang!"))
	require.Equal(t, "!%!_!!", EscapeLike("%_!"))
}

func TestLikeContains(t *testing.T) {
	sql, args := LikeContains("files.name", "report_v1").Translate()
	require.Equal(t, "files.name LIKE ? ESCAPE '!'", sql)
	require.Equal(t, []interface{}{"%report!_v1%"}, args)
}

func TestLikeStartsWith(t *testing.T) {
	sql, args := LikeStartsWith("files.path", "/docs/%archive/").Translate()
	require.Equal(t, "files.path LIKE ? ESCAPE '!'", sql)
	require.Equal(t, []interface{}{"/docs/!%archive/%"}, args)
}

func TestRangeInt64(t *testing.T) {
	min := int64(10)
	max := int64(20)
	same := int64(15)

	require.Nil(t, RangeInt64("files.size", nil, nil))

	sql, args := RangeInt64("files.size", &min, nil).Translate()
	require.Equal(t, "files.size >= ?", sql)
	require.Equal(t, []interface{}{int64(10)}, args)

	sql, args = RangeInt64("files.size", nil, &max).Translate()
	require.Equal(t, "files.size <= ?", sql)
	require.Equal(t, []interface{}{int64(20)}, args)

	sql, args = RangeInt64("files.size", &min, &max).Translate()
	require.Equal(t, "(files.size >= ?) AND (files.size <= ?)", sql)
	require.Equal(t, []interface{}{int64(10), int64(20)}, args)

	// 上下界相等时折叠成等值
	sql, args = RangeInt64("files.size", &same, &same).Translate()
	require.Equal(t, "files.size = ?", sql)
	require.Equal(t, []interface{}{int64(15)}, args)
}

func TestRangeTime(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.Nil(t, RangeTime("files.created_at", nil, nil))

	sql, args := RangeTime("files.created_at", &at, &at).Translate()
	require.Equal(t, "files.created_at = ?", sql)
	require.Equal(t, []interface{}{at}, args)
}

func TestAndSkipsNil(t *testing.T) {
	require.Nil(t, And(nil, nil))

	single := Equals("files.id", uint64(1))
	require.Same(t, single, And(nil, single, nil))

	sql, args := And(Equals("a", 1), nil, Equals("b", 2)).Translate()
	require.Equal(t, "(a = ?) AND (b = ?)", sql)
	require.Equal(t, []interface{}{1, 2}, args)
}

func TestContainsAnyLabels(t *testing.T) {
	require.Nil(t, ContainsAnyLabels(nil))
	require.Nil(t, ContainsAnyLabels([]string{}))

	sql, args := ContainsAnyLabels([]string{"cat", "dog"}).Translate()
	require.Contains(t, sql, "EXISTS (SELECT 1 FROM label_assignments la")
	require.Contains(t, sql, "l.name IN (?,?)")
	require.Equal(t, []interface{}{"cat", "dog"}, args)
}

func TestContainsAllLabels(t *testing.T) {
	require.Nil(t, ContainsAllLabels(nil))

	sql, args := ContainsAllLabels([]string{"cat", "dog", "cat"}).Translate()
	require.Contains(t, sql, "COUNT(DISTINCT la.label_id)")
	require.Contains(t, sql, "l.name IN (?,?)")
	// 重复名去重后参与计数比较
	require.Equal(t, []interface{}{"cat", "dog", 2}, args)
}

func TestOrderBy(t *testing.T) {
	// 空排序也要有稳定的兜底顺序
	require.Equal(t, "files.id ASC", OrderBy(nil))

	clause := OrderBy([]SortField{
		{Attribute: "name"},
		{Attribute: "size", Desc: true},
	})
	require.Equal(t, "files.name ASC, files.size DESC, files.id ASC", clause)

	// 不在白名单里的属性被静默丢弃
	clause = OrderBy([]SortField{
		{Attribute: "resource_url", Desc: true},
		{Attribute: "createdAt", Desc: true},
	})
	require.Equal(t, "files.created_at DESC, files.id ASC", clause)
}
