package query

import (
	"strings"
	"time"
)

// RangeInt64 构造数值范围条件
// 两端都给且相等时折叠成等值;只给一端时退化为单边不等式;都不给返回 nil
func RangeInt64(column string, min, max *int64) Predicate {
	switch {
	case min != nil && max != nil && *min == *max:
		return Equals(column, *min)
	case min != nil && max != nil:
		return And(GTE(column, *min), LTE(column, *max))
	case min != nil:
		return GTE(column, *min)
	case max != nil:
		return LTE(column, *max)
	}
	return nil
}

// RangeTime 构造时间范围条件,折叠规则与 RangeInt64 相同
func RangeTime(column string, min, max *time.Time) Predicate {
	switch {
	case min != nil && max != nil && min.Equal(*max):
		return Equals(column, *min)
	case min != nil && max != nil:
		return And(GTE(column, *min), LTE(column, *max))
	case min != nil:
		return GTE(column, *min)
	case max != nil:
		return LTE(column, *max)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ContainsAnyLabels 构造"至少命中一个标签"的相关子查询
// 空集合不构成限制,返回 nil
func ContainsAnyLabels(names []string) Predicate {
	if len(names) == 0 {
		return nil
	}
	sql := `EXISTS (SELECT 1 FROM label_assignments la
		JOIN labels l ON l.id = la.label_id
		WHERE la.file_id = files.id
		AND la.object_state = 'ACTIVE'
		AND l.object_state = 'ACTIVE'
		AND l.name IN (` + placeholders(len(names)) + `))`
	args := make([]interface{}, len(names))
	for i, name := range names {
		args[i] = name
	}
	return &rawPredicate{sql: sql, args: args}
}

// ContainsAllLabels 构造"全部命中"的相关子查询
// 统计命中的不同标签数并要求不小于集合大小,重复名去重后比较
func ContainsAllLabels(names []string) Predicate {
	distinct := dedupe(names)
	if len(distinct) == 0 {
		return nil
	}
	sql := `(SELECT COUNT(DISTINCT la.label_id) FROM label_assignments la
		JOIN labels l ON l.id = la.label_id
		WHERE la.file_id = files.id
		AND la.object_state = 'ACTIVE'
		AND l.object_state = 'ACTIVE'
		AND l.name IN (` + placeholders(len(distinct)) + `)) >= ?`
	args := make([]interface{}, 0, len(distinct)+1)
	for _, name := range distinct {
		args = append(args, name)
	}
	args = append(args, len(distinct))
	return &rawPredicate{sql: sql, args: args}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
