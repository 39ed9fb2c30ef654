package query

import "strings"

// Predicate 表示一段可以拼入 WHERE 子句的条件
// nil Predicate 约定为"不限制",调用方需要在拼接前过滤掉
type Predicate interface {
	// Translate 返回 SQL 片段和对应的占位参数
	Translate() (string, []interface{})
}

type rawPredicate struct {
	sql  string
	args []interface{}
}

func (p *rawPredicate) Translate() (string, []interface{}) {
	return p.sql, p.args
}

// Raw 用给定 SQL 片段构造条件
func Raw(sql string, args ...interface{}) Predicate {
	return &rawPredicate{sql: sql, args: args}
}

// Equals 构造等值条件
func Equals(column string, value interface{}) Predicate {
	return &rawPredicate{sql: column + " = ?", args: []interface{}{value}}
}

// GTE 构造大于等于条件
func GTE(column string, value interface{}) Predicate {
	return &rawPredicate{sql: column + " >= ?", args: []interface{}{value}}
}

// LTE 构造小于等于条件
func LTE(column string, value interface{}) Predicate {
	return &rawPredicate{sql: column + " <= ?", args: []interface{}{value}}
}

type andPredicate struct {
	parts []Predicate
}

func (p *andPredicate) Translate() (string, []interface{}) {
	clauses := make([]string, 0, len(p.parts))
	var args []interface{}
	for _, part := range p.parts {
		sql, partArgs := part.Translate()
		clauses = append(clauses, "("+sql+")")
		args = append(args, partArgs...)
	}
	return strings.Join(clauses, " AND "), args
}

// And 把多个条件按 AND 合并,自动跳过 nil
// 全部为 nil 时返回 nil,表示没有任何限制
func And(parts ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(parts))
	for _, part := range parts {
		if part != nil {
			kept = append(kept, part)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &andPredicate{parts: kept}
}
