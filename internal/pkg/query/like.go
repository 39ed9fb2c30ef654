package query

import "strings"

// LIKE 通配符按字面量匹配:用户输入里的 % 和 _ 不能当通配符用
// 转义字符选用 '!' 而不是反斜杠,因为反斜杠字面量在 MySQL 和 SQLite 中的
// 解析规则不同,'!' 在两边行为一致
const likeEscapeChar = "!"

var likeEscaper = strings.NewReplacer(
	likeEscapeChar, likeEscapeChar+likeEscapeChar,
	"%", likeEscapeChar+"%",
	"_", likeEscapeChar+"_",
)

// EscapeLike 转义 LIKE 模式中的通配符
func EscapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// LikeContains 构造子串匹配条件,大小写不敏感由列的 collation 决定
func LikeContains(column, value string) Predicate {
	return &rawPredicate{
		sql:  column + " LIKE ? ESCAPE '" + likeEscapeChar + "'",
		args: []interface{}{"%" + EscapeLike(value) + "%"},
	}
}

// LikeStartsWith 构造前缀匹配条件
func LikeStartsWith(column, value string) Predicate {
	return &rawPredicate{
		sql:  column + " LIKE ? ESCAPE '" + likeEscapeChar + "'",
		args: []interface{}{EscapeLike(value) + "%"},
	}
}
