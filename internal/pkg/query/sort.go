package query

import "strings"

// 允许参与排序的属性,请求里出现其他属性时静默忽略
var sortableColumns = map[string]string{
	"name":      "files.name",
	"size":      "files.size",
	"createdAt": "files.created_at",
	"updatedAt": "files.updated_at",
}

// SortField 单个排序指令
type SortField struct {
	Attribute string `form:"attribute" json:"attribute"`
	Desc      bool   `form:"desc" json:"desc"`
}

// OrderBy 把排序指令翻译成 ORDER BY 子句
// 不认识的属性被丢弃;最后固定追加 files.id 保证分页顺序稳定
func OrderBy(fields []SortField) string {
	clauses := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		column, ok := sortableColumns[f.Attribute]
		if !ok {
			continue
		}
		direction := "ASC"
		if f.Desc {
			direction = "DESC"
		}
		clauses = append(clauses, column+" "+direction)
	}
	clauses = append(clauses, "files.id ASC")
	return strings.Join(clauses, ", ")
}
