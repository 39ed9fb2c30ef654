package models

import "time"

// FileSearchCriteria 文件检索条件,所有字段均可选
// 字段为空(nil/空集合)表示该维度不做限制
type FileSearchCriteria struct {
	Name         *string    `form:"name" json:"name"`                     // 名称子串匹配,通配符按字面量处理
	Path         *string    `form:"path" json:"path"`                     // 逻辑目录前缀匹配
	MinSize      *int64     `form:"min_size" json:"min_size"`             // 字节
	MaxSize      *int64     `form:"max_size" json:"max_size"`
	MinCreatedAt *time.Time `form:"min_created_at" json:"min_created_at"`
	MaxCreatedAt *time.Time `form:"max_created_at" json:"max_created_at"`
	MinUpdatedAt *time.Time `form:"min_updated_at" json:"min_updated_at"`
	MaxUpdatedAt *time.Time `form:"max_updated_at" json:"max_updated_at"`
	CreatedBy    *string    `form:"created_by" json:"created_by"` // 用户名,不是内部ID
	UpdatedBy    *string    `form:"updated_by" json:"updated_by"`

	// 标签集合过滤:any 表示至少命中一个,all 表示全部命中
	ContainsAnyLabels []string `form:"any_labels" json:"any_labels"`
	ContainsAllLabels []string `form:"all_labels" json:"all_labels"`
}

// FileSearchResult 分页检索结果
type FileSearchResult struct {
	Items      []File `json:"items"`
	TotalCount int64  `json:"total_count"`
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
}
