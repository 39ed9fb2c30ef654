package models

// 标签类别
const (
	LabelTypeUserDefined = "USER_DEFINED" // 用户手动创建
	LabelTypeDetected    = "DETECTED"     // 识别服务推荐后采纳
	LabelTypeSystem      = "SYSTEM"       // 系统预置
)

// Label 对应 labels 表,可复用的文件标签
// 只有创建者(CreatedBy)有权修改或删除标签
type Label struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(40);not null;index" json:"name"` // ACTIVE 范围内唯一,区分大小写
	Description string `gorm:"type:varchar(1000)" json:"description"`
	LabelType   string `gorm:"type:varchar(32);not null" json:"label_type"`

	AuditInfo
}

// TableName 指定 GORM 使用的表名
func (Label) TableName() string {
	return "labels"
}
