package models

// LabelAssignment 对应 label_assignments 表,标签和文件的多对多关联
// 复合主键 (label_id, file_id),同一组合最多存在一条 ACTIVE 记录
// 只能通过指派一致性引擎创建/删除,不存在"更新指派"操作
type LabelAssignment struct {
	LabelID uint64 `gorm:"primaryKey;autoIncrement:false" json:"label_id"`
	FileID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"file_id"`

	AuditInfo

	Label *Label `gorm:"foreignKey:LabelID" json:"-"`
	File  *File  `gorm:"foreignKey:FileID" json:"-"`
}

// TableName 指定 GORM 使用的表名
func (LabelAssignment) TableName() string {
	return "label_assignments"
}
