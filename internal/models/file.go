package models

// File 对应 files 表,上传资源的元数据记录
// 文件内容本身存储在外部对象存储中,通过 ResourceURL 引用
type File struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Path        string `gorm:"type:varchar(512);not null;default:'/'" json:"path"` // 逻辑目录,以 / 结尾
	FullPath    string `gorm:"type:varchar(512);not null;index" json:"full_path"`  // Path + Name,ACTIVE 范围内唯一
	Description string `gorm:"type:varchar(1000)" json:"description"`
	Size        int64  `gorm:"type:bigint;not null;default:0" json:"size"`
	ResourceURL string `gorm:"type:varchar(512);not null;index" json:"resource_url"` // ACTIVE 范围内唯一

	AuditInfo

	// GORM 关联,方便预加载
	Assignments []LabelAssignment `gorm:"foreignKey:FileID" json:"-"`
}

// TableName 指定 GORM 使用的表名
func (File) TableName() string {
	return "files"
}

// FullPath/ResourceURL 的唯一性只对 ACTIVE 行生效,软删除后同名路径可以重建,
// 所以不建数据库级唯一索引,由一致性校验在事务内保证
