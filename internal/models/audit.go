package models

import "time"

// 对象状态,软删除标记
// 所有业务实体的"删除"都只是 ACTIVE -> REMOVED 的状态变更,不做物理删除
const (
	ObjectStateActive  = "ACTIVE"
	ObjectStateRemoved = "REMOVED"
)

// AuditInfo 审计字段,嵌入到所有业务实体中
// CreatedBy/UpdatedBy 由调用方显式传入操作用户ID,不从全局上下文读取
type AuditInfo struct {
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy   uint64    `gorm:"not null;index" json:"created_by"`
	UpdatedBy   uint64    `gorm:"not null" json:"updated_by"`
	ObjectState string    `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"object_state"`
}

// Touch 更新审计字段,在每次变更时调用
func (a *AuditInfo) Touch(actorID uint64) {
	a.UpdatedBy = actorID
	a.UpdatedAt = time.Now()
}

// InitAudit 初始化新建实体的审计字段
func (a *AuditInfo) InitAudit(actorID uint64) {
	a.CreatedBy = actorID
	a.UpdatedBy = actorID
	a.ObjectState = ObjectStateActive
}
