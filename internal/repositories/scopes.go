package repositories

import (
	"github.com/3Eeeecho/go-filelabel/internal/models"
	"gorm.io/gorm"
)

// ActiveScope 只保留指定表的 ACTIVE 行,软删除的行对业务查询不可见
func ActiveScope(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".object_state = ?", models.ObjectStateActive)
	}
}
