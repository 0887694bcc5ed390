package model

import (
	"time"

	"gorm.io/gorm"
)

// Entry 中转通道的一条记录
type Entry struct {
	EntryKey  string    `gorm:"primaryKey;type:varchar(128)"`
	Payload   []byte    `gorm:"type:blob;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (Entry) TableName() string {
	return "page_transfer_entries"
}

func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		db = db.Set("gorm:table_options", "COMMENT='页面中转数据'")
	}
	return db.AutoMigrate(&Entry{})
}
