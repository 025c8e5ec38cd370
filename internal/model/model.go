// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate migrates the table behind key
// AutoMigrate 按 key 迁移对应数据表
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(&Note{})
	case "User":
		return db.AutoMigrate(&User{})
	case "Post":
		return db.AutoMigrate(&Post{})
	}
	return nil
}
