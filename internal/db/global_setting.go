package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GlobalSetting 存储全站开关，每个 Code 仅一行，Value 为 YES / NO。
type GlobalSetting struct {
	gorm.Model
	Code  string `gorm:"size:64;uniqueIndex;not null"`
	Name  string `gorm:"size:255;not null"`
	Value string `gorm:"size:8;not null"`
}

// TableName 自定义表名以保持命名一致。
func (GlobalSetting) TableName() string {
	return "global_settings"
}

const (
	// SettingMultiuserMode 是否允许非管理员发布文章。
	SettingMultiuserMode = "MULTIUSER_MODE"
	// SettingPostPremoderation 新文章是否需要先审核。
	SettingPostPremoderation = "POST_PREMODERATION"
	// SettingStatisticsIsPublic 全站统计是否对未登录访客开放。
	SettingStatisticsIsPublic = "STATISTICS_IS_PUBLIC"

	SettingYes = "YES"
	SettingNo  = "NO"
)

var defaultSettings = []GlobalSetting{
	{Code: SettingMultiuserMode, Name: "Multiuser mode", Value: SettingYes},
	{Code: SettingPostPremoderation, Name: "Post premoderation", Value: SettingYes},
	{Code: SettingStatisticsIsPublic, Name: "Statistics is public", Value: SettingYes},
}

// EnsureDefaultSettings 为缺失的开关写入默认值，已存在的行保持不变。
func EnsureDefaultSettings(gdb *gorm.DB) error {
	for _, setting := range defaultSettings {
		row := setting
		if err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed setting %s: %w", setting.Code, err)
		}
	}
	return nil
}
