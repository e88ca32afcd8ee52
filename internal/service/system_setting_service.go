package service

import (
	"context"
	"fmt"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemSettings 描述三个全站开关的当前取值。
type SystemSettings struct {
	MultiuserMode      bool
	PostPremoderation  bool
	StatisticsIsPublic bool
}

// SystemSettingsInput 用于更新全站开关。
type SystemSettingsInput struct {
	MultiuserMode      bool
	PostPremoderation  bool
	StatisticsIsPublic bool
}

// SettingsProvider is the read side of the global switches used by the engine.
type SettingsProvider interface {
	GetSettings(ctx context.Context) (SystemSettings, error)
}

// SystemSettingService 提供全站开关的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

var settingCodes = []string{
	db.SettingMultiuserMode,
	db.SettingPostPremoderation,
	db.SettingStatisticsIsPublic,
}

// GetSettings 读取全站开关，缺失的行按 YES 处理。
func (s *SystemSettingService) GetSettings(ctx context.Context) (SystemSettings, error) {
	result := SystemSettings{MultiuserMode: true, PostPremoderation: true, StatisticsIsPublic: true}

	var records []db.GlobalSetting
	if err := s.db.WithContext(ctx).Where("code IN ?", settingCodes).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load global settings: %w", err)
	}

	for _, record := range records {
		enabled := record.Value != db.SettingNo
		switch record.Code {
		case db.SettingMultiuserMode:
			result.MultiuserMode = enabled
		case db.SettingPostPremoderation:
			result.PostPremoderation = enabled
		case db.SettingStatisticsIsPublic:
			result.StatisticsIsPublic = enabled
		}
	}

	return result, nil
}

// UpdateSettings 保存全站开关，仅管理员可调用。
func (s *SystemSettingService) UpdateSettings(ctx context.Context, viewer Viewer, input SystemSettingsInput) (SystemSettings, error) {
	if viewer.Anonymous() {
		return SystemSettings{}, ErrNotAuthorized
	}
	if !viewer.Moderator {
		return SystemSettings{}, ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingMultiuserMode, input.MultiuserMode); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingPostPremoderation, input.PostPremoderation); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingStatisticsIsPublic, input.StatisticsIsPublic)
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update global settings: %w", err)
	}

	return SystemSettings(input), nil
}

func upsertSetting(tx *gorm.DB, code string, enabled bool) error {
	value := db.SettingNo
	if enabled {
		value = db.SettingYes
	}

	setting := db.GlobalSetting{Code: code, Name: code, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", code, err)
	}
	return nil
}
