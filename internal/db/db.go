package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDatabaseURL 为未配置 DATABASE_URL 时使用的本地 SQLite 文件。
const DefaultDatabaseURL = "sqlite://blog-engine.db"

// Models lists every table owned by the engine, in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Post{},
		&PostVote{},
		&PostComment{},
		&GlobalSetting{},
	}
}

// Open 根据 DATABASE_URL 前缀选择 gorm 方言并建立连接。
// postgres:// 与 mysql:// 走各自驱动，其余（sqlite:// 或裸路径）回退到 SQLite。
func Open(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}

// Init opens the database, migrates the schema and seeds the global settings.
func Init(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	gdb, err := Open(databaseURL, logLevel)
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	if err := EnsureDefaultSettings(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	url := strings.TrimSpace(databaseURL)
	if url == "" {
		url = DefaultDatabaseURL
	}

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(strings.TrimPrefix(url, "mysql://")), nil
	default:
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, errors.New("sqlite database path is empty")
		}
		if !strings.HasPrefix(path, "file:") && path != ":memory:" {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(path), nil
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
