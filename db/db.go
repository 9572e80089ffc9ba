package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"uav-planner/config"
	"uav-planner/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open 连接 PostgreSQL 并自动迁移用户表
// 带重试 (Docker 启动时数据库可能还没准备好)
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	const maxRetries = 30
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err == nil {
			break
		}
		log.Warn("等待数据库就绪", "attempt", i+1, "max", maxRetries, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 自动迁移模式 (自动创建表结构)
	if err := db.WithContext(ctx).AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Info("数据库连接并初始化成功")
	return db, nil
}

// GormUserStore 基于 gorm 的用户存储
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore 创建用户存储
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) Create(ctx context.Context, user *model.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("查询用户失败: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}
