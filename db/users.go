package db

import (
	"context"
	"errors"
	"sync"

	"uav-planner/model"
	"uav-planner/utils"
)

var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrUserExists   = errors.New("用户名已存在")
)

// UserStore 用户存储接口
// 未启用数据库时使用内存实现
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// MemoryUserStore 内存中的用户存储
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]*model.User
	nextID uint
}

// NewMemoryUserStore 创建内存用户存储
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User), nextID: 1}
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return ErrUserExists
	}
	user.ID = s.nextID
	s.nextID++
	u := *user
	s.users[user.Username] = &u
	return nil
}

// SeedAdmin 不存在 admin 用户时用给定密码创建
func SeedAdmin(ctx context.Context, store UserStore, password string) error {
	if password == "" {
		return nil
	}
	if _, err := store.FindByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return store.Create(ctx, &model.User{Username: "admin", Password: hash})
}
