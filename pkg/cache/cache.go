package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 表示键不存在或已过期
var ErrMiss = errors.New("cache miss")

// Cache 定义通用缓存接口，当前用于登录会话 (token -> 用户信息)
type Cache interface {
	// Set 设置缓存
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get 获取缓存，并将结果 Unmarshal 到 target 中；未命中返回 ErrMiss
	Get(ctx context.Context, key string, target interface{}) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
}
