package dao

import (
	"context"
	"time"
)

// Channel 页面中转通道。Get 不删除数据，记录到期后视为不存在（errors.ErrEntryNotFound）。
type Channel interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}
