package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/transfer/model"
	"eventshare-web/pkg/core/transfer/repository/dao"
)

var _ dao.Channel = (*GormChannel)(nil)

// GormChannel 基于 SQL 表的中转通道（mysql / sqlite）
type GormChannel struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormChannel(db *gorm.DB) (*GormChannel, error) {
	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("%w: migrate transfer table", errs.WrapGormError(err))
	}
	return &GormChannel{db: db, now: time.Now}, nil
}

// Put 同一 key 重复写入时覆盖内容与过期时间
func (r *GormChannel) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := model.Entry{
		EntryKey:  key,
		Payload:   value,
		ExpiresAt: r.now().Add(ttl),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%w: transfer put failed", errs.WrapGormError(err))
	}
	return nil
}

func (r *GormChannel) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.Entry
	err := r.db.WithContext(ctx).
		Select("entry_key", "payload", "expires_at").
		Where("entry_key = ? AND expires_at > ?", key, r.now()).
		First(&entry).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.ErrEntryNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: transfer get failed", errs.WrapGormError(err))
	default:
		return entry.Payload, nil
	}
}

// Sweep 删除已过期记录，返回删除条数
func (r *GormChannel) Sweep(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&model.Entry{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: transfer sweep failed", errs.WrapGormError(result.Error))
	}
	return result.RowsAffected, nil
}

func (r *GormChannel) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
