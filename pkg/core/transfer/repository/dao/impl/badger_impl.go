package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/dgraph-io/badger/v4"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/transfer/repository/dao"
)

var _ dao.Channel = (*BadgerChannel)(nil)

// BadgerChannel 嵌入式 KV 中转通道，过期交给 badger 的 TTL 处理
type BadgerChannel struct {
	db *badger.DB
}

// OpenBadger dir 为空时使用内存模式
func OpenBadger(dir string) (*BadgerChannel, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerChannel{db: db}, nil
}

func (b *BadgerChannel) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreInternal, err)
	}
	return nil
}

func (b *BadgerChannel) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, errs.ErrEntryNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreInternal, err)
	}
	return out, nil
}

func (b *BadgerChannel) Close() error {
	return b.db.Close()
}

// badgerLogger 把 badger 日志转到 hlog
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	hlog.Errorf("[badger] "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	hlog.Warnf("[badger] "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	hlog.Debugf("[badger] "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	hlog.Tracef("[badger] "+format, args...)
}
