package transfer

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/credential"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/transfer/repository/dao"
)

// Store 把 Envelope 写入通道，返回放在跳转 URL 中的交接令牌
type Store struct {
	ch  dao.Channel
	ttl time.Duration
}

func NewStore(ch dao.Channel, ttl time.Duration) *Store {
	return &Store{ch: ch, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, env Envelope) (string, error) {
	token := uuid.NewString()
	for field, value := range env.Encode() {
		if err := s.ch.Put(ctx, keyFor(token, field), value, s.ttl); err != nil {
			return "", err
		}
	}
	return token, nil
}

// Load 读取不删除，刷新目标页面可以再次加载。未知或过期的令牌得到空 Envelope。
func (s *Store) Load(ctx context.Context, token string) (Envelope, error) {
	if token == "" {
		return Envelope{}, nil
	}
	fields := make(map[string][]byte, len(envelopeKeys))
	for _, field := range envelopeKeys {
		value, err := s.ch.Get(ctx, keyFor(token, field))
		if errs.IsNotFound(err) {
			continue
		}
		if err != nil {
			return Envelope{}, err
		}
		fields[field] = value
	}
	return Decode(fields), nil
}

// Ping 读一个不存在的键，用于健康检查
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.ch.Get(ctx, "handoff:ping")
	if err == nil || errs.IsNotFound(err) {
		return nil
	}
	return err
}

// Reconstruct 在目标页面建立新的会话。没有凭证或凭证已过期时为未登录状态。
func Reconstruct(env Envelope, now time.Time) (model.Session, page.Target) {
	target := page.Target{EventID: env.EventID, EventTitle: env.EventTitle}
	if env.Credential == "" || credential.Expired(env.Credential, now) {
		return model.Session{}, target
	}

	session := model.Session{Credential: env.Credential}
	if env.Identity != nil {
		id := *env.Identity
		session.Identity = &id
	}
	if claims, ok := credential.Parse(env.Credential); ok {
		session.ExpiresAt = claims.ExpiresAt
	}
	return session, target
}

// 通道中不直接保存 URL 里的令牌
func keyFor(token, field string) string {
	sum := blake2b.Sum256([]byte(token))
	return "handoff:" + hex.EncodeToString(sum[:16]) + ":" + field
}
