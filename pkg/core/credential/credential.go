package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 从凭证中读取的展示用信息。签名不做校验，后端才是权威。
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
}

// Parse 解析 JWT 负载；非 JWT 的不透明令牌返回 false
func Parse(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, false
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out, true
}

// Expired 仅当凭证带有 exp 且已过期时返回 true
func Expired(token string, now time.Time) bool {
	claims, ok := Parse(token)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(*claims.ExpiresAt)
}
