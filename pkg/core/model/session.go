package model

import "time"

type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Session is the authentication state of one page. The zero value is an
// unauthenticated session, which is a valid state for read-only browsing.
type Session struct {
	Credential string     `json:"credential,omitempty"`
	Identity   *Identity  `json:"identity,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Credential != ""
}

// Owns reports whether the session identity is the given user.
func (s Session) Owns(user *Identity) bool {
	if user == nil || s.Identity == nil || !s.Authenticated() {
		return false
	}
	return user.ID == s.Identity.ID
}

type (
	RegisterReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Bio      string `json:"bio"`
	}

	LoginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginRes struct {
		Token    string `json:"token"`
		Type     string `json:"type"`
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
)

type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	CreatedAt LocalTime `json:"createdAt"`
}
