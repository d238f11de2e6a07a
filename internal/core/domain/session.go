package domain

import "time"

// SessionClaim is the minimal identity claim a session reference maps to.
// It never carries the password hash or the full user record.
type SessionClaim struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
