package model

import "time"

// Session maps an opaque identifier to an authenticated user
type Session struct {
	ID        string    `db:"sid"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expire"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
