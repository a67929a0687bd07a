package models

import "time"

// Subscription — подписка на рассылку, email уникален
type Subscription struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	UserID    *int64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
