package model

import "time"

// Match stores the unordered pair in canonical order: UserAID < UserBID.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
