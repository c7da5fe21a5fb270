package models

import "time"

// DoorToken — короткоживущий числовой код для открытия двери.
// У одного участника одновременно может быть несколько действующих токенов.
type DoorToken struct {
	ID        string     `json:"id"`
	MemberID  string     `json:"member_id"`
	Code      string     `json:"token_code"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Expired сообщает, истёк ли токен к моменту now.
func (t *DoorToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Used сообщает, был ли токен уже использован.
func (t *DoorToken) Used() bool {
	return t.UsedAt != nil
}
