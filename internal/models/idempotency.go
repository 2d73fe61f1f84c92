package models

import "time"

// IdempotencyKey records that an order or reservation was already created
// for a call, keyed by (call SID, kind). Telephony providers retry webhooks,
// and a retry that replays the confirmation step must find this row instead
// of inserting a second order.
type IdempotencyKey struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CallSID   string    `json:"call_sid" gorm:"column:call_sid;uniqueIndex:ux_call_kind,priority:1"`
	Kind      string    `json:"kind" gorm:"uniqueIndex:ux_call_kind,priority:2"`
	StepCount int       `json:"step_count"`
	RefID     uint      `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// Idempotency kinds
const (
	IdempotencyKindOrder       = "order"
	IdempotencyKindReservation = "reservation"
)
