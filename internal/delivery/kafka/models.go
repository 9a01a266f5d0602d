package kafka

import "time"

const (
	ActionCouponClaimed = "coupon.claimed"
	ActionBatchImported = "batch.imported"
)

// AuditEvent is the wire record answering "who took what, when".
type AuditEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Action        string    `json:"action"`
	UserID        int64     `json:"user_id"`
	CouponID      int64     `json:"coupon_id,omitempty"`
	CouponCode    string    `json:"coupon_code,omitempty"`
	CouponType    int       `json:"coupon_type,omitempty"`
	Total         int       `json:"total,omitempty"`
	Success       int       `json:"success,omitempty"`
	Duplicates    int       `json:"duplicates,omitempty"`
	At            time.Time `json:"at"`
}
