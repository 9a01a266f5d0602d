package domain

import (
	"errors"
	"time"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("missing required capability")
	ErrBadCredentials   = errors.New("wrong account or password")
	ErrTypeNotFound     = errors.New("unknown coupon type")
	ErrStockExhausted   = errors.New("no unclaimed coupon of this type")
	ErrDuplicateCoupon  = errors.New("coupon code already exists")
	ErrAlreadyClaimed   = errors.New("coupon already claimed")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrNotFound         = errors.New("record not found")
	ErrEmptyImport      = errors.New("no coupon codes in import")
)

// Identity is a resolved credential: who is calling and what they may do.
// Every operation below the transport layer receives one explicitly; nothing
// reads ambient session state.
type Identity struct {
	UserID       int64
	Capabilities Capability
}

type User struct {
	ID           int64
	Name         string
	Account      string
	PasswordHash string
	Capabilities Capability
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Coupon is a single-use voucher. Claimed, ClaimedBy and ClaimedAt are set
// together in one atomic step and never revert.
type Coupon struct {
	ID        int64
	Code      string
	Type      int
	Creator   int64
	Claimed   bool
	ClaimedBy int64
	ClaimedAt *time.Time
	CreatedAt time.Time
}

// ClaimedCoupon is what a successful claim hands back to the caller.
type ClaimedCoupon struct {
	ID        int64
	Code      string
	Type      int
	TypeName  string
	ClaimedAt time.Time
}

// CouponFilter narrows admin listings. Nil fields match everything.
type CouponFilter struct {
	Type    *int
	Claimed *bool
}

type ImportSummary struct {
	Total      int      `json:"total"`
	Success    int      `json:"success"`
	Failed     int      `json:"failed"`
	Duplicates []string `json:"duplicates"`
}
