package repository

import (
	"context"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CouponUpdate holds the admin-editable coupon fields. Nil means unchanged.
type CouponUpdate struct {
	Code *string
	Type *int
}

// UserUpdate holds the mutable user fields. Nil means unchanged.
type UserUpdate struct {
	Name         *string
	Account      *string
	PasswordHash *string
	Capabilities *domain.Capability
}

// Store is the single durable source of truth. It exclusively owns coupon
// records and is the sole writer of the claimed flag.
type Store interface {
	TryClaimOne(ctx context.Context, typeID int, userID int64) (domain.Coupon, error)
	CountUnclaimed(ctx context.Context, typeID int) (int64, error)
	InsertCouponIfAbsent(ctx context.Context, code string, typeID int, creator int64) (domain.Coupon, error)
	GetCouponByID(ctx context.Context, id int64) (domain.Coupon, error)
	ListCoupons(ctx context.Context, filter domain.CouponFilter, offset, limit int) ([]domain.Coupon, error)
	CountCoupons(ctx context.Context, filter domain.CouponFilter) (int64, error)
	UpdateUnclaimedCoupon(ctx context.Context, id int64, upd CouponUpdate) error
	DeleteUnclaimedCoupon(ctx context.Context, id int64) error
	ListCouponsByTaker(ctx context.Context, taker int64, typeID *int, offset, limit int) ([]domain.Coupon, error)
	CountCouponsByTaker(ctx context.Context, taker int64, typeID *int) (int64, error)

	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByAccount(ctx context.Context, account string) (domain.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, id int64, upd UserUpdate) error
	DeleteUser(ctx context.Context, id int64) error
}

type store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) Store {
	return &store{pool: pool}
}
