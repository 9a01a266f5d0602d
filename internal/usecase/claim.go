package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/repository"
)

// ClaimService is the claim coordinator: the single entry point that hands a
// previously-unclaimed coupon to an eligible identity exactly once.
type ClaimService struct {
	store repository.Store
	audit AuditPublisher
}

func NewClaimService(store repository.Store, audit AuditPublisher) *ClaimService {
	return &ClaimService{store: store, audit: audit}
}

// Claim atomically assigns one unclaimed coupon of the given type to the
// identity. Exhaustion propagates as domain.ErrStockExhausted, a business
// outcome the transport layer must not report as a server error. There is no
// retry on exhaustion; the loser of a race simply gets the exhausted result.
func (s *ClaimService) Claim(ctx context.Context, ident domain.Identity, typeID int) (domain.ClaimedCoupon, error) {
	if !ident.Capabilities.Has(domain.CapClaim) {
		return domain.ClaimedCoupon{}, domain.ErrForbidden
	}
	if !domain.ValidCouponType(typeID) {
		return domain.ClaimedCoupon{}, domain.ErrTypeNotFound
	}

	coupon, err := s.store.TryClaimOne(ctx, typeID, ident.UserID)
	if err != nil {
		return domain.ClaimedCoupon{}, err
	}

	s.audit.ClaimRecorded(ctx, ident.UserID, coupon)

	claimedAt := time.Now()
	if coupon.ClaimedAt != nil {
		claimedAt = *coupon.ClaimedAt
	}
	return domain.ClaimedCoupon{
		ID:        coupon.ID,
		Code:      coupon.Code,
		Type:      coupon.Type,
		TypeName:  domain.TypeName(coupon.Type),
		ClaimedAt: claimedAt,
	}, nil
}

// Stock reports the unclaimed count for a type. Advisory only: the value can
// be stale the moment it is read and never gates a claim.
func (s *ClaimService) Stock(ctx context.Context, typeID int) (int64, error) {
	if !domain.ValidCouponType(typeID) {
		return 0, domain.ErrTypeNotFound
	}
	return s.store.CountUnclaimed(ctx, typeID)
}

// MyCoupons pages through the coupons claimed by the calling identity.
func (s *ClaimService) MyCoupons(ctx context.Context, ident domain.Identity, typeID *int, offset, limit int) ([]domain.Coupon, int64, error) {
	coupons, err := s.store.ListCouponsByTaker(ctx, ident.UserID, typeID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list my coupons: %w", err)
	}
	total, err := s.store.CountCouponsByTaker(ctx, ident.UserID, typeID)
	if err != nil {
		return nil, 0, fmt.Errorf("count my coupons: %w", err)
	}
	return coupons, total, nil
}

// MyCouponDetail returns one claimed coupon, refusing to show anyone else's.
func (s *ClaimService) MyCouponDetail(ctx context.Context, ident domain.Identity, id int64) (domain.Coupon, error) {
	coupon, err := s.store.GetCouponByID(ctx, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	if !coupon.Claimed || coupon.ClaimedBy != ident.UserID {
		return domain.Coupon{}, domain.ErrForbidden
	}
	return coupon, nil
}
