package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/repository"
)

// ProvisionService owns inventory intake: bulk import and admin CRUD over
// coupons. Every operation requires the inventory capability.
type ProvisionService struct {
	store repository.Store
	audit AuditPublisher
}

func NewProvisionService(store repository.Store, audit AuditPublisher) *ProvisionService {
	return &ProvisionService{store: store, audit: audit}
}

// parseCodes splits raw import text on newlines and commas, trimming
// whitespace and dropping empties. Input order is preserved.
func parseCodes(raw string) []string {
	var codes []string
	for _, line := range strings.Split(raw, "\n") {
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				codes = append(codes, part)
			}
		}
	}
	return codes
}

// ImportBatch ingests candidate codes in input order. The first occurrence of
// a code wins; later in-batch repeats and collisions with existing inventory
// (any type) are recorded verbatim in Duplicates and never abort the batch.
func (s *ProvisionService) ImportBatch(ctx context.Context, ident domain.Identity, raw string, typeID int) (domain.ImportSummary, error) {
	if !ident.Capabilities.Has(domain.CapInventory) {
		return domain.ImportSummary{}, domain.ErrForbidden
	}
	if !domain.ValidCouponType(typeID) {
		return domain.ImportSummary{}, domain.ErrTypeNotFound
	}

	codes := parseCodes(raw)
	if len(codes) == 0 {
		return domain.ImportSummary{}, domain.ErrEmptyImport
	}

	summary := domain.ImportSummary{
		Total:      len(codes),
		Duplicates: []string{},
	}
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			summary.Duplicates = append(summary.Duplicates, code)
			continue
		}
		seen[code] = true

		_, err := s.store.InsertCouponIfAbsent(ctx, code, typeID, ident.UserID)
		switch {
		case err == nil:
			summary.Success++
		case errors.Is(err, domain.ErrDuplicateCoupon):
			summary.Duplicates = append(summary.Duplicates, code)
		default:
			return domain.ImportSummary{}, err
		}
	}
	summary.Failed = summary.Total - summary.Success

	s.audit.BatchImported(ctx, ident.UserID, typeID, summary)
	return summary, nil
}

// Add inserts a single coupon; a code collision is a conflict, not a skip.
func (s *ProvisionService) Add(ctx context.Context, ident domain.Identity, code string, typeID int) (domain.Coupon, error) {
	if !ident.Capabilities.Has(domain.CapInventory) {
		return domain.Coupon{}, domain.ErrForbidden
	}
	if !domain.ValidCouponType(typeID) {
		return domain.Coupon{}, domain.ErrTypeNotFound
	}
	return s.store.InsertCouponIfAbsent(ctx, code, typeID, ident.UserID)
}

// Update edits an unclaimed coupon's code and/or type.
func (s *ProvisionService) Update(ctx context.Context, ident domain.Identity, id int64, code *string, typeID *int) error {
	if !ident.Capabilities.Has(domain.CapInventory) {
		return domain.ErrForbidden
	}
	if typeID != nil && !domain.ValidCouponType(*typeID) {
		return domain.ErrTypeNotFound
	}
	return s.store.UpdateUnclaimedCoupon(ctx, id, repository.CouponUpdate{Code: code, Type: typeID})
}

// Delete removes an unclaimed coupon; a concurrently-claimed one conflicts.
func (s *ProvisionService) Delete(ctx context.Context, ident domain.Identity, id int64) error {
	if !ident.Capabilities.Has(domain.CapInventory) {
		return domain.ErrForbidden
	}
	return s.store.DeleteUnclaimedCoupon(ctx, id)
}

// List pages the inventory for the admin surface.
func (s *ProvisionService) List(ctx context.Context, ident domain.Identity, filter domain.CouponFilter, offset, limit int) ([]domain.Coupon, int64, error) {
	if !ident.Capabilities.Has(domain.CapInventory) {
		return nil, 0, domain.ErrForbidden
	}
	coupons, err := s.store.ListCoupons(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountCoupons(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// Detail returns one coupon for the admin surface.
func (s *ProvisionService) Detail(ctx context.Context, ident domain.Identity, id int64) (domain.Coupon, error) {
	if !ident.Capabilities.Has(domain.CapInventory) {
		return domain.Coupon{}, domain.ErrForbidden
	}
	return s.store.GetCouponByID(ctx, id)
}
