package usecase

import (
	"context"

	"github.com/azizikri/coupon-distributor/internal/domain"
)

// AuditPublisher records who took what. Publishing is best-effort: the claim
// or import has already committed by the time an event is emitted, and a
// failed publish never rolls it back.
type AuditPublisher interface {
	ClaimRecorded(ctx context.Context, userID int64, coupon domain.Coupon)
	BatchImported(ctx context.Context, userID int64, typeID int, summary domain.ImportSummary)
}
