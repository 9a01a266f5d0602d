package kafka

import (
	"context"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/usecase"
)

// NoopPublisher stands in when the audit stream is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() usecase.AuditPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) ClaimRecorded(context.Context, int64, domain.Coupon) {}

func (*NoopPublisher) BatchImported(context.Context, int64, int, domain.ImportSummary) {}
