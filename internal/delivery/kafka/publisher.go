package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/azizikri/coupon-distributor/internal/config"
	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/usecase"
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Publisher emits audit events to Kafka. Publishing is asynchronous and
// best-effort: the claim or import has already committed, so a broker hiccup
// is logged and dropped rather than failing the request.
type Publisher struct {
	client *kgo.Client
	topic  string
	log    *zap.Logger
}

func NewPublisher(cfg *config.Config, client *kgo.Client, log *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		topic:  cfg.AuditTopic,
		log:    log,
	}
}

func (p *Publisher) ClaimRecorded(_ context.Context, userID int64, coupon domain.Coupon) {
	p.emit(AuditEvent{
		SchemaVersion: 1,
		EventID:       uuid.New().String(),
		Action:        ActionCouponClaimed,
		UserID:        userID,
		CouponID:      coupon.ID,
		CouponCode:    coupon.Code,
		CouponType:    coupon.Type,
		At:            time.Now(),
	})
}

func (p *Publisher) BatchImported(_ context.Context, userID int64, typeID int, summary domain.ImportSummary) {
	p.emit(AuditEvent{
		SchemaVersion: 1,
		EventID:       uuid.New().String(),
		Action:        ActionBatchImported,
		UserID:        userID,
		CouponType:    typeID,
		Total:         summary.Total,
		Success:       summary.Success,
		Duplicates:    len(summary.Duplicates),
		At:            time.Now(),
	})
}

func (p *Publisher) emit(event AuditEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to encode audit event", zap.Error(err))
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: payload,
	}
	// Detached from the request context: the response may already be on the
	// wire when the broker acks.
	p.client.Produce(context.Background(), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.log.Error("failed to publish audit event",
				zap.String("event_id", event.EventID),
				zap.String("action", event.Action),
				zap.Error(err))
		}
	})
}

var _ usecase.AuditPublisher = (*Publisher)(nil)
