package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/azizikri/coupon-distributor/internal/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EnsureTopics creates the audit topic if it does not exist yet.
func EnsureTopics(ctx context.Context, client *kgo.Client, cfg *config.Config) error {
	adm := kadm.NewClient(client)

	resp, err := adm.CreateTopics(ctx, int32(cfg.TopicPartitions()), cfg.ReplicationFactor(), nil, cfg.AuditTopic)
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", cfg.AuditTopic, err)
	}
	for _, detail := range resp {
		if detail.Err != nil && !strings.Contains(detail.Err.Error(), "already exists") {
			return fmt.Errorf("failed to create topic %s: %w", detail.Topic, detail.Err)
		}
	}
	return nil
}
