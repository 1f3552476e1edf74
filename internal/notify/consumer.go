package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/clubscouncil/portal-backend/pkg/config"
	"github.com/clubscouncil/portal-backend/pkg/enums"
	"github.com/clubscouncil/portal-backend/pkg/logger"
	"github.com/clubscouncil/portal-backend/pkg/pubsub"
	redisclient "github.com/clubscouncil/portal-backend/pkg/redis"
)

const (
	consumerScope  = "notify-worker"
	processedTTL   = 24 * time.Hour
	processedValue = "1"
)

// Consumer watches domain events and turns them into council mail.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	mailer       Mailer
	idempotency  redisclient.IdempotencyStore
	cfg          config.NotifyConfig
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(subscription *gcppubsub.Subscriber, mailer Mailer, idempotency redisclient.IdempotencyStore, cfg config.NotifyConfig, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("notify subscription required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		mailer:       mailer,
		idempotency:  idempotency,
		cfg:          cfg,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		result := c.process(ctx, msg.Data, msg.ID)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, data []byte, messageID string) processResult {
	envelope, err := pubsub.DecodeEnvelope(data)
	if err != nil {
		c.logg.Error(ctx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType.String(),
	})

	if _, err := uuid.Parse(envelope.EventID); err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	key := c.idempotency.IdempotencyKey(consumerScope, envelope.EventID)
	fresh, err := c.idempotency.SetNX(ctx, key, processedValue, processedTTL)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if !fresh {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, envelope, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Del(ctx, key)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, envelope pubsub.Envelope, logCtx context.Context) error {
	switch envelope.EventType {
	case enums.EventMemberRolePending:
		return c.mailPendingRole(ctx, envelope.Payload, logCtx)
	case enums.EventClubDeleted:
		return c.mailClubDeleted(ctx, envelope.Payload, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

func (c *Consumer) mailPendingRole(ctx context.Context, payload json.RawMessage, logCtx context.Context) error {
	var event pubsub.MemberRolePendingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse pending role payload: %w", err)
	}
	if event.CID == "" || event.UID == "" {
		return fmt.Errorf("pending role payload missing cid or uid")
	}

	mail := Mail{
		From:    c.cfg.FromAddress,
		To:      c.cfg.CouncilAddress,
		Subject: fmt.Sprintf("Role approval pending for %s", event.CID),
		Body: fmt.Sprintf("%s submitted the role %q in club %s. Review it in the portal.",
			event.UID, event.RoleName, event.CID),
	}
	if err := c.mailer.Send(ctx, mail); err != nil {
		return err
	}
	c.logg.Info(logCtx, "council notified of pending role")
	return nil
}

func (c *Consumer) mailClubDeleted(ctx context.Context, payload json.RawMessage, logCtx context.Context) error {
	var event pubsub.ClubDeletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse club deleted payload: %w", err)
	}
	if event.CID == "" {
		return fmt.Errorf("club deleted payload missing cid")
	}

	mail := Mail{
		From:    c.cfg.FromAddress,
		To:      c.cfg.CouncilAddress,
		Subject: fmt.Sprintf("Club %s deleted", event.CID),
		Body:    fmt.Sprintf("Club %s was soft-deleted. Its members stay hidden until a restart.", event.CID),
	}
	if err := c.mailer.Send(ctx, mail); err != nil {
		return err
	}
	c.logg.Info(logCtx, "council notified of club deletion")
	return nil
}
