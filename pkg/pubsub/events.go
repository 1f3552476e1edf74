package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/clubscouncil/portal-backend/pkg/enums"
)

const defaultPublishTimeout = 10 * time.Second

// Envelope wraps every domain event published to the shared topic.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  enums.EventType `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ClubCIDRenamedEvent signals a club id change so downstream services can
// re-key their own records.
type ClubCIDRenamedEvent struct {
	OldCID string `json:"old_cid"`
	NewCID string `json:"new_cid"`
}

// MemberRolePendingEvent signals a role submission awaiting council approval.
type MemberRolePendingEvent struct {
	CID      string `json:"cid"`
	UID      string `json:"uid"`
	RoleName string `json:"role_name"`
}

// ClubDeletedEvent signals a club soft-deletion.
type ClubDeletedEvent struct {
	CID string `json:"cid"`
}

type messagePublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// Emitter publishes enveloped domain events to the configured topic.
type Emitter struct {
	pub     messagePublisher
	timeout time.Duration
	now     func() time.Time
}

// NewEmitter wraps the client's domain publisher.
func NewEmitter(client *Client) (*Emitter, error) {
	pub := client.DomainPublisher()
	if pub == nil {
		return nil, errors.New("domain topic is not configured")
	}
	return &Emitter{
		pub:     &gcpPublisher{pub: pub},
		timeout: defaultPublishTimeout,
		now:     time.Now,
	}, nil
}

// Emit marshals payload into an envelope and publishes it, blocking until the
// server acknowledges or the timeout elapses.
func (e *Emitter) Emit(ctx context.Context, eventType enums.EventType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	envelope := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: e.now().UTC(),
		Payload:    raw,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":    envelope.EventID,
			"event_type":  string(eventType),
			"occurred_at": envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	result := e.pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for %s", eventType)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// DecodeEnvelope parses a received message body.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.EventType == "" {
		return Envelope{}, errors.New("envelope missing event_type")
	}
	return envelope, nil
}

type gcpPublisher struct {
	pub *pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	if p == nil || p.pub == nil {
		return nil
	}
	return &gcpPublishResult{result: p.pub.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	result *pubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.result == nil {
		return "", errors.New("publish result is nil")
	}
	return r.result.Get(ctx)
}
