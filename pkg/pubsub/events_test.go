package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/clubscouncil/portal-backend/pkg/enums"
)

type stubPublisher struct {
	messages []*pubsub.Message
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	return &stubResult{err: s.err}
}

type stubResult struct {
	err error
}

func (s *stubResult) Get(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "msg-1", nil
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	pub := &stubPublisher{}
	fixed := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	emitter := &Emitter{pub: pub, timeout: time.Second, now: func() time.Time { return fixed }}

	err := emitter.Emit(context.Background(), enums.EventClubCIDRenamed, ClubCIDRenamedEvent{
		OldCID: "robotics",
		NewCID: "robotics-soc",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.messages))
	}

	msg := pub.messages[0]
	if msg.Attributes["event_type"] != "club.cid.renamed" {
		t.Fatalf("unexpected event_type attribute %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["event_id"] == "" {
		t.Fatal("expected event_id attribute")
	}

	envelope, err := DecodeEnvelope(msg.Data)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.EventType != enums.EventClubCIDRenamed {
		t.Fatalf("unexpected envelope type %s", envelope.EventType)
	}
	if !envelope.OccurredAt.Equal(fixed) {
		t.Fatalf("unexpected occurred_at %v", envelope.OccurredAt)
	}

	var payload ClubCIDRenamedEvent
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.OldCID != "robotics" || payload.NewCID != "robotics-soc" {
		t.Fatalf("payload did not round-trip: %+v", payload)
	}
}

func TestEmitPropagatesPublishError(t *testing.T) {
	pub := &stubPublisher{err: errors.New("deadline exceeded")}
	emitter := &Emitter{pub: pub, timeout: time.Second, now: time.Now}

	err := emitter.Emit(context.Background(), enums.EventClubDeleted, ClubDeletedEvent{CID: "debate"})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("not-json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeEnvelope([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected missing event_type error")
	}
}
