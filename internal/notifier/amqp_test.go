package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"

	"github.com/amishk599/skillpulse/internal/model"
)

type recordingPublisher struct {
	exchanges []string
	keys      []string
	msgs      []amqp.Publishing
	err       error
}

func (p *recordingPublisher) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.exchanges = append(p.exchanges, exchange)
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestAMQPNotifier_Publishes(t *testing.T) {
	rec := &recordingPublisher{}
	n := newAMQPNotifier(rec, "events", discardLogger())

	e := sampleEvent()
	if err := n.Notify(context.Background(), e); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	if rec.exchanges[0] != "events" || rec.keys[0] != "summary.ai" {
		t.Errorf("published to %s/%s", rec.exchanges[0], rec.keys[0])
	}
	msg := rec.msgs[0]
	if msg.ContentType != "application/json" || msg.MessageId != e.ID {
		t.Errorf("unexpected message headers: %+v", msg)
	}

	var got model.GenerationEvent
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if got.CandidateID != 12 || got.Context != model.ContextCareerGrowth {
		t.Errorf("body = %+v", got)
	}
}

func TestAMQPNotifier_PublishError(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("channel closed")}
	n := newAMQPNotifier(rec, "events", discardLogger())

	if err := n.Notify(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestAMQPNotifier_CancelledContext(t *testing.T) {
	rec := &recordingPublisher{}
	n := newAMQPNotifier(rec, "events", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, sampleEvent()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(rec.msgs) != 0 {
		t.Error("nothing should be published after cancellation")
	}
}

func TestAMQPNotifier_CloseWithoutConnection(t *testing.T) {
	n := newAMQPNotifier(&recordingPublisher{}, "events", discardLogger())
	if err := n.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
