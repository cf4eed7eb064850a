package broker

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryBrokerPublishSubscribe(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx := context.Background()

	msgChan, err := b.Subscribe(ctx, "trendwatch.trends", "test-group")
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}

	if err := b.Publish(ctx, "trendwatch.trends", "acme/deploy", []byte("payload")); err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}

	select {
	case msg := <-msgChan:
		if msg.Topic != "trendwatch.trends" {
			t.Errorf("Topic = %q, want trendwatch.trends", msg.Topic)
		}
		if msg.Key != "acme/deploy" {
			t.Errorf("Key = %q, want acme/deploy", msg.Key)
		}
		if string(msg.Value) != "payload" {
			t.Errorf("Value = %q, want payload", msg.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestInMemoryBrokerMultipleSubscribers(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx := context.Background()

	sub1, err := b.Subscribe(ctx, "topic", "group1")
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	sub2, err := b.Subscribe(ctx, "topic", "group2")
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}

	if err := b.Publish(ctx, "topic", "k", []byte("v")); err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}

	for i, sub := range []<-chan Message{sub1, sub2} {
		select {
		case msg := <-sub:
			if string(msg.Value) != "v" {
				t.Errorf("subscriber %d got %q, want v", i+1, msg.Value)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timeout waiting for message", i+1)
		}
	}
}

func TestInMemoryBrokerOffsets(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	sub, _ := b.Subscribe(ctx, "topic", "g")

	for i := 0; i < 3; i++ {
		if err := b.Publish(ctx, "topic", "k", []byte("v")); err != nil {
			t.Fatalf("Publish() unexpected error: %v", err)
		}
	}

	for want := int64(0); want < 3; want++ {
		msg := <-sub
		if msg.Offset != want {
			t.Errorf("Offset = %d, want %d", msg.Offset, want)
		}
	}
}

func TestInMemoryBrokerClosed(t *testing.T) {
	b := NewInMemoryBroker()

	sub, err := b.Subscribe(context.Background(), "topic", "g")
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	if err := b.Publish(context.Background(), "topic", "k", []byte("v")); err == nil {
		t.Error("Publish() on closed broker expected error, got nil")
	}
	if _, err := b.Subscribe(context.Background(), "topic", "g"); err == nil {
		t.Error("Subscribe() on closed broker expected error, got nil")
	}

	// Subscriber channel should be closed.
	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected closed subscriber channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}
