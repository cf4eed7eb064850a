// Package broker defines the interface for message brokers and provides
// in-memory and Redpanda implementations.
package broker

import "context"

// Broker abstracts message publishing and consumption. Local mode uses
// the in-memory implementation; deployments with REDPANDA_BROKERS set use
// the Kafka-compatible one.
type Broker interface {
	// Publish sends a message to a topic with an optional key.
	// For the in-memory broker, key is carried but not used for routing.
	// For Redpanda/Kafka, key selects the partition, which keeps one
	// job's trend events ordered.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic.
	// groupID is used for consumer group coordination in Kafka and is
	// ignored by the in-memory broker.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
