package queue

import "go.uber.org/zap"

// MessageQueue is the transport for engine events. Resolution merges,
// duplicate suspicions and detected anomalies are published as JSON
// payloads on named subjects.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// NoopQueue discards published events. Used when no broker is configured,
// so the engine can run without NATS or RabbitMQ.
type NoopQueue struct {
	log *zap.Logger
}

func NewNoopQueue(log *zap.Logger) MessageQueue {
	log.Warn("No message broker configured, events will be discarded")
	return &NoopQueue{log: log}
}

func (q *NoopQueue) Publish(subject string, data []byte) error {
	q.log.Debug("Discarding event", zap.String("subject", subject))
	return nil
}

func (q *NoopQueue) Subscribe(subject string, handler func(data []byte) error) error {
	return nil
}

func (q *NoopQueue) Close() error {
	return nil
}
