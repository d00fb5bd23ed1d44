package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"guardian-monitor/internal/engine"
	"guardian-monitor/internal/logging"
	"guardian-monitor/internal/utils"
)

// Publisher forwards session lifecycle events (alert created/escalated/
// updated, emergency activated/cleared) to a Kafka topic for downstream
// consumers. It is the producer side of the alerting pipeline; delivering
// notifications to humans is somebody else's job.
type Publisher struct {
	writer *kafka.Writer
	logger *logging.Logger
}

func NewPublisher(broker, topic string, logger *logging.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: w, logger: logger}
}

// Run consumes the session's event stream until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context, events <-chan engine.Event) {
	p.logger.Infof("Kafka publisher started on topic %s", p.writer.Topic)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.publish(ctx, ev)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, ev engine.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Errorf("Marshal event failed: %v", err)
		return
	}

	key := ev.Type
	if ev.Alert != nil {
		key = strconv.FormatInt(ev.Alert.ID, 10)
	}

	err = utils.Retry(ctx, p.logger, 3, time.Second, func() error {
		return p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(key),
			Value: payload,
		})
	})
	if err != nil {
		p.logger.Errorf("Publish %s failed: %v", ev.Type, err)
		return
	}
	p.logger.Debugf("Published %s event", ev.Type)
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Errorf("Kafka writer close failed: %v", err)
	}
}
