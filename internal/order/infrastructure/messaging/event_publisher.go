// Package messaging 提供订单事件的 Kafka 发布实现
package messaging

import (
	"context"

	"github.com/wyfcoding/strategydesk/internal/order/domain"
	"github.com/wyfcoding/strategydesk/pkg/mq"
)

type kafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建 Kafka 订单事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &kafkaEventPublisher{producer: producer, topic: topic}
}

// PublishOrderEvent 以订单 ID 为 key 发布事件，保证同一订单的事件有序
func (p *kafkaEventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	return p.producer.SendMessage(ctx, p.topic, event.OrderID.String(), event)
}
