package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
)

// SettlementSettledEvent 結帳完成事件，桌號當作分區鍵，同一張桌子的事件保序
type SettlementSettledEvent struct {
	EventID   string          `json:"event_id"`
	TableID   int             `json:"table_id"`
	Total     decimal.Decimal `json:"total"`
	Tip       decimal.Decimal `json:"tip"`
	Payments  []model.Payment `json:"payments"`
	Message   string          `json:"message,omitempty"`
	SettledAt time.Time       `json:"settled_at"`
}

type ISettlementEventPublisher interface {
	PublishSettled(ctx context.Context, event SettlementSettledEvent) error
}

type SettlementEventProducer struct {
	writer *kafka.Writer
}

func NewSettlementEventProducer(brokers []string, topic string) *SettlementEventProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &SettlementEventProducer{writer: writer}
}

func NewSettledEvent(tableID int, total, tip decimal.Decimal, payments []model.Payment, message string) SettlementSettledEvent {
	return SettlementSettledEvent{
		EventID:   uuid.NewString(),
		TableID:   tableID,
		Total:     total,
		Tip:       tip,
		Payments:  payments,
		Message:   message,
		SettledAt: time.Now().UTC(),
	}
}

func (p *SettlementEventProducer) PublishSettled(ctx context.Context, event SettlementSettledEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(event.TableID)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish settlement event: %w", err)
	}
	return nil
}

func (p *SettlementEventProducer) Close() error {
	return p.writer.Close()
}
