package domain

import "time"

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxProcessed OutboxStatus = "processed"
)

type OutboxEventType string

const (
	EventOrderPlaced OutboxEventType = "order.placed"
)

// OutboxEvent — событие, ожидающее публикации в брокер.
type OutboxEvent struct {
	ID          string          `json:"id"` // uuid
	Type        OutboxEventType `json:"type"`
	AggregateID string          `json:"aggregateId"`
	Payload     []byte          `json:"payload"`
	Status      OutboxStatus    `json:"status"`
	Attempts    int             `json:"attempts"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

func NewOutboxEvent(id string, eventType OutboxEventType, aggregateID string, payload []byte, at time.Time) OutboxEvent {
	return OutboxEvent{
		ID:          id,
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      OutboxPending,
		CreatedAt:   at,
	}
}
