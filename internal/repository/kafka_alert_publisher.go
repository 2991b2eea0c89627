package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	pkgkafka "VolScan/pkg/kafka"
)

const alertEventType = "volatility_alert"

// messageSender is satisfied by pkg/kafka.Producer.
type messageSender interface {
	Send(ctx context.Context, msg pkgkafka.Message) error
}

// KafkaAlertPublisher streams fired alerts keyed by ticker, so one ticker's
// alerts stay ordered on a single partition.
type KafkaAlertPublisher struct {
	producer messageSender
	topic    string
}

var _ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)

func NewKafkaAlertPublisher(producer messageSender, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Name() string { return "kafka" }

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, a models.Alert) error {
	value, err := json.Marshal(alertEvent{Type: alertEventType, Alert: a})
	if err != nil {
		return fmt.Errorf("encode alert %s: %w", a.Ticker, err)
	}
	return p.producer.Send(ctx, pkgkafka.Message{
		Topic: p.topic,
		Key:   []byte(a.Ticker),
		Value: value,
		Headers: map[string]string{
			"event-type": alertEventType,
			"severity":   string(a.Severity),
		},
	})
}

type alertEvent struct {
	Type string `json:"type"`
	models.Alert
}
