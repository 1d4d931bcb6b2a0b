package repository

import (
	"context"
	"database/sql"
	"time"

	"PairWatch/internal/domain/models"
	"PairWatch/internal/domain/repository"
	pkgkafka "PairWatch/pkg/kafka"
)

// KafkaAlertPublisher implements AlertPublisher for Kafka. Alerts are keyed
// by pair so one pair stays ordered within a partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Pair), a)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// ErrorLogPublisher adapts the Kafka producer to the log collector's
// Publisher interface so aggregated per-cycle errors flush to a topic.
type ErrorLogPublisher struct {
	producer *pkgkafka.Producer
}

func NewErrorLogPublisher(producer *pkgkafka.Producer) *ErrorLogPublisher {
	return &ErrorLogPublisher{producer: producer}
}

func (p *ErrorLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ClickHouseAlertStorage implements AlertStorage for ClickHouse.
type ClickHouseAlertStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseAlertStorage creates ClickHouse alert storage.
func NewClickHouseAlertStorage(db *sql.DB, table string) repository.AlertStorage {
	return &ClickHouseAlertStorage{db: db, table: table}
}

func (s *ClickHouseAlertStorage) Store(ctx context.Context, a *models.Alert) error {
	q := "INSERT INTO " + s.table +
		" (ts, pair, target_symbol, reference_symbol, residual_pct, target_dev_pct, reference_dev_pct, correlation, threshold_pct, message)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, q,
		a.Timestamp,
		a.Pair,
		a.TargetSymbol,
		a.ReferenceSymbol,
		a.Residual,
		a.TargetDevPct,
		a.ReferenceDevPct,
		a.Correlation,
		a.Threshold,
		a.Message,
	)
	return err
}

func (s *ClickHouseAlertStorage) Query(ctx context.Context, from, to time.Time, limit int) ([]*models.Alert, error) {
	q := "SELECT ts, pair, target_symbol, reference_symbol, residual_pct, target_dev_pct, reference_dev_pct, correlation, threshold_pct, message FROM " +
		s.table + " WHERE ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.Timestamp, &a.Pair, &a.TargetSymbol, &a.ReferenceSymbol,
			&a.Residual, &a.TargetDevPct, &a.ReferenceDevPct, &a.Correlation,
			&a.Threshold, &a.Message); err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

func (s *ClickHouseAlertStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAlertStorage) Close() error {
	return nil // connection pool is managed by pkg/clickhouse
}
