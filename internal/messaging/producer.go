package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/i474232898/weather-now/internal/weather"
)

// WeatherUpdate is the message published for every weather state change.
type WeatherUpdate struct {
	ID          string         `json:"id"`
	PublishedAt time.Time      `json:"publishedAt"`
	View        weather.View   `json:"view"`
	Record      weather.Record `json:"record"`
}

// Producer publishes weather updates to a Kafka topic.
type Producer struct {
	topic  string
	client *kgo.Client
	logger *zap.Logger
}

// NewProducer connects to brokers and publishes to topic.
func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &Producer{topic: topic, client: client, logger: logger}, nil
}

func (p *Producer) Close() {
	p.client.Close()
}

// NewWeatherUpdate wraps a record in a message envelope.
func NewWeatherUpdate(rec weather.Record) WeatherUpdate {
	return WeatherUpdate{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
		View:        weather.Render(&rec),
		Record:      rec,
	}
}

// Publish sends one record synchronously. The message key is the location
// name so updates for one place stay on one partition.
func (p *Producer) Publish(ctx context.Context, rec weather.Record) error {
	msg := NewWeatherUpdate(rec)
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal weather update: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(weather.Stringify(rec.LocationName)),
		Value: value,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, r := range p.client.ProduceSync(ctx, record) {
		if r.Err != nil {
			return fmt.Errorf("kafka publish: %w", r.Err)
		}
	}

	p.logger.Debug("published weather update", zap.String("topic", p.topic), zap.String("id", msg.ID))
	return nil
}

// PublishAsync publishes in the background; errors are logged. Its signature
// matches weather.Coordinator.OnWeather.
func (p *Producer) PublishAsync(rec weather.Record) {
	go func() {
		if err := p.Publish(context.Background(), rec); err != nil {
			p.logger.Warn("kafka async publish failed", zap.Error(err))
		}
	}()
}
