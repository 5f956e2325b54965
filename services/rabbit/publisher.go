package rabbit

// This file publishes "battle"-type events (a battle finished) to RabbitMQ

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redis_models "github.com/nicolasvargaszz/learn-chinese-game/models/redis"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	BattleEndedRoutingKey = "battle.ended" // routing key for "battle_ended" event
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// BattleEndedMessage is the body of a "battle.ended" event.
type BattleEndedMessage struct {
	RoomCode       string                        `json:"room_code"`
	Winner         string                        `json:"winner"`
	TotalQuestions int                           `json:"total_questions"`
	Standings      []redis_models.BattleStanding `json:"standings"`
	EndedAt        time.Time                     `json:"ended_at"`
}

// Publisher owns one channel. Channels are not safe for concurrent
// publishing, so sends are serialized.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
}

// Dial connects to the broker and declares the topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	p, err := NewPublisher(ch, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	log.Info().Str("exchange", exchange).Msg("[RABBIT] Connected")
	return p, nil
}

func NewPublisher(ch Channel, exchange string) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishBattleEnded(ctx context.Context, msg BattleEndedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling battle ended event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, BattleEndedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.EndedAt,
		MessageId:    msg.RoomCode,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", BattleEndedRoutingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
