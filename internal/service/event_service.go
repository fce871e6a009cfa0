package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/observability"
)

const eventBufferSize = 32

// EventService is the subscribe/notify bus behind the change stream.
type EventService interface {
	EventPublisher
	Subscribe(principalID string) (<-chan dto.Event, func())
	Start(ctx context.Context)
}

type eventService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *eventBroker
	nodeID       string
}

type eventEnvelope struct {
	Source string    `json:"source"`
	Event  dto.Event `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

type eventBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.Event]string
}

// NewEventService constructs the event bus. Redis and NATS are optional and
// only used to reach other nodes.
func NewEventService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) EventService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &eventService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_service").Logger(),
		broker:       &eventBroker{subscribers: make(map[chan dto.Event]string)},
		nodeID:       uuid.NewString(),
	}
}

func (s *eventService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *eventService) Publish(ctx context.Context, event dto.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	s.broker.broadcast(event)
	observability.EventsPublished().WithLabelValues(event.Collection).Inc()

	if err := s.forward(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("collection", event.Collection).Msg("failed to forward event to other nodes")
	}
}

func (s *eventService) Subscribe(principalID string) (<-chan dto.Event, func()) {
	channel := make(chan dto.Event, eventBufferSize)

	s.broker.subscribe(principalID, channel)
	observability.EventsClientsActive().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(channel)
			observability.EventsClientsActive().Dec()
		})
	}

	return channel, cleanup
}

func (s *eventService) forward(ctx context.Context, event dto.Event) error {
	if (s.redis == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(eventEnvelope{Source: s.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *eventService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		s.handleRemote([]byte(msg.Payload))
	}
}

func (s *eventService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleRemote(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain event nats subscription")
		}
	}()
}

func (s *eventService) handleRemote(payload []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid event payload")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	observability.EventsPublished().WithLabelValues(envelope.Event.Collection).Inc()
	s.broker.broadcast(envelope.Event)
}

func (b *eventBroker) subscribe(principalID string, ch chan dto.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = principalID
}

func (b *eventBroker) unsubscribe(ch chan dto.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *eventBroker) broadcast(event dto.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, principalID := range b.subscribers {
		if event.Audience != "" && event.Audience != principalID {
			continue
		}
		select {
		case ch <- event:
		default:
		}
	}
}
