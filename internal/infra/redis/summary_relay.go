package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/domain"
)

// DefaultSummaryChannel carries points summaries between service instances.
const DefaultSummaryChannel = "points:summary"

const (
	minResubscribeDelay = 100 * time.Millisecond
	maxResubscribeDelay = 5 * time.Second
)

// SummaryRelay fans points summaries out to every instance through Redis
// pub/sub. Publish sends to Redis; Run delivers what arrives to the local hub,
// so a user's WebSocket sees updates no matter which instance scored them.
type SummaryRelay struct {
	client  *redis.Client
	local   app.SummaryPublisher
	channel string
	log     logrus.FieldLogger

	readyOnce sync.Once
	ready     chan struct{}
}

type summaryMessage struct {
	UserID  string               `json:"userId"`
	Summary domain.PointsSummary `json:"summary"`
}

func NewSummaryRelay(client *redis.Client, local app.SummaryPublisher, channel string, log logrus.FieldLogger) *SummaryRelay {
	if channel == "" {
		channel = DefaultSummaryChannel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SummaryRelay{client: client, local: local, channel: channel, log: log, ready: make(chan struct{})}
}

// Publish sends summary to all instances. The local hub is notified directly
// when Redis is unreachable or Run has not subscribed yet.
func (r *SummaryRelay) Publish(userID string, summary domain.PointsSummary) {
	subscribed := r.subscribed()
	raw, err := json.Marshal(summaryMessage{UserID: userID, Summary: summary})
	if err == nil {
		err = r.client.Publish(context.Background(), r.channel, raw).Err()
	}
	if err != nil {
		r.log.WithError(err).WithField("user_id", userID).Warn("publish summary to redis failed")
	}
	if err != nil || !subscribed {
		r.local.Publish(userID, summary)
	}
}

// Ready is closed once Run holds an active subscription.
func (r *SummaryRelay) Ready() <-chan struct{} {
	return r.ready
}

func (r *SummaryRelay) subscribed() bool {
	select {
	case <-r.ready:
		return true
	default:
		return false
	}
}

// Run subscribes to the relay channel and forwards messages to the local hub
// until ctx is canceled. A failed subscribe is retried with backoff; once
// subscribed, go-redis re-establishes dropped connections itself.
func (r *SummaryRelay) Run(ctx context.Context) error {
	delay := minResubscribeDelay
	for {
		sub := r.client.Subscribe(ctx, r.channel)
		_, err := sub.Receive(ctx)
		if err == nil {
			defer sub.Close()
			return r.forward(ctx, sub)
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return nil
		}

		r.log.WithError(err).WithFields(logrus.Fields{
			"channel":  r.channel,
			"retry_in": delay.String(),
		}).Warn("subscribe to summary channel failed")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(2*delay, maxResubscribeDelay)
	}
}

func (r *SummaryRelay) forward(ctx context.Context, sub *redis.PubSub) error {
	r.readyOnce.Do(func() { close(r.ready) })

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var m summaryMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil || m.UserID == "" {
				r.log.WithField("payload", msg.Payload).Warn("ignoring malformed summary message")
				continue
			}
			r.local.Publish(m.UserID, m.Summary)
		}
	}
}
