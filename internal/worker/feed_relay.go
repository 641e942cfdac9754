package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/model"
	"github.com/stemsi/class-subjects/internal/websocket"
)

const publishTimeout = 2 * time.Second

// FeedRelay carries newly stored records through Redis pub/sub so every
// server instance sharing the store feeds its own WebSocket subscribers.
type FeedRelay struct {
	rdb     *redis.Client
	hub     *websocket.Hub
	channel string
	log     zerolog.Logger
}

// NewFeedRelay creates a relay on the feed channel derived from prefix.
func NewFeedRelay(rdb *redis.Client, hub *websocket.Hub, prefix string, log zerolog.Logger) *FeedRelay {
	return &FeedRelay{
		rdb:     rdb,
		hub:     hub,
		channel: config.CacheKey.SubjectsFeedChannel(prefix),
		log:     log.With().Str("component", "feed_relay").Logger(),
	}
}

// Publish sends rec to every instance, this one included. It returns the
// number of relays Redis delivered to, or 0 when publishing failed.
func (w *FeedRelay) Publish(rec model.SubjectsRecord) int {
	payload, err := json.Marshal(rec)
	if err != nil {
		w.log.Error().Err(err).Msg("Marshal error")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	n, err := w.rdb.Publish(ctx, w.channel, payload).Result()
	if err != nil {
		w.log.Error().Err(err).Str("channel", w.channel).Msg("Publish error")
		return 0
	}
	return int(n)
}

// Start subscribes to the feed channel and forwards records to the local hub
// until ctx is cancelled. Call in a goroutine.
func (w *FeedRelay) Start(ctx context.Context) {
	sub := w.rdb.Subscribe(ctx, w.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reporting ready.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Str("channel", w.channel).Msg("Subscribe error")
		}
		return
	}
	w.log.Info().Str("channel", w.channel).Msg("Worker started")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			w.forward(msg.Payload)
		}
	}
}

func (w *FeedRelay) forward(payload string) {
	var rec model.SubjectsRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}
	n := w.hub.Publish(rec)
	w.log.Debug().Int("subscribers", n).Str("class", rec.ClassName).Msg("Relayed subjects record")
}
