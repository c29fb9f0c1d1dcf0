package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/totegamma/momento/internal/domain"
)

// SignalService carries change events over redis pub/sub, one channel per resource.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}

// Realtime forwards events of the requested resources to response until ctx is done
// or request is closed. Each value received on request replaces the current subscription.
func (s *SignalService) Realtime(ctx context.Context, request <-chan []string, response chan<- domain.Event) {
	var pubsub *redis.PubSub
	var messages <-chan *redis.Message

	unsubscribe := func() {
		if pubsub != nil {
			pubsub.Close()
		}
		pubsub = nil
		messages = nil
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return

		case resources, ok := <-request:
			if !ok {
				return
			}
			unsubscribe()

			channels := uniq(resources)
			if len(channels) == 0 {
				continue
			}

			pubsub = s.rdb.Subscribe(ctx, channels...)
			if _, err := pubsub.Receive(ctx); err != nil {
				slog.ErrorContext(
					ctx, "failed to subscribe",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				unsubscribe()
				continue
			}
			messages = pubsub.Channel()

		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}

			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(
					ctx, "dropping malformed event",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			select {
			case response <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func uniq(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
