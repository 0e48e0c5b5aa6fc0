package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event any) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, channel, jsonstr).Err()
}

// Subscribe forwards raw event payloads on channels until ctx is done.
// The returned channel is closed when the subscription ends.
func (s *SignalService) Subscribe(ctx context.Context, channels ...string) <-chan []byte {
	out := make(chan []byte, 16)
	pubsub := s.rdb.Subscribe(ctx, channels...)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
