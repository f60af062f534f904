package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rickchristie/reagent"
)

// RedisOptions configures a [Redis] log.
type RedisOptions struct {
	// Key is the Redis list holding the conversation. Required.
	Key string

	// TTL expires the whole list this long after the last write. Zero keeps
	// it forever.
	TTL time.Duration
}

// Redis stores the log as a Redis list of JSON encoded messages.
//
// The list is append-only from this package's point of view; the core never
// trims it. Retention, if any, is the TTL.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedis creates a log on an existing client.
func NewRedis(client redis.UniversalClient, opts RedisOptions) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis memory: nil client")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("redis memory: empty key")
	}
	return &Redis{client: client, key: opts.Key, ttl: opts.TTL}, nil
}

// DialRedis parses a redis:// URL, connects and checks the connection.
func DialRedis(ctx context.Context, url string, opts RedisOptions) (*Redis, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	ro.MaxRetries = 3
	ro.DialTimeout = 5 * time.Second
	ro.ReadTimeout = 3 * time.Second
	ro.WriteTimeout = 3 * time.Second

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedis(client, opts)
}

// Add appends msgs in one round trip.
func (r *Redis) Add(ctx context.Context, msgs ...*reagent.Message) error {
	values := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message %s: %w", msg.ID, err)
		}
		values = append(values, data)
	}
	if len(values) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, r.key, values...)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add messages: %w", err)
	}
	return nil
}

// List reads the whole list.
func (r *Redis) List(ctx context.Context) ([]*reagent.Message, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return decodeMessages(raw)
}

// Size returns the list length.
func (r *Redis) Size(ctx context.Context) (int, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return int(n), nil
}

// Clear deletes the list.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func decodeMessages(raw []string) ([]*reagent.Message, error) {
	out := make([]*reagent.Message, 0, len(raw))
	for i, s := range raw {
		var msg reagent.Message
		if err := json.Unmarshal([]byte(s), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message %d: %w", i, err)
		}
		out = append(out, &msg)
	}
	return out, nil
}

var _ reagent.Memory = (*Redis)(nil)
