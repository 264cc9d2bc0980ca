package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "trafficledger:session:"

// RedisStore shares session state between dashboard instances. Entries
// expire after the configured TTL of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Dial connects to the Redis server at url and checks it responds.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (State, error) {
	if strings.TrimSpace(id) == "" {
		return State{}, ErrInvalidID
	}
	payload, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(id), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("get session: %w", err)
	}
	state, err := decodeState(payload)
	if err != nil {
		return State{}, err
	}
	state.ID = id
	return state, nil
}

// decodeState keeps result cells as json.Number so integers stay exact.
func decodeState(payload []byte) (State, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var state State
	if err := decoder.Decode(&state); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	return state, nil
}

func (r *RedisStore) Save(ctx context.Context, state State) error {
	if strings.TrimSpace(state.ID) == "" {
		return ErrInvalidID
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+state.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
