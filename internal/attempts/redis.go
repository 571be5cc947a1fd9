package attempts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "attempts:"

// The conditional increment runs server-side so concurrent duplicate
// submissions observe a consistent counter. Returns the attempt count
// after the call and whether the increment was applied.
var incrementScript = redis.NewScript(`
local attempts = tonumber(redis.call('HGET', KEYS[1], 'attempts') or '0')
if attempts >= tonumber(ARGV[1]) then
  redis.call('HSET', KEYS[1], 'last_seen', ARGV[2])
  return {attempts, 0}
end
attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
redis.call('HSETNX', KEYS[1], 'first_seen', ARGV[2])
redis.call('HSET', KEYS[1], 'last_seen', ARGV[2])
if tonumber(ARGV[3]) > 0 and attempts == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
  redis.call('PEXPIRE', KEYS[1] .. ':codes', ARGV[3])
end
return {attempts, 1}
`)

type redisStore struct {
	rdb    *redis.Client
	window time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis-backed attempt store. The URL is parsed with
// redis.ParseURL; window > 0 bounds how long a thread key deduplicates
// (0 retains records indefinitely).
func NewRedis(url, password string, window time.Duration, logger *slog.Logger) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &redisStore{
		rdb:    rdb,
		window: window,
		logger: logger.With("system", "attempts"),
	}, nil
}

func recordKey(key string) string {
	return keyPrefix + key
}

func codesKey(key string) string {
	return keyPrefix + key + ":codes"
}

func (s *redisStore) Get(ctx context.Context, key string) (*Record, error) {
	fields, err := s.rdb.HGetAll(ctx, recordKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	codes, err := s.rdb.LRange(ctx, codesKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange codes: %w", err)
	}

	return buildRecord(key, fields, codes), nil
}

func (s *redisStore) Increment(ctx context.Context, key string, max int) (*Record, bool, error) {
	now := time.Now().UTC()

	res, err := incrementScript.Run(
		ctx, s.rdb,
		[]string{recordKey(key)},
		max,
		now.Format(time.RFC3339Nano),
		s.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, false, fmt.Errorf("increment script: %w", err)
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("increment script: unexpected reply %v", res)
	}

	allowed := res[1] == 1

	record, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}

	return record, allowed, nil
}

func (s *redisStore) RecordCodes(ctx context.Context, key string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	members := make([]any, len(codes))
	for i, c := range codes {
		members[i] = c
	}

	if err := s.rdb.RPush(ctx, codesKey(key), members...).Err(); err != nil {
		return fmt.Errorf("rpush codes: %w", err)
	}
	return nil
}

func buildRecord(key string, fields map[string]string, codes []string) *Record {
	r := &Record{
		Key:        key,
		PriorCodes: codes,
	}

	if v, ok := fields["attempts"]; ok {
		fmt.Sscanf(v, "%d", &r.Attempts)
	}
	if v, ok := fields["first_seen"]; ok {
		r.FirstSeen, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v, ok := fields["last_seen"]; ok {
		r.LastSeen, _ = time.Parse(time.RFC3339Nano, v)
	}

	if r.PriorCodes == nil {
		r.PriorCodes = []string{}
	}

	return r
}
