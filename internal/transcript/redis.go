package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTTL = 30 * 24 * time.Hour

// RedisStore persists transcripts as per-session Redis lists with a TTL.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed transcript store.
func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("transcript: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("hospital-chatbot.internal.transcript")
	}
	return &RedisStore{redis: client, tracer: tracer, ttl: ttl}
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("transcript:%s", sessionID)
}

// Append records a turn at the tail of the session's list. The message
// number is the list position; same-session turns are serialized upstream,
// so the length read and the push cannot interleave for one session.
func (s *RedisStore) Append(ctx context.Context, entry Entry) error {
	ctx, span := s.tracer.Start(ctx, "transcript.append")
	defer span.End()

	key := transcriptKey(entry.SessionID)

	length, err := s.redis.LLen(ctx, key).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: failed to read length: %w", err)
	}
	entry.MessageNumber = int(length) + 1

	data, err := json.Marshal(entry)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: failed to marshal entry: %w", err)
	}

	if err := s.redis.RPush(ctx, key, data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: failed to persist entry: %w", err)
	}
	if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: failed to refresh ttl: %w", err)
	}
	return nil
}

// List returns up to limit turns for a session in append order.
func (s *RedisStore) List(ctx context.Context, sessionID string, limit int64) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "transcript.list")
	defer span.End()

	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), 0, stop).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("transcript: failed to load entries: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("transcript: failed to decode entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
