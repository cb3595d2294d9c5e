package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/redirect-gateway/internal/gateway"
)

const tokenKeyPrefix = "tokens:"

// RedisStore is a Redis implementation of gateway.Repository.
// Each link is a hash under tokens:<token>, optionally expiring after ttl.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed token store. A zero ttl keeps tokens forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: tokenKeyPrefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) Put(ctx context.Context, link *gateway.Link) error {
	key := r.prefix + string(link.Token)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, linkFields(link))

		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}

		return nil
	})

	return err
}

func (r *RedisStore) Get(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(token)).Result()
	if err != nil {
		return nil, err
	}

	return linkFromFields(result)
}

func (r *RedisStore) Delete(ctx context.Context, token gateway.Token) error {
	return r.client.Del(ctx, r.prefix+string(token)).Err()
}

// Take reads and deletes the hash inside one MULTI/EXEC block.
func (r *RedisStore) Take(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	key := r.prefix + string(token)

	var fields *redis.MapStringStringCmd

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return linkFromFields(fields.Val())
}

func linkFields(link *gateway.Link) map[string]interface{} {
	return map[string]interface{}{
		"token":       string(link.Token),
		"destination": link.Destination,
		"protected":   strconv.FormatBool(link.Protected),
		"created_at":  link.CreatedAt.UnixNano(),
	}
}

func linkFromFields(result map[string]string) (*gateway.Link, error) {
	if len(result) == 0 {
		return nil, gateway.ErrNotFound
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	protected, _ := strconv.ParseBool(result["protected"])

	return &gateway.Link{
		Token:       gateway.Token(result["token"]),
		Destination: result["destination"],
		Protected:   protected,
		CreatedAt:   createdAt,
	}, nil
}

var _ gateway.Repository = (*RedisStore)(nil)
