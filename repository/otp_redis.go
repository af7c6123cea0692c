package repository

import (
	"context"
	"time"

	"agrizen/domain"

	"github.com/redis/go-redis/v9"
)

// consumeScript settles the compare-and-delete server-side so two
// concurrent consumers of the same key cannot both win. The entry is
// deleted only on a code match; expiry is redis's own TTL.
var consumeScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
  return false
end
if code ~= ARGV[1] then
  return false
end
local role = redis.call('HGET', KEYS[1], 'role')
redis.call('DEL', KEYS[1])
return role
`)

type redisChallengeStore struct {
	client *redis.Client
}

func NewRedisChallengeStore(client *redis.Client) domain.ChallengeStore {
	return &redisChallengeStore{client: client}
}

func (r *redisChallengeStore) key(channel domain.Channel, identifier string) string {
	return "otp:" + domain.ChallengeKey(channel, identifier)
}

func (r *redisChallengeStore) Put(ctx context.Context, channel domain.Channel, identifier, code, role string, ttl time.Duration) error {
	key := r.key(channel, identifier)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]string{
		"code": code,
		"role": role,
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisChallengeStore) PeekRole(ctx context.Context, channel domain.Channel, identifier string) (string, bool, error) {
	role, err := r.client.HGet(ctx, r.key(channel, identifier), "role").Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

func (r *redisChallengeStore) Consume(ctx context.Context, channel domain.Channel, identifier, code string) (string, bool, error) {
	res, err := consumeScript.Run(ctx, r.client, []string{r.key(channel, identifier)}, code).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	role, ok := res.(string)
	if !ok {
		return "", false, nil
	}
	return role, true, nil
}

// Sweep is a no-op: redis drops expired keys on its own.
func (r *redisChallengeStore) Sweep(context.Context) error {
	return nil
}
