package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"agrizen/domain"
)

const shardCount = 16

type memoryShard struct {
	mu      sync.Mutex
	entries map[string]domain.Challenge
}

// memoryChallengeStore is a sharded in-process challenge store. Keys
// hash to one of shardCount shards, each behind its own mutex, so
// operations on different keys rarely contend and operations on the
// same key are linearized.
type memoryChallengeStore struct {
	shards [shardCount]*memoryShard
	now    func() time.Time
}

func NewMemoryChallengeStore() domain.ChallengeStore {
	return newMemoryChallengeStore(time.Now)
}

func newMemoryChallengeStore(now func() time.Time) *memoryChallengeStore {
	s := &memoryChallengeStore{now: now}
	for i := range s.shards {
		s.shards[i] = &memoryShard{entries: make(map[string]domain.Challenge)}
	}
	return s
}

func (s *memoryChallengeStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

func (s *memoryChallengeStore) Put(_ context.Context, channel domain.Channel, identifier, code, role string, ttl time.Duration) error {
	key := domain.ChallengeKey(channel, identifier)
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.entries[key] = domain.Challenge{
		Channel:    channel,
		Identifier: identifier,
		Code:       code,
		Role:       role,
		ExpiresAt:  s.now().Add(ttl),
	}
	return nil
}

func (s *memoryChallengeStore) PeekRole(_ context.Context, channel domain.Channel, identifier string) (string, bool, error) {
	key := domain.ChallengeKey(channel, identifier)
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	entry, ok := sh.entries[key]
	if !ok || entry.Expired(s.now()) {
		return "", false, nil
	}
	return entry.Role, true, nil
}

func (s *memoryChallengeStore) Consume(_ context.Context, channel domain.Channel, identifier, code string) (string, bool, error) {
	key := domain.ChallengeKey(channel, identifier)
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	entry, ok := sh.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.Expired(s.now()) {
		delete(sh.entries, key)
		return "", false, nil
	}
	if entry.Code != code {
		// Mismatch keeps the entry so an immediate retry with the
		// right code can still succeed.
		return "", false, nil
	}
	delete(sh.entries, key)
	return entry.Role, true, nil
}

func (s *memoryChallengeStore) Sweep(_ context.Context) error {
	now := s.now()
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, entry := range sh.entries {
			if entry.Expired(now) {
				delete(sh.entries, key)
			}
		}
		sh.mu.Unlock()
	}
	return nil
}
