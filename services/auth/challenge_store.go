package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"classroom/models"
	"classroom/utils"

	"github.com/go-redis/redis/v8"
)

// RedisChallengeStore keeps pending challenges in Redis with a TTL matching
// the verification window, so handles expire even if the process restarts.
type RedisChallengeStore struct {
	Client *redis.Client
}

// storedChallenge is the cache representation. OTPChallenge hides Handle
// from JSON so it never leaks to clients; the cache record must keep it.
type storedChallenge struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Handle      string    `json:"handle"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func challengeKey(id string) string {
	return utils.ChallengeCachePrefix + "id:" + id
}

func challengePhoneKey(number string) string {
	return utils.ChallengeCachePrefix + "phone:" + number
}

// Put stores ch and points the phone key at it, superseding any pending
// challenge for the same number.
func (s *RedisChallengeStore) Put(ctx context.Context, ch *models.OTPChallenge) error {
	data, err := json.Marshal(storedChallenge{
		ID:          ch.ID,
		PhoneNumber: ch.PhoneNumber,
		Handle:      ch.Handle,
		CreatedAt:   ch.CreatedAt,
		ExpiresAt:   ch.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return ErrChallengeNotFound
	}

	// Drop the superseded challenge record before repointing the phone key.
	if oldID, err := s.Client.Get(ctx, challengePhoneKey(ch.PhoneNumber)).Result(); err == nil && oldID != "" {
		if err := s.Client.Del(ctx, challengeKey(oldID)).Err(); err != nil {
			return fmt.Errorf("failed to drop superseded challenge: %w", err)
		}
	}
	if err := s.Client.Set(ctx, challengeKey(ch.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	if err := s.Client.Set(ctx, challengePhoneKey(ch.PhoneNumber), ch.ID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to index challenge: %w", err)
	}
	return nil
}

// Take removes and returns the challenge. GetDel makes the removal atomic,
// so a handle can only ever be redeemed by one caller.
func (s *RedisChallengeStore) Take(ctx context.Context, id string) (*models.OTPChallenge, error) {
	data, err := s.Client.GetDel(ctx, challengeKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take challenge: %w", err)
	}
	var rec storedChallenge
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	if cur, err := s.Client.Get(ctx, challengePhoneKey(rec.PhoneNumber)).Result(); err == nil && cur == id {
		_ = s.Client.Del(ctx, challengePhoneKey(rec.PhoneNumber)).Err()
	}
	return &models.OTPChallenge{
		ID:          rec.ID,
		PhoneNumber: rec.PhoneNumber,
		Handle:      rec.Handle,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

// Cancel drops a pending challenge without returning it.
func (s *RedisChallengeStore) Cancel(ctx context.Context, id string) error {
	_, err := s.Take(ctx, id)
	return err
}

// MemoryChallengeStore is an in-process ChallengeStore for development and
// tests. Same semantics as the Redis store, minus durability.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	byID    map[string]*models.OTPChallenge
	byPhone map[string]string
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		byID:    make(map[string]*models.OTPChallenge),
		byPhone: make(map[string]string),
	}
}

func (s *MemoryChallengeStore) Put(ctx context.Context, ch *models.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if oldID, ok := s.byPhone[ch.PhoneNumber]; ok {
		delete(s.byID, oldID)
	}
	cp := *ch
	s.byID[ch.ID] = &cp
	s.byPhone[ch.PhoneNumber] = ch.ID
	return nil
}

func (s *MemoryChallengeStore) Take(ctx context.Context, id string) (*models.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.byID[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	delete(s.byID, id)
	if s.byPhone[ch.PhoneNumber] == id {
		delete(s.byPhone, ch.PhoneNumber)
	}
	cp := *ch
	return &cp, nil
}

func (s *MemoryChallengeStore) Cancel(ctx context.Context, id string) error {
	_, err := s.Take(ctx, id)
	return err
}
