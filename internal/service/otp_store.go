package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type ChallengeKind string

const (
	ChallengeLogin  ChallengeKind = "login"
	ChallengeSignup ChallengeKind = "signup"
)

// Challenge ожидающая подтверждения операция входа или регистрации
type Challenge struct {
	ID         string         `json:"id"`
	Kind       ChallengeKind  `json:"kind"`
	Code       string         `json:"code"`
	Identifier string         `json:"identifier,omitempty"`
	Password   string         `json:"password,omitempty"`
	Signup     *SignupRequest `json:"signup,omitempty"`
	ExpiresAt  time.Time      `json:"expiresAt"`
}

// ChallengeStore хранит challenge до подтверждения. Get возвращает ErrChallengeNotFound
// для неизвестных и просроченных
type ChallengeStore interface {
	Save(ctx context.Context, ch Challenge) error
	Get(ctx context.Context, id string) (Challenge, error)
	Delete(ctx context.Context, id string) error
}

// MemoryChallengeStore хранилище в памяти процесса
type MemoryChallengeStore struct {
	mu    sync.Mutex
	items map[string]Challenge
	now   func() time.Time
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{items: make(map[string]Challenge), now: time.Now}
}

func (s *MemoryChallengeStore) Save(_ context.Context, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// заодно чистим просроченные
	now := s.now()
	for id, c := range s.items {
		if now.After(c.ExpiresAt) {
			delete(s.items, id)
		}
	}
	s.items[ch.ID] = ch
	return nil
}

func (s *MemoryChallengeStore) Get(_ context.Context, id string) (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.items[id]
	if !ok {
		return Challenge{}, ErrChallengeNotFound
	}
	if s.now().After(ch.ExpiresAt) {
		delete(s.items, id)
		return Challenge{}, ErrChallengeNotFound
	}
	return ch, nil
}

func (s *MemoryChallengeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

const otpKeyPrefix = "earnads:otp:"

// RedisChallengeStore challenge в redis с TTL до ExpiresAt
type RedisChallengeStore struct {
	client *redis.Client
}

func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client}
}

func (s *RedisChallengeStore) Save(ctx context.Context, ch Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, otpKeyPrefix+ch.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set challenge: %w", err)
	}
	return nil
}

func (s *RedisChallengeStore) Get(ctx context.Context, id string) (Challenge, error) {
	data, err := s.client.Get(ctx, otpKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, ErrChallengeNotFound
	}
	if err != nil {
		return Challenge{}, fmt.Errorf("redis get challenge: %w", err)
	}
	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return Challenge{}, ErrChallengeNotFound
	}
	return ch, nil
}

func (s *RedisChallengeStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, otpKeyPrefix+id).Err()
}
