package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore guarda el token de sesion vigente de cada identidad.
type TokenStore interface {
	// PutIfAbsent guarda token si no hay otro vigente y devuelve el que quedo guardado.
	PutIfAbsent(ctx context.Context, identityID, token string, ttl time.Duration) (string, error)
	// Get devuelve "" si no hay token vigente.
	Get(ctx context.Context, identityID string) (string, error)
	Delete(ctx context.Context, identityID string) error
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

type memoryTokenStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{
		items: make(map[string]memoryEntry),
	}
}

func (s *memoryTokenStore) getLocked(identityID string) string {
	entry, ok := s.items[identityID]
	if !ok {
		return ""
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, identityID)
		return ""
	}
	return entry.token
}

func (s *memoryTokenStore) PutIfAbsent(_ context.Context, identityID, token string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(identityID) == "" {
		return "", errors.New("identity id is required")
	}
	if current := s.getLocked(identityID); current != "" {
		return current, nil
	}
	s.items[identityID] = memoryEntry{token: token, expiresAt: time.Now().UTC().Add(ttl)}
	return token, nil
}

func (s *memoryTokenStore) Get(_ context.Context, identityID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(identityID), nil
}

func (s *memoryTokenStore) Delete(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, identityID)
	return nil
}

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisTokenStore struct {
	client  redisKVClient
	prefix  string
	timeout time.Duration
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	if client == nil {
		return nil
	}
	return &redisTokenStore{
		client:  client,
		prefix:  "auth:session:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisTokenStore) PutIfAbsent(ctx context.Context, identityID, token string, ttl time.Duration) (string, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return "", errors.New("identity id is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.client.SetNX(ctx, s.prefix+identityID, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}
	current, err := s.client.Get(ctx, s.prefix+identityID).Result()
	if errors.Is(err, redis.Nil) {
		// Expiro entre SETNX y GET; el llamador puede reintentar.
		return "", errors.New("session token vanished during issuance")
	}
	return current, err
}

func (s *redisTokenStore) Get(ctx context.Context, identityID string) (string, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.prefix+identityID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *redisTokenStore) Delete(ctx context.Context, identityID string) error {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+identityID).Err()
}
