package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DineVoice/dinevoice-backend/internal/dialogue"
)

const sessionKeyPrefix = "callsession:"

// SessionStore keeps the per-call dialogue sessions between webhook
// turns, keyed by call SID. Completed sessions stay until the TTL runs
// out so provider retries after completion still find their state.
type SessionStore interface {
	Get(ctx context.Context, callSID string) (*dialogue.Session, error)
	Put(ctx context.Context, session *dialogue.Session) error
	Delete(ctx context.Context, callSID string) error
	All(ctx context.Context) ([]*dialogue.Session, error)
	Count(ctx context.Context) (int, error)
}

// RedisSessionStore keeps sessions in Redis as JSON under a TTL, so
// multiple instances can serve turns of the same call.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) key(callSID string) string {
	return sessionKeyPrefix + callSID
}

func (r *RedisSessionStore) Get(ctx context.Context, callSID string) (*dialogue.Session, error) {
	data, err := r.client.Get(ctx, r.key(callSID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", callSID, err)
	}

	var session dialogue.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", callSID, err)
	}
	return &session, nil
}

func (r *RedisSessionStore) Put(ctx context.Context, session *dialogue.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.CallSID, err)
	}
	if err := r.client.Set(ctx, r.key(session.CallSID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", session.CallSID, err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, callSID string) error {
	return r.client.Del(ctx, r.key(callSID)).Err()
}

func (r *RedisSessionStore) All(ctx context.Context) ([]*dialogue.Session, error) {
	var sessions []*dialogue.Session
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue // expired between scan and get
		}
		var session dialogue.Session
		if err := json.Unmarshal(data, &session); err != nil {
			log.Printf("⚠️  Skipping undecodable session at %s: %v", iter.Val(), err)
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}

func (r *RedisSessionStore) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// MemorySessionStore is the single-instance fallback when Redis is not
// configured. Redis expires keys on its own; here the cleanup job calls
// SweepExpired instead.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*dialogue.Session
	ttl      time.Duration
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*dialogue.Session),
		ttl:      ttl,
	}
}

func (m *MemorySessionStore) Get(ctx context.Context, callSID string) (*dialogue.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[callSID]
	if !ok {
		return nil, nil
	}
	if time.Since(session.LastActive) > m.ttl {
		return nil, nil
	}
	return session, nil
}

func (m *MemorySessionStore) Put(ctx context.Context, session *dialogue.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.CallSID] = session
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, callSID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, callSID)
	return nil
}

func (m *MemorySessionStore) All(ctx context.Context) ([]*dialogue.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*dialogue.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (m *MemorySessionStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// SweepExpired drops sessions idle past the TTL and reports how many
// were removed.
func (m *MemorySessionStore) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for callSID, session := range m.sessions {
		if time.Since(session.LastActive) > m.ttl {
			delete(m.sessions, callSID)
			removed++
		}
	}
	return removed
}
