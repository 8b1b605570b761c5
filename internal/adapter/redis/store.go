package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
)

const (
	sessionKeyPrefix  = "eurolife:session:"
	maxUpdateAttempts = 5
)

// ErrUpdateConflict is returned when a session keeps changing underneath an
// update for maxUpdateAttempts rounds.
var ErrUpdateConflict = errors.New("session update conflict")

// SessionStore is a Redis-backed dashboard.SessionStore. Sessions are stored
// as JSON and expire ttl after their last write.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps client. A ttl of zero or less never expires.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, sess dashboard.Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (dashboard.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return dashboard.Session{}, dashboard.ErrSessionNotFound
	}
	if err != nil {
		return dashboard.Session{}, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn under WATCH so concurrent writers to the same session
// retry instead of overwriting each other.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*dashboard.Session) error) (dashboard.Session, error) {
	key := sessionKey(id)
	var out dashboard.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return dashboard.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		sess, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(&sess); err != nil {
			return err
		}
		payload, err := encodeSession(sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = sess
		return nil
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return dashboard.Session{}, err
		}
		return out, nil
	}
	return dashboard.Session{}, fmt.Errorf("%w: %s", ErrUpdateConflict, id)
}

// CheckReadiness pings the server.
func (s *SessionStore) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func encodeSession(sess dashboard.Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (dashboard.Session, error) {
	var sess dashboard.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return dashboard.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if sess.Selected == nil {
		sess.Selected = []string{}
	}
	return sess, nil
}
