package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nutridata/portal/internal/core/domain"
	"github.com/nutridata/portal/internal/core/ports"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionStore keeps sessions in two keys that share a TTL:
//
//	portal:session:<digest(sid)>:token  bearer token
//	portal:session:<digest(sid)>:user   JSON user profile
type SessionStore struct {
	client     *redis.Client
	defaultTTL time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps client. defaultTTL applies when Save gets ttl <= 0.
func NewSessionStore(client *redis.Client, defaultTTL time.Duration) *SessionStore {
	if defaultTTL <= 0 {
		defaultTTL = defaultSessionTTL
	}
	return &SessionStore{client: client, defaultTTL: defaultTTL}
}

// Save writes token and user in one MULTI/EXEC so neither exists without the other.
func (s *SessionStore) Save(ctx context.Context, sid string, sess *domain.Session, ttl time.Duration) error {
	if sess == nil {
		return errors.New("save session: nil session")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	payload, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("save session: encode user: %w", err)
	}

	tokenKey, userKey := s.keys(sid)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey, sess.Token, ttl)
		pipe.Set(ctx, userKey, payload, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, sid string) (*domain.Session, error) {
	tokenKey, userKey := s.keys(sid)

	vals, err := s.client.MGet(ctx, tokenKey, userKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	token, hasToken := vals[0].(string)
	raw, hasUser := vals[1].(string)
	switch {
	case !hasToken && !hasUser:
		return nil, domain.ErrSessionNotFound
	case !hasToken || !hasUser:
		// Half a session is no session; drop the orphan.
		_ = s.client.Del(ctx, tokenKey, userKey).Err()
		return nil, domain.ErrSessionNotFound
	}

	if token == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrMalformedSession)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}

	return &domain.Session{Token: token, User: user}, nil
}

// Clear removes both keys. Deleting missing keys is not an error.
func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	tokenKey, userKey := s.keys(sid)
	if err := s.client.Del(ctx, tokenKey, userKey).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) keys(sid string) (token, user string) {
	base := keyPrefix + "session:" + digest(sid)
	return base + ":token", base + ":user"
}
