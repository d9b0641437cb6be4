package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicport/clinicport/internal/identity"
)

// Store mirrors sessions to Redis under separate keys per field, matching
// the durable-storage layout the access gate's hydration depends on.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a session store. ttl bounds how long an idle session
// survives a restart.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{redis: redisClient, ttl: ttl}
}

func (s *Store) tokenKey(sid string) string  { return fmt.Sprintf("session:%s:token", sid) }
func (s *Store) userKey(sid string) string   { return fmt.Sprintf("session:%s:user", sid) }
func (s *Store) clinicKey(sid string) string { return fmt.Sprintf("session:%s:clinic", sid) }
func (s *Store) emailKey(sid string) string  { return fmt.Sprintf("session:%s:email", sid) }

// Establish writes a complete session in one pipeline. It is the only write
// path for token and user, so the joint-presence invariant holds by
// construction: callers cannot persist one without the other.
func (s *Store) Establish(ctx context.Context, sid, token string, user *identity.User, clinic *identity.Clinic) error {
	if sid == "" {
		return fmt.Errorf("session: establish: sid required")
	}
	if token == "" || user == nil {
		return ErrIncomplete
	}

	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: marshal user: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.tokenKey(sid), token, s.ttl)
	pipe.Set(ctx, s.userKey(sid), userData, s.ttl)
	if clinic != nil {
		clinicData, err := json.Marshal(clinic)
		if err != nil {
			return fmt.Errorf("session: marshal clinic: %w", err)
		}
		pipe.Set(ctx, s.clinicKey(sid), clinicData, s.ttl)
	} else {
		pipe.Del(ctx, s.clinicKey(sid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: establish: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Hydrate restores a session from the durable mirror. A missing session is
// not an error: it returns an empty session. A half-written pair (token
// without user or vice versa) is cleared and treated as absent, so the
// invariant survives even a corrupted mirror.
func (s *Store) Hydrate(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return &Session{}, nil
	}

	pipe := s.redis.Pipeline()
	tokenCmd := pipe.Get(ctx, s.tokenKey(sid))
	userCmd := pipe.Get(ctx, s.userKey(sid))
	clinicCmd := pipe.Get(ctx, s.clinicKey(sid))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: hydrate: %v", ErrStoreUnavailable, err)
	}

	token, _ := tokenCmd.Result()
	userData, _ := userCmd.Bytes()

	if token == "" || len(userData) == 0 {
		if token != "" || len(userData) != 0 {
			// Half a session is worse than none.
			_ = s.Clear(ctx, sid)
		}
		return &Session{ID: sid}, nil
	}

	var user identity.User
	if err := json.Unmarshal(userData, &user); err != nil {
		_ = s.Clear(ctx, sid)
		return &Session{ID: sid}, nil
	}

	sess := &Session{ID: sid, Token: token, User: &user}
	if clinicData, err := clinicCmd.Bytes(); err == nil && len(clinicData) > 0 {
		var clinic identity.Clinic
		if err := json.Unmarshal(clinicData, &clinic); err == nil {
			sess.Clinic = &clinic
		}
	}
	return sess, nil
}

// Clear removes every durable key for the session in one pipeline; it never
// partially clears, since the gate's redirect decision depends on token and
// user being jointly present or jointly absent.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.tokenKey(sid))
	pipe.Del(ctx, s.userKey(sid))
	pipe.Del(ctx, s.clinicKey(sid))
	pipe.Del(ctx, s.emailKey(sid))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RememberEmail stores the "remember my email" form convenience field.
func (s *Store) RememberEmail(ctx context.Context, sid, email string) error {
	if sid == "" || email == "" {
		return nil
	}
	if err := s.redis.Set(ctx, s.emailKey(sid), email, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: remember email: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RememberedEmail returns the stored email, empty when none.
func (s *Store) RememberedEmail(ctx context.Context, sid string) string {
	if sid == "" {
		return ""
	}
	email, err := s.redis.Get(ctx, s.emailKey(sid)).Result()
	if err != nil {
		return ""
	}
	return email
}
