// Package adminctx fetches and caches the clinic-admin context: the admin
// profile, their clinic, and the subscription plan the feature gate reads.
package adminctx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/plan"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// ProfileAPI is the slice of the upstream client the provider uses.
type ProfileAPI interface {
	Profile(ctx context.Context, token string) (*upstream.Profile, error)
}

// Context is the resolved admin aggregate. Plan is what the feature gate
// compares against; Reload after any mutation that could change it.
type Context struct {
	Admin  *identity.User          `json:"admin"`
	Clinic *upstream.ProfileClinic `json:"clinic"`
	Plan   *plan.Plan              `json:"plan"`
}

// Provider loads the admin context once per session and caches it briefly.
type Provider struct {
	api    ProfileAPI
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewProvider creates an admin context provider. ttl bounds staleness
// between explicit reloads.
func NewProvider(api ProfileAPI, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Provider{api: api, redis: redisClient, ttl: ttl, logger: logger}
}

func (p *Provider) key(sid string) string {
	return fmt.Sprintf("adminctx:%s", sid)
}

// Load returns the admin context, from cache when fresh. Fetch failure is
// logged and swallowed: callers treat a nil context as "profile unavailable",
// which the feature gate resolves by failing closed.
func (p *Provider) Load(ctx context.Context, sid, token string) *Context {
	if cached := p.fromCache(ctx, sid); cached != nil {
		return cached
	}
	return p.fetch(ctx, sid, token)
}

// Reload busts the cache and refetches; call it after a mutation that could
// change the plan (upgrade, clinic edit).
func (p *Provider) Reload(ctx context.Context, sid, token string) *Context {
	if p.redis != nil {
		if err := p.redis.Del(ctx, p.key(sid)).Err(); err != nil {
			p.logger.Warn("failed to bust admin context cache", "error", err)
		}
	}
	return p.fetch(ctx, sid, token)
}

func (p *Provider) fromCache(ctx context.Context, sid string) *Context {
	if p.redis == nil || sid == "" {
		return nil
	}
	data, err := p.redis.Get(ctx, p.key(sid)).Bytes()
	if err != nil {
		return nil
	}
	var cached Context
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil
	}
	return &cached
}

func (p *Provider) fetch(ctx context.Context, sid, token string) *Context {
	profile, err := p.api.Profile(ctx, token)
	if err != nil {
		p.logger.Error("failed to fetch admin profile", "error", err)
		return nil
	}

	resolved := &Context{Admin: profile.Admin, Clinic: profile.Clinic, Plan: profile.Plan}
	if resolved.Plan == nil && profile.Clinic != nil {
		resolved.Plan = profile.Clinic.Plan
	}

	if p.redis != nil && sid != "" {
		if data, err := json.Marshal(resolved); err == nil {
			if err := p.redis.Set(ctx, p.key(sid), data, p.ttl).Err(); err != nil {
				p.logger.Warn("failed to cache admin context", "error", err)
			}
		}
	}
	return resolved
}
