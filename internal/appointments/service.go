// Package appointments maintains the session-scoped appointment list and the
// optimistic status update: the list is patched locally first, then the
// upstream call either confirms it or the exact prior snapshot is restored.
package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

// API is the slice of the upstream client this service uses.
type API interface {
	DoctorAppointments(ctx context.Context, token string, page int) (upstream.Page[upstream.Appointment], error)
	UpdateAppointmentStatus(ctx context.Context, token, appointmentID, status string) (*upstream.Appointment, error)
}

// Cache holds one list snapshot per session.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates the appointment list cache.
func NewCache(redisClient *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{redis: redisClient, ttl: ttl}
}

func (c *Cache) key(sid string) string {
	return fmt.Sprintf("appointments:%s", sid)
}

// Get returns the cached list and whether one exists.
func (c *Cache) Get(ctx context.Context, sid string) ([]upstream.Appointment, bool) {
	if c.redis == nil || sid == "" {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.key(sid)).Bytes()
	if err != nil {
		return nil, false
	}
	var list []upstream.Appointment
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	return list, true
}

// Put replaces the cached list.
func (c *Cache) Put(ctx context.Context, sid string, list []upstream.Appointment) error {
	if c.redis == nil || sid == "" {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("appointments: marshal list: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(sid), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("appointments: cache list: %w", err)
	}
	return nil
}

// Service lists appointments and applies status changes optimistically.
type Service struct {
	api    API
	cache  *Cache
	logger *logging.Logger
}

// NewService creates the appointments service.
func NewService(api API, cache *Cache, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{api: api, cache: cache, logger: logger}
}

// List fetches appointments from upstream and refreshes the session's cached
// snapshot (first page only; deeper pages don't disturb the snapshot the
// optimistic update compensates against).
func (s *Service) List(ctx context.Context, sess *session.Session, page int) (upstream.Page[upstream.Appointment], error) {
	result, err := s.api.DoctorAppointments(ctx, sess.Token, page)
	if err != nil {
		return upstream.Page[upstream.Appointment]{}, err
	}
	if page <= 1 {
		if err := s.cache.Put(ctx, sess.ID, result.Items); err != nil {
			s.logger.Warn("failed to cache appointment list", "error", err)
		}
	}
	return result, nil
}

// UpdateStatus applies the status change to the local snapshot, then calls
// upstream. On failure the snapshot captured before the optimistic write is
// restored exactly; on success the server's reconciled row replaces the
// optimistic one.
func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, appointmentID, status string) ([]upstream.Appointment, error) {
	snapshot, ok := s.cache.Get(ctx, sess.ID)
	if !ok {
		page, err := s.List(ctx, sess, 1)
		if err != nil {
			return nil, err
		}
		snapshot = page.Items
	}

	optimistic := make([]upstream.Appointment, len(snapshot))
	copy(optimistic, snapshot)
	found := false
	for i := range optimistic {
		if optimistic[i].ID == appointmentID {
			optimistic[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return snapshot, fmt.Errorf("appointments: %s not in current list", appointmentID)
	}

	if err := s.cache.Put(ctx, sess.ID, optimistic); err != nil {
		s.logger.Warn("failed to write optimistic list", "error", err)
	}

	row, err := s.api.UpdateAppointmentStatus(ctx, sess.Token, appointmentID, status)
	if err != nil {
		// Compensate: restore the exact prior snapshot, no partial merge.
		if cerr := s.cache.Put(ctx, sess.ID, snapshot); cerr != nil {
			s.logger.Error("failed to restore appointment snapshot", "error", cerr)
		}
		return snapshot, err
	}

	if row != nil {
		for i := range optimistic {
			if optimistic[i].ID == row.ID {
				optimistic[i] = *row
				break
			}
		}
		if err := s.cache.Put(ctx, sess.ID, optimistic); err != nil {
			s.logger.Warn("failed to cache reconciled list", "error", err)
		}
	}
	return optimistic, nil
}
