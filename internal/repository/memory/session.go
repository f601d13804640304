package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

// SessionRepository keeps sessions in a go-cache instance whose janitor
// evicts expired entries every cleanupInterval.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(cleanupInterval time.Duration) repository.SessionRepository {
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	r.cache.Set(session.ID, *session, ttl)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, nil
	}
	sess := v.(model.Session)
	return &sess, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	for id, item := range r.cache.Items() {
		sess := item.Object.(model.Session)
		if sess.Expired(before) {
			r.cache.Delete(id)
			removed++
		}
	}
	return removed, nil
}
