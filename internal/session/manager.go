package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
	"github.com/doctaba/telehealth-api/pkg/metrics"
)

// sidKey is the cookie session value holding the server-side session id
const sidKey = "sid"

type Config struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	Secure     bool
}

// Manager issues, resolves and revokes server-side sessions. The browser
// only ever holds the random session id, inside a signed cookie.
type Manager struct {
	repo    repository.SessionRepository
	store   sessions.Store
	name    string
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewManager(repo repository.SessionRepository, cfg Config, m *metrics.Metrics) *Manager {
	store := cookie.NewStore(cfg.Secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return &Manager{
		repo:    repo,
		store:   store,
		name:    cfg.CookieName,
		ttl:     cfg.TTL,
		metrics: m,
		now:     time.Now,
	}
}

// Middleware loads the signed cookie session for every request
func (m *Manager) Middleware() gin.HandlerFunc {
	return sessions.Sessions(m.name, m.store)
}

// Issue starts a new session for userID, replacing any session the request
// already carried.
func (m *Manager) Issue(c *gin.Context, userID int64) error {
	cs := sessions.Default(c)
	if old, ok := cs.Get(sidKey).(string); ok && old != "" {
		if err := m.repo.Delete(c.Request.Context(), old); err != nil {
			log.Warn().Err(err).Msg("failed to delete replaced session")
		}
	}

	id, err := newID()
	if err != nil {
		return err
	}

	sess := &model.Session{ID: id, UserID: userID, ExpiresAt: m.now().Add(m.ttl)}
	if err := m.repo.Create(c.Request.Context(), sess); err != nil {
		return err
	}

	cs.Set(sidKey, id)
	if err := cs.Save(); err != nil {
		return fmt.Errorf("failed to save session cookie: %w", err)
	}

	if m.metrics != nil {
		m.metrics.SessionsIssued.Inc()
	}
	return nil
}

// Resolve returns the user id of the request's live session, or false
func (m *Manager) Resolve(c *gin.Context) (int64, bool, error) {
	id, ok := sessions.Default(c).Get(sidKey).(string)
	if !ok || id == "" {
		return 0, false, nil
	}
	return m.lookup(c.Request.Context(), id)
}

func (m *Manager) lookup(ctx context.Context, id string) (int64, bool, error) {
	sess, err := m.repo.Get(ctx, id)
	if err != nil {
		return 0, false, err
	}
	if sess == nil || sess.Expired(m.now()) {
		return 0, false, nil
	}
	return sess.UserID, true, nil
}

// Revoke deletes the request's session and expires the cookie
func (m *Manager) Revoke(c *gin.Context) error {
	cs := sessions.Default(c)
	if id, ok := cs.Get(sidKey).(string); ok && id != "" {
		if err := m.repo.Delete(c.Request.Context(), id); err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.SessionsRevoked.Inc()
		}
	}

	cs.Clear()
	cs.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := cs.Save(); err != nil {
		return fmt.Errorf("failed to clear session cookie: %w", err)
	}
	return nil
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
