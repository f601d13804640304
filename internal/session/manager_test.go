package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctaba/telehealth-api/internal/repository/memory"
	"github.com/doctaba/telehealth-api/pkg/metrics"
)

func newTestRouter(t *testing.T, mgr *Manager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(mgr.Middleware())
	r.POST("/login/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		require.NoError(t, mgr.Issue(c, id))
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		id, ok, err := mgr.Resolve(c)
		require.NoError(t, err)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.String(http.StatusOK, strconv.FormatInt(id, 10))
	})
	r.POST("/logout", func(c *gin.Context) {
		require.NoError(t, mgr.Revoke(c))
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testConfig() Config {
	return Config{CookieName: "doctaba.sid", Secret: []byte("0123456789abcdef0123456789abcdef"), TTL: time.Hour}
}

func TestManager_IssueResolveRevoke(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	mgr := NewManager(memory.NewSessionRepository(time.Minute), testConfig(), m)
	r := newTestRouter(t, mgr)

	w := do(r, http.MethodGet, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/login/7", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "doctaba.sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w = do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())

	w = do(r, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusNoContent, w.Code)

	// the old cookie is still signed but its session is gone
	w = do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsIssued))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsRevoked))
}

func TestManager_ExpiredSessionIsRejected(t *testing.T) {
	repo := memory.NewSessionRepository(time.Minute)
	mgr := NewManager(repo, testConfig(), nil)
	r := newTestRouter(t, mgr)

	w := do(r, http.MethodPost, "/login/3", nil)
	cookies := w.Result().Cookies()

	mgr.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	w = do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManager_TamperedCookieIsIgnored(t *testing.T) {
	mgr := NewManager(memory.NewSessionRepository(time.Minute), testConfig(), nil)
	r := newTestRouter(t, mgr)

	forged := &http.Cookie{Name: "doctaba.sid", Value: "not-a-signed-value"}
	w := do(r, http.MethodGet, "/whoami", []*http.Cookie{forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManager_IssueReplacesExistingSession(t *testing.T) {
	repo := memory.NewSessionRepository(time.Minute)
	mgr := NewManager(repo, testConfig(), nil)
	r := newTestRouter(t, mgr)

	first := do(r, http.MethodPost, "/login/1", nil).Result().Cookies()
	second := do(r, http.MethodPost, "/login/2", first).Result().Cookies()

	w := do(r, http.MethodGet, "/whoami", second)
	assert.Equal(t, "2", w.Body.String())

	removed, err := repo.DeleteExpired(context.Background(), time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
