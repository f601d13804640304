package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
	"github.com/doctaba/telehealth-api/internal/repository/memory"
	"github.com/doctaba/telehealth-api/internal/service/auth"
	"github.com/doctaba/telehealth-api/internal/session"
	pkgauth "github.com/doctaba/telehealth-api/pkg/auth"
	"github.com/doctaba/telehealth-api/pkg/security"
	"github.com/doctaba/telehealth-api/pkg/validator"
)

// flakySessions fails Create while down is set
type flakySessions struct {
	repository.SessionRepository
	down bool
}

func (f *flakySessions) Create(ctx context.Context, s *model.Session) error {
	if f.down {
		return errors.New("session store unavailable")
	}
	return f.SessionRepository.Create(ctx, s)
}

func newTestRouter(t *testing.T, sessions repository.SessionRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())

	store := memory.NewStore()
	svc, err := auth.NewService(store.Users(), security.NewBcryptHasher(bcrypt.MinCost), pkgauth.NewIdentityVerifier("secret", "issuer"))
	require.NoError(t, err)

	mgr := session.NewManager(sessions, session.Config{
		CookieName: "doctaba.sid",
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		TTL:        time.Hour,
	}, nil)

	r := gin.New()
	api := r.Group("/api")
	api.Use(mgr.Middleware())
	NewHandler(svc, mgr).RegisterRoutes(api)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_SessionFailureKeepsUserAndLogsID(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = original }()

	sessions := &flakySessions{SessionRepository: memory.NewSessionRepository(time.Hour), down: true}
	r := newTestRouter(t, sessions)
	creds := `{"email":"patient@doctaba.com","password":"password123"}`

	w := post(r, "/api/register", creds)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), `"user_id":1`)
	assert.Contains(t, buf.String(), "failed to issue session")

	// the account exists, so the client recovers by logging in
	sessions.down = false
	assert.Equal(t, http.StatusConflict, post(r, "/api/register", creds).Code)

	w = post(r, "/api/login", creds)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())
}
