package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	appointmenthandler "github.com/doctaba/telehealth-api/internal/handler/appointment"
	authhandler "github.com/doctaba/telehealth-api/internal/handler/auth"
	documenthandler "github.com/doctaba/telehealth-api/internal/handler/document"
	"github.com/doctaba/telehealth-api/internal/handler/health"
	messagehandler "github.com/doctaba/telehealth-api/internal/handler/message"
	promhandler "github.com/doctaba/telehealth-api/internal/handler/prometheus"
	userhandler "github.com/doctaba/telehealth-api/internal/handler/user"
	videohandler "github.com/doctaba/telehealth-api/internal/handler/video"
	"github.com/doctaba/telehealth-api/internal/repository/memory"
	"github.com/doctaba/telehealth-api/internal/router"
	appointmentsvc "github.com/doctaba/telehealth-api/internal/service/appointment"
	authsvc "github.com/doctaba/telehealth-api/internal/service/auth"
	documentsvc "github.com/doctaba/telehealth-api/internal/service/document"
	eventsvc "github.com/doctaba/telehealth-api/internal/service/event"
	messagesvc "github.com/doctaba/telehealth-api/internal/service/message"
	usersvc "github.com/doctaba/telehealth-api/internal/service/user"
	videosvc "github.com/doctaba/telehealth-api/internal/service/video"
	"github.com/doctaba/telehealth-api/internal/session"
	"github.com/doctaba/telehealth-api/pkg/auth"
	"github.com/doctaba/telehealth-api/pkg/messaging"
	"github.com/doctaba/telehealth-api/pkg/metrics"
	"github.com/doctaba/telehealth-api/pkg/security"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testIssuer   = "doctaba-identity"
	testPassword = "password123"
)

type response struct {
	Status  int
	RawData []byte
	Data    map[string]interface{}
}

func (r *response) GetString(key string) string {
	s, _ := r.Data[key].(string)
	return s
}

func (r *response) GetID() int64 {
	id, _ := r.Data["id"].(float64)
	return int64(id)
}

func (r *response) List() []map[string]interface{} {
	var out []map[string]interface{}
	_ = json.Unmarshal(r.RawData, &out)
	return out
}

type APISuite struct {
	suite.Suite
	server   *httptest.Server
	identity *auth.IdentityVerifier
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	m := metrics.New("test", prometheus.NewRegistry())
	events := eventsvc.NewEventService(messaging.NewMemoryBroker(10), "doctaba.events", m)
	s.identity = auth.NewIdentityVerifier(testSecret, testIssuer)

	authService, err := authsvc.NewService(store.Users(), security.NewBcryptHasher(bcrypt.MinCost), s.identity)
	s.Require().NoError(err)
	appointments := appointmentsvc.NewService(store.Appointments(), store.Users(), events)

	sessions := session.NewManager(memory.NewSessionRepository(time.Hour), session.Config{
		CookieName: "doctaba.sid",
		Secret:     []byte(testSecret),
		TTL:        time.Hour,
	}, m)

	reg := prometheus.NewRegistry()
	r, err := router.NewRouter(router.RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   1 << 20,
		MetricsPath:    "/metrics",
	}, sessions, router.Handlers{
		Health:      health.NewHandler(store),
		Auth:        authhandler.NewHandler(authService, sessions),
		User:        userhandler.NewHandler(usersvc.NewService(store.Users())),
		Appointment: appointmenthandler.NewHandler(appointments),
		Message:     messagehandler.NewHandler(messagesvc.NewService(store.Messages(), events)),
		Document:    documenthandler.NewHandler(documentsvc.NewService(store.Documents())),
		Video:       videohandler.NewHandler(videosvc.NewService(appointments, "meet.jit.si")),
		Metrics:     promhandler.New(reg, metrics.New("http", reg)),
	})
	s.Require().NoError(err)

	s.server = httptest.NewServer(r.Engine())
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
}

// client returns an HTTP client with its own cookie jar, so each one acts
// as a separate browser.
func (s *APISuite) client() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &http.Client{Jar: jar}
}

func (s *APISuite) makeRequest(c *http.Client, method, path string, body interface{}) *response {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	out := &response{Status: resp.StatusCode, RawData: raw}
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &out.Data))
	}
	return out
}

func (s *APISuite) register(c *http.Client, email, first, last, role string) int64 {
	body := map[string]interface{}{
		"email":     email,
		"password":  testPassword,
		"firstName": first,
		"lastName":  last,
		"userType":  role,
	}
	if role == "doctor" {
		body["specialty"] = "Cardiology"
	}

	resp := s.makeRequest(c, "POST", "/api/register", body)
	s.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawData))
	return resp.GetID()
}

func (s *APISuite) TestBookingVisibleToDoctor() {
	doctor, patient := s.client(), s.client()
	doctorID := s.register(doctor, "doctor@doctaba.com", "John", "Smith", "doctor")
	patientID := s.register(patient, "patient@doctaba.com", "Jane", "Doe", "patient")

	created := s.makeRequest(patient, "POST", "/api/appointments", map[string]interface{}{
		"patientId": patientID,
		"doctorId":  doctorID,
		"date":      "2025-01-30",
		"time":      "10:00 AM",
		"type":      "video",
		"status":    "upcoming",
	})
	s.Require().Equal(http.StatusCreated, created.Status, string(created.RawData))
	appointmentID := created.GetID()
	s.NotZero(appointmentID)

	list := s.makeRequest(doctor, "GET", "/api/appointments", nil)
	s.Require().Equal(http.StatusOK, list.Status)
	rows := list.List()
	s.Require().Len(rows, 1)
	s.Equal(float64(appointmentID), rows[0]["id"])
	s.Equal("Jane Doe", rows[0]["patientName"])
	s.Equal("Dr. John Smith", rows[0]["doctorName"])
	s.Equal("Cardiology", rows[0]["doctorSpecialty"])

	mine := s.makeRequest(patient, "GET", "/api/appointments", nil)
	s.Require().Equal(http.StatusOK, mine.Status)
	s.Len(mine.List(), 1)
}

func (s *APISuite) TestUnauthenticatedRequestsRejected() {
	anon := s.client()

	for _, path := range []string{"/api/appointments", "/api/user", "/api/users", "/api/messages", "/api/documents"} {
		resp := s.makeRequest(anon, "GET", path, nil)
		s.Equal(http.StatusUnauthorized, resp.Status, path)
		s.Equal("Unauthorized", resp.GetString("message"), path)
	}
}

func (s *APISuite) TestEmptyMessageContentRejected() {
	c := s.client()
	sender := s.register(c, "patient@doctaba.com", "Jane", "Doe", "patient")

	resp := s.makeRequest(c, "POST", "/api/messages", map[string]interface{}{
		"senderId":   sender,
		"receiverId": sender + 1,
		"content":    "",
	})
	s.Equal(http.StatusBadRequest, resp.Status)
	s.Equal("Invalid message data", resp.GetString("message"))
	s.NotEmpty(resp.Data["errors"])

	list := s.makeRequest(c, "GET", "/api/messages", nil)
	s.Equal(http.StatusOK, list.Status)
	s.Empty(list.List())
}

func (s *APISuite) TestStatusUpdateRequiresStatus() {
	doctor, patient := s.client(), s.client()
	doctorID := s.register(doctor, "doctor@doctaba.com", "John", "Smith", "doctor")
	patientID := s.register(patient, "patient@doctaba.com", "Jane", "Doe", "patient")

	created := s.makeRequest(patient, "POST", "/api/appointments", map[string]interface{}{
		"patientId": patientID,
		"doctorId":  doctorID,
		"date":      "2025-01-30",
		"time":      "10:00 AM",
		"type":      "phone",
	})
	s.Require().Equal(http.StatusCreated, created.Status)
	s.Equal("upcoming", created.GetString("status"))
	path := fmt.Sprintf("/api/appointments/%d", created.GetID())

	missing := s.makeRequest(doctor, "PATCH", path, map[string]interface{}{})
	s.Equal(http.StatusBadRequest, missing.Status)
	s.Equal("Status is required", missing.GetString("message"))

	noBody := s.makeRequest(doctor, "PATCH", path, nil)
	s.Equal(http.StatusBadRequest, noBody.Status)
	s.Equal("Status is required", noBody.GetString("message"))

	updated := s.makeRequest(doctor, "PATCH", path, map[string]interface{}{"status": "completed"})
	s.Require().Equal(http.StatusOK, updated.Status)
	s.Equal("completed", updated.GetString("status"))

	fetched := s.makeRequest(patient, "GET", path, nil)
	s.Equal("completed", fetched.GetString("status"))
}

func (s *APISuite) TestLogoutInvalidatesSession() {
	c := s.client()
	s.register(c, "patient@doctaba.com", "Jane", "Doe", "patient")

	s.Equal(http.StatusOK, s.makeRequest(c, "GET", "/api/user", nil).Status)

	logout := s.makeRequest(c, "POST", "/api/logout", nil)
	s.Require().Equal(http.StatusOK, logout.Status)
	s.Equal(true, logout.Data["success"])

	s.Equal(http.StatusUnauthorized, s.makeRequest(c, "GET", "/api/user", nil).Status)

	login := s.makeRequest(c, "POST", "/api/login", map[string]interface{}{
		"email":    "patient@doctaba.com",
		"password": testPassword,
	})
	s.Require().Equal(http.StatusOK, login.Status)
	s.Equal("patient", login.GetString("userType"))
	s.Equal(http.StatusOK, s.makeRequest(c, "GET", "/api/user", nil).Status)
}

func (s *APISuite) TestLoginRejectsWrongPassword() {
	c := s.client()
	s.register(c, "patient@doctaba.com", "Jane", "Doe", "patient")

	other := s.client()
	resp := s.makeRequest(other, "POST", "/api/login", map[string]interface{}{
		"email":    "patient@doctaba.com",
		"password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, resp.Status)
	s.Equal("Invalid email or password", resp.GetString("message"))
	s.Equal(http.StatusUnauthorized, s.makeRequest(other, "GET", "/api/user", nil).Status)
}

func (s *APISuite) TestUsersListRedactsCredentials() {
	c := s.client()
	s.register(c, "doctor@doctaba.com", "John", "Smith", "doctor")
	s.register(s.client(), "patient@doctaba.com", "Jane", "Doe", "patient")

	resp := s.makeRequest(c, "GET", "/api/users", nil)
	s.Require().Equal(http.StatusOK, resp.Status)
	s.Len(resp.List(), 2)
	s.NotContains(string(resp.RawData), "password")
	s.NotContains(string(resp.RawData), "$2a$")
}

func (s *APISuite) TestDuplicateRegistration() {
	s.register(s.client(), "patient@doctaba.com", "Jane", "Doe", "patient")

	resp := s.makeRequest(s.client(), "POST", "/api/register", map[string]interface{}{
		"email":    "Patient@Doctaba.com",
		"password": testPassword,
	})
	s.Equal(http.StatusConflict, resp.Status)
	s.Equal("Email already registered", resp.GetString("message"))
}

func (s *APISuite) TestRegistrationPasswordBounds() {
	tooLong := s.makeRequest(s.client(), "POST", "/api/register", map[string]interface{}{
		"email":    "long@doctaba.com",
		"password": strings.Repeat("a", 80),
	})
	s.Equal(http.StatusBadRequest, tooLong.Status)
	s.Equal("Invalid registration data", tooLong.GetString("message"))
	s.Contains(string(tooLong.RawData), "must be at most 72 characters long")

	// the longest accepted password must still log in
	password := strings.Repeat("a", 72)
	created := s.makeRequest(s.client(), "POST", "/api/register", map[string]interface{}{
		"email":    "max@doctaba.com",
		"password": password,
	})
	s.Require().Equal(http.StatusCreated, created.Status)

	login := s.makeRequest(s.client(), "POST", "/api/login", map[string]interface{}{
		"email":    "max@doctaba.com",
		"password": password,
	})
	s.Equal(http.StatusOK, login.Status)
}

func (s *APISuite) TestWrongFieldTypeReportsFieldOnly() {
	c := s.client()
	s.register(c, "patient@doctaba.com", "Jane", "Doe", "patient")

	resp := s.makeRequest(c, "POST", "/api/appointments", map[string]interface{}{
		"patientId": "one",
		"doctorId":  2,
		"date":      "2025-01-30",
		"time":      "10:00 AM",
		"type":      "video",
	})
	s.Equal(http.StatusBadRequest, resp.Status)
	s.Equal("Invalid appointment data", resp.GetString("message"))
	s.JSONEq(`[{"field":"patientId","message":"has the wrong type"}]`, mustJSON(resp.Data["errors"]))
	s.NotContains(string(resp.RawData), "int64")
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func (s *APISuite) TestInvalidPathIDs() {
	c := s.client()
	s.register(c, "patient@doctaba.com", "Jane", "Doe", "patient")

	resp := s.makeRequest(c, "GET", "/api/appointments/abc", nil)
	s.Equal(http.StatusBadRequest, resp.Status)
	s.Equal("Invalid appointment id", resp.GetString("message"))

	resp = s.makeRequest(c, "PATCH", "/api/messages/0/read", nil)
	s.Equal(http.StatusBadRequest, resp.Status)
	s.Equal("Invalid message id", resp.GetString("message"))

	resp = s.makeRequest(c, "GET", "/api/appointments/999", nil)
	s.Equal(http.StatusNotFound, resp.Status)
	s.Equal("Appointment not found", resp.GetString("message"))
}

func (s *APISuite) TestMessagingFlow() {
	doctor, patient := s.client(), s.client()
	doctorID := s.register(doctor, "doctor@doctaba.com", "John", "Smith", "doctor")
	patientID := s.register(patient, "patient@doctaba.com", "Jane", "Doe", "patient")

	sent := s.makeRequest(patient, "POST", "/api/messages", map[string]interface{}{
		"senderId":   patientID,
		"receiverId": doctorID,
		"content":    "Hello doctor",
	})
	s.Require().Equal(http.StatusCreated, sent.Status)
	s.Equal(false, sent.Data["read"])

	summaries := s.makeRequest(doctor, "GET", "/api/conversations", nil)
	s.Require().Equal(http.StatusOK, summaries.Status)
	rows := summaries.List()
	s.Require().Len(rows, 1)
	s.Equal(float64(patientID), rows[0]["userId"])
	s.Equal(float64(1), rows[0]["unreadCount"])

	read := s.makeRequest(doctor, "PATCH", fmt.Sprintf("/api/messages/%d/read", sent.GetID()), nil)
	s.Equal(http.StatusOK, read.Status)
	s.Equal(true, read.Data["success"])

	ab := s.makeRequest(doctor, "GET", fmt.Sprintf("/api/conversations/%d/%d", doctorID, patientID), nil)
	ba := s.makeRequest(doctor, "GET", fmt.Sprintf("/api/conversations/%d/%d", patientID, doctorID), nil)
	s.Require().Len(ab.List(), 1)
	s.Equal(ab.List(), ba.List())
	s.Equal(true, ab.List()[0]["read"])
}

func (s *APISuite) TestDocuments() {
	c := s.client()
	userID := s.register(c, "patient@doctaba.com", "Jane", "Doe", "patient")

	bad := s.makeRequest(c, "POST", "/api/documents", map[string]interface{}{
		"userId": userID,
		"title":  "Blood panel",
		"type":   "x-ray",
		"url":    "/documents/blood-panel.pdf",
	})
	s.Equal(http.StatusBadRequest, bad.Status)
	s.Equal("Invalid document data", bad.GetString("message"))

	created := s.makeRequest(c, "POST", "/api/documents", map[string]interface{}{
		"userId": userID,
		"title":  "Blood panel",
		"type":   "lab_result",
		"url":    "/documents/blood-panel.pdf",
	})
	s.Require().Equal(http.StatusCreated, created.Status)

	list := s.makeRequest(c, "GET", "/api/documents", nil)
	s.Require().Len(list.List(), 1)
	s.Equal("Blood panel", list.List()[0]["title"])
}

func (s *APISuite) TestVideoRoom() {
	doctor := s.client()
	doctorID := s.register(doctor, "doctor@doctaba.com", "John", "Smith", "doctor")
	patientID := s.register(s.client(), "patient@doctaba.com", "Jane", "Doe", "patient")

	created := s.makeRequest(doctor, "POST", "/api/appointments", map[string]interface{}{
		"patientId": patientID,
		"doctorId":  doctorID,
		"date":      "2025-01-30",
		"time":      "10:00 AM",
		"type":      "video",
	})
	s.Require().Equal(http.StatusCreated, created.Status)

	room := s.makeRequest(doctor, "GET", fmt.Sprintf("/api/appointments/%d/video-room", created.GetID()), nil)
	s.Require().Equal(http.StatusOK, room.Status)
	s.Equal(fmt.Sprintf("doctaba-appointment-%d", created.GetID()), room.GetString("roomName"))
	s.Equal("meet.jit.si", room.GetString("domain"))

	missing := s.makeRequest(doctor, "GET", "/api/appointments/404/video-room", nil)
	s.Equal(http.StatusNotFound, missing.Status)
}

func (s *APISuite) TestExternalLogin() {
	token, err := s.identity.Sign("ext@doctaba.com", "Ext", "User", time.Minute)
	s.Require().NoError(err)

	c := s.client()
	resp := s.makeRequest(c, "POST", "/api/login/external", map[string]interface{}{"token": token})
	s.Require().Equal(http.StatusOK, resp.Status, string(resp.RawData))
	s.Equal("patient", resp.GetString("userType"))
	s.Equal(http.StatusOK, s.makeRequest(c, "GET", "/api/user", nil).Status)

	bad := s.makeRequest(s.client(), "POST", "/api/login/external", map[string]interface{}{"token": "not-a-jwt"})
	s.Equal(http.StatusUnauthorized, bad.Status)

	// external identities have no local password
	login := s.makeRequest(s.client(), "POST", "/api/login", map[string]interface{}{
		"email":    "ext@doctaba.com",
		"password": testPassword,
	})
	s.Equal(http.StatusUnauthorized, login.Status)
}

func (s *APISuite) TestHealthAndMetrics() {
	c := s.client()

	s.Equal(http.StatusOK, s.makeRequest(c, "GET", "/health/live", nil).Status)
	s.Equal(http.StatusOK, s.makeRequest(c, "GET", "/health/ready", nil).Status)

	metricsResp := s.makeRequest(c, "GET", "/metrics", nil)
	s.Require().Equal(http.StatusOK, metricsResp.Status)
	s.True(strings.Contains(string(metricsResp.RawData), "http_http_requests_total"))
}

func (s *APISuite) TestSecurityHeaders() {
	req, err := http.NewRequest("GET", s.server.URL+"/health/live", nil)
	s.Require().NoError(err)
	resp, err := s.client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal("no-store", resp.Header.Get("Cache-Control"))
	s.Equal("nosniff", resp.Header.Get("X-Content-Type-Options"))
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}
