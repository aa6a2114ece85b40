package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"microblog-account-service/internal/adapter/gin/handler"
	"microblog-account-service/internal/adapter/repository/postgres"
	"microblog-account-service/internal/usecase/auth"
	"microblog-account-service/pkg/logger"
	"microblog-account-service/pkg/security"
)

type RouterSuite struct {
	suite.Suite
	router *httptest.Server
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	log := zaptest.NewLogger(s.T())
	repo := postgres.NewUserRepoPG(db, log)
	s.Require().NoError(repo.AutoMigrate())

	uc := auth.New(repo, security.NewBcryptHasher(bcrypt.MinCost), log)
	engine := SetupRouter(handler.NewAuthHandler(uc, log), Options{
		ServiceName: "microblog-account-service",
		Registry:    prometheus.NewRegistry(),
	}, log)

	s.router = httptest.NewServer(engine)
	s.T().Cleanup(func() {
		s.router.Close()
		_ = sqlDB.Close()
	})
}

func (s *RouterSuite) do(req *http.Request) (*http.Response, []byte) {
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	s.Require().NoError(err)
	return resp, buf.Bytes()
}

func (s *RouterSuite) signup(username, email, password string) (*http.Response, []byte) {
	body, _ := json.Marshal(map[string]string{"username": username, "email": email, "password": password})
	req, err := http.NewRequest(http.MethodPost, s.router.URL+"/signup", bytes.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *RouterSuite) login(username, password string) (*http.Response, []byte) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequest(http.MethodPost, s.router.URL+"/token", strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *RouterSuite) get(path, token string) (*http.Response, []byte) {
	req, err := http.NewRequest(http.MethodGet, s.router.URL+path, nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *RouterSuite) TestAccountScenario() {
	resp, body := s.signup("alice", "a@x.io", "pw1")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var created handler.ProfileResponse
	s.Require().NoError(json.Unmarshal(body, &created))
	s.Equal("alice", created.Username)
	s.Equal("a@x.io", created.Email)
	s.Len(created.ID, 24)

	resp, body = s.signup("alice", "other@x.io", "pw2")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.JSONEq(`{"error":"duplicate_username","detail":"Username already exists"}`, string(body))

	resp, body = s.login("alice", "pw1")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var token handler.TokenResponse
	s.Require().NoError(json.Unmarshal(body, &token))
	s.Equal(created.ID, token.AccessToken)
	s.Equal("bearer", token.TokenType)

	resp, body = s.get("/profile/"+token.AccessToken, token.AccessToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var profile handler.ProfileResponse
	s.Require().NoError(json.Unmarshal(body, &profile))
	s.Equal(created, profile)

	resp, _ = s.get("/profile/"+token.AccessToken, "000000000000000000000000")
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestLoginFailuresAreIndistinguishable() {
	resp, _ := s.signup("alice", "a@x.io", "pw1")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	wrongResp, wrongBody := s.login("alice", "nope")
	unknownResp, unknownBody := s.login("mallory", "pw1")

	s.Equal(http.StatusBadRequest, wrongResp.StatusCode)
	s.Equal(wrongResp.StatusCode, unknownResp.StatusCode)
	s.JSONEq(string(wrongBody), string(unknownBody))
}

func (s *RouterSuite) TestEmptyCredentialsAreAccepted() {
	resp, body := s.signup("bob", "bob@x.com", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var created handler.ProfileResponse
	s.Require().NoError(json.Unmarshal(body, &created))

	resp, body = s.login("bob", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))
	var token handler.TokenResponse
	s.Require().NoError(json.Unmarshal(body, &token))
	s.Equal(created.ID, token.AccessToken)

	resp, _ = s.login("bob", "x")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, body = s.signup("", "e@x.com", "pw")
	s.Equal(http.StatusOK, resp.StatusCode, string(body))
}

func (s *RouterSuite) TestValidationDetailIsReadable() {
	resp, body := s.signup("alice", "not-an-email", "pw")
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.JSONEq(`{"error":"validation_error","detail":"Email must be a valid email"}`, string(body))
}

func (s *RouterSuite) TestUppercaseIDIsNotFound() {
	resp, body := s.signup("alice", "a@x.io", "pw1")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var created handler.ProfileResponse
	s.Require().NoError(json.Unmarshal(body, &created))

	upper := strings.ToUpper(created.ID)
	resp, _ = s.get("/profile/"+upper, upper)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestPasswordLengthLimit() {
	resp, _ := s.signup("bob", "b@x.io", strings.Repeat("é", 72))
	s.Equal(http.StatusBadRequest, resp.StatusCode, "72 two-byte characters exceed the bcrypt input limit")

	resp, body := s.signup("carol", "c@x.io", strings.Repeat("a", 73))
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(string(body), "password_too_long")

	resp, _ = s.signup("dave", "d@x.io", strings.Repeat("a", 72))
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestProfileOfUnknownUser() {
	resp, _ := s.get("/profile/65a1f0c2e4b0a1b2c3d4e5f6", "65a1f0c2e4b0a1b2c3d4e5f6")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.get("/profile/not-an-id", "not-an-id")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.get("/profile/65a1f0c2e4b0a1b2c3d4e5f6", "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("Bearer", resp.Header.Get("WWW-Authenticate"))
}

func (s *RouterSuite) TestAllUsersOmitsSecrets() {
	resp, body := s.get("/all_users", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq("[]", string(body))

	for _, name := range []string{"alice", "bob"} {
		r, _ := s.signup(name, name+"@x.io", "pw")
		s.Require().Equal(http.StatusOK, r.StatusCode)
	}

	resp, body = s.get("/all_users", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var users []map[string]any
	s.Require().NoError(json.Unmarshal(body, &users))
	s.Len(users, 2)

	names := make([]string, 0, len(users))
	for _, u := range users {
		s.ElementsMatch([]string{"id", "username"}, keys(u))
		names = append(names, u["username"].(string))
	}
	s.ElementsMatch([]string{"alice", "bob"}, names)
}

func (s *RouterSuite) TestHealthMetricsAndRequestID() {
	resp, body := s.get("/health", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"status":"healthy","service":"microblog-account-service"}`, string(body))
	s.NotEmpty(resp.Header.Get(logger.RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, s.router.URL+"/health", nil)
	s.Require().NoError(err)
	req.Header.Set(logger.RequestIDHeader, "req-42")
	resp, _ = s.do(req)
	s.Equal("req-42", resp.Header.Get(logger.RequestIDHeader))

	resp, body = s.get("/metrics", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), `microblog_http_requests_total{method="GET",route="/health",status="200"} 2`)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
