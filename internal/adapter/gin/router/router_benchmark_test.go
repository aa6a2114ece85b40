package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"microblog-account-service/internal/adapter/gin/handler"
	"microblog-account-service/internal/adapter/repository/postgres"
	"microblog-account-service/internal/usecase/auth"
	"microblog-account-service/pkg/security"
)

func setupBenchmarkRouter(b *testing.B) (http.Handler, string) {
	b.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		b.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		b.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	b.Cleanup(func() { _ = sqlDB.Close() })

	log := zap.NewNop()
	repo := postgres.NewUserRepoPG(db, log)
	if err := repo.AutoMigrate(); err != nil {
		b.Fatal(err)
	}
	uc := auth.New(repo, security.NewBcryptHasher(bcrypt.MinCost), log)

	var firstID string
	for i := 0; i < 100; i++ {
		p, err := uc.Signup(b.Context(), auth.SignupRequest{
			Username: fmt.Sprintf("user%03d", i),
			Email:    fmt.Sprintf("user%03d@x.io", i),
			Password: "pw",
		})
		if err != nil {
			b.Fatal(err)
		}
		if i == 0 {
			firstID = p.ID
		}
	}
	return SetupRouter(handler.NewAuthHandler(uc, log), Options{}, log), firstID
}

func BenchmarkProfile(b *testing.B) {
	r, id := setupBenchmarkRouter(b)

	for b.Loop() {
		req := httptest.NewRequest(http.MethodGet, "/profile/"+id, nil)
		req.Header.Set("Authorization", "Bearer "+id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}

func BenchmarkAllUsers(b *testing.B) {
	r, _ := setupBenchmarkRouter(b)

	for b.Loop() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/all_users", nil))
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}
