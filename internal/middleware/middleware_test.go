package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

var testJWT = JWTConfig{Secret: "s3cret", Issuer: "scout", ExpiresIn: time.Hour}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(domain.AdminContext{Subject: "ops", Name: "Ops", Role: "admin"}, testJWT)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ValidateJWT(token, testJWT)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWT_Rejections(t *testing.T) {
	expired, _ := GenerateJWT(domain.AdminContext{Subject: "ops"}, JWTConfig{Secret: "s3cret", Issuer: "scout", ExpiresIn: -time.Minute})
	otherIssuer, _ := GenerateJWT(domain.AdminContext{Subject: "ops"}, JWTConfig{Secret: "s3cret", Issuer: "elsewhere", ExpiresIn: time.Hour})
	otherSecret, _ := GenerateJWT(domain.AdminContext{Subject: "ops"}, JWTConfig{Secret: "nope", Issuer: "scout", ExpiresIn: time.Hour})

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, port.ErrTokenExpired},
		{"issuer", otherIssuer, port.ErrTokenInvalid},
		{"signature", otherSecret, port.ErrTokenInvalid},
		{"garbage", "a.b.c", port.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateJWT(tt.token, testJWT); !errors.Is(err, tt.want) {
				t.Errorf("ValidateJWT() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", JWTMiddleware(testJWT), func(c fiber.Ctx) error {
		return c.SendString(GetAdminContext(c).Subject)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no token: status = %d", resp.StatusCode)
	}

	token, _ := GenerateJWT(domain.AdminContext{Subject: "ops"}, testJWT)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("valid token: status = %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/admin?token="+token, nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("query token: status = %d", resp.StatusCode)
	}
}

type recordingWriter struct {
	mu      sync.Mutex
	entries []domain.AuditLog
	done    chan struct{}
}

func (w *recordingWriter) WriteAudit(_ context.Context, e domain.AuditLog) error {
	w.mu.Lock()
	w.entries = append(w.entries, e)
	w.mu.Unlock()
	w.done <- struct{}{}
	return nil
}

func TestAuditMiddleware(t *testing.T) {
	w := &recordingWriter{done: make(chan struct{}, 1)}
	app := fiber.New()
	app.Use(AuditMiddleware(w))
	app.Get("/api/health", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	if _, err := app.Test(httptest.NewRequest("GET", "/api/health", nil)); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was not written")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.entries[0]
	if e.Action != domain.AuditActionHTTPRequest || e.ResourceID != "/api/health" || e.Actor != "anonymous" {
		t.Errorf("entry = %+v", e)
	}
}
