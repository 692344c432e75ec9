package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/config"
	"github.com/atlas-pay/atlas_pay/internal/middleware"
	"github.com/atlas-pay/atlas_pay/internal/user"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Minute}
	svc := NewService(cfg)

	token, err := svc.IssueToken(user.User{ID: 7, Email: "alice@example.com", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	if token.ExpiresIn <= 0 || token.ExpiresIn > 60 {
		t.Fatalf("unexpected expiry %d", token.ExpiresIn)
	}

	app := fiber.New()
	app.Get("/whoami", middleware.JWTAuth(cfg.JWTSecret), func(c *fiber.Ctx) error {
		if middleware.UserIDFromCtx(c) != 7 {
			t.Errorf("expected user id 7, got %d", middleware.UserIDFromCtx(c))
		}
		return c.SendString(middleware.ActorFromCtx(c))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.AccessToken)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "alice@example.com" {
		t.Fatalf("expected actor email, got %s", body)
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	svc := NewService(config.Config{JWTSecret: "secret-a", AccessTokenTTL: time.Minute})
	token, err := svc.IssueToken(user.User{ID: 1, Email: "a@b.com", Role: user.RoleUser})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	app := fiber.New()
	app.Get("/whoami", middleware.JWTAuth("secret-b"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.AccessToken)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	// Missing header is rejected the same way.
	bare := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	resp, err = app.Test(bare)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", resp.StatusCode)
	}
}
