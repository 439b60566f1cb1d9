package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cabin-reservation/internal/config"
)

func newTestContext() echo.Context {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    return e.NewContext(req, httptest.NewRecorder())
}

func TestUserID(t *testing.T) {
    c := newTestContext()
    if got := userID(c); got != "guest" {
        t.Errorf("unauthenticated userID = %q, want guest", got)
    }

    // JWTAuth stores claims["sub"], which decodes to float64.
    c.Set("user_id", float64(7))
    if got := userID(c); got != "7" {
        t.Errorf("float64 claim userID = %q, want 7", got)
    }

    c.Set("user_id", "42")
    if got := userID(c); got != "42" {
        t.Errorf("string claim userID = %q, want 42", got)
    }

    c.Set("user_id", uint64(9))
    if got := userID(c); got != "9" {
        t.Errorf("uint64 claim userID = %q, want 9", got)
    }

    c.Set("user_id", "")
    if got := userID(c); got != "guest" {
        t.Errorf("empty claim userID = %q, want guest", got)
    }
}

func TestBuildRateKeyPerUser(t *testing.T) {
    cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user"}

    c := newTestContext()
    c.Set("user_id", float64(7))
    key := buildRateKey(cfg, c)
    if key != "rl:ip:192.0.2.1:user:7" {
        t.Errorf("authenticated key = %q", key)
    }

    // Two users behind the same address get independent buckets.
    c.Set("user_id", float64(8))
    if other := buildRateKey(cfg, c); other == key {
        t.Errorf("distinct users share the rate key %q", other)
    }

    anon := newTestContext()
    if got := buildRateKey(cfg, anon); got != "rl:ip:192.0.2.1:user:guest" {
        t.Errorf("anonymous key = %q", got)
    }
}
