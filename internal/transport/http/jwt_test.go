package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
)

func makeJWT(t *testing.T, secret, aud, iss, sub, name string, ttl time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(ttl).Unix(),
	}
	if aud != "" {
		claims["aud"] = aud
	}
	if iss != "" {
		claims["iss"] = iss
	}
	if name != "" {
		claims["name"] = name
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

const (
	testSecret   = "testsecret"
	testAudience = "relay"
	testIssuer   = "creds"
)

func jwtTestConfig() config.Config {
	cfg := testConfig()
	cfg.JWTSecret = testSecret
	cfg.JWTAudience = testAudience
	cfg.JWTIssuer = testIssuer
	return cfg
}

func TestWebSocketRequiresToken(t *testing.T) {
	secret, aud, iss := testSecret, testAudience, testIssuer
	ts, _ := startTestServer(t, jwtTestConfig())
	ctx := testContext(t)

	_, resp, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err == nil {
		t.Fatalf("expected dial without token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	expired := makeJWT(t, secret, aud, iss, "42", "alice", -time.Minute)
	if _, _, err := websocket.Dial(ctx, wsURL(ts)+"?token="+expired, nil); err == nil {
		t.Fatalf("expected dial with expired token to fail")
	}
}

func TestWebSocketAcceptsQueryToken(t *testing.T) {
	secret, aud, iss := testSecret, testAudience, testIssuer
	ts, _ := startTestServer(t, jwtTestConfig())
	ctx := testContext(t)

	token := makeJWT(t, secret, aud, iss, "42", "alice", time.Hour)
	alice := dial(t, ctx, wsURL(ts)+"?token="+token)
	if code := alice.createRoom(); code == "" {
		t.Fatalf("expected room code")
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	secret, aud, iss := testSecret, testAudience, testIssuer
	ts, _ := startTestServer(t, jwtTestConfig())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + makeJWT(t, "other", aud, iss, "42", "", time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + makeJWT(t, secret, aud, iss, "42", "", time.Hour), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.Config.Handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequireTokenWrapsPlainHandlers(t *testing.T) {
	verifier := auth.NewVerifier(auth.JWTConfig{Secret: []byte(testSecret), Issuer: testIssuer, Audience: testAudience})
	logger := zerolog.Nop()

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireToken(verifier, &logger, next)

	tests := []struct {
		name   string
		target string
		header string
		want   int
		who    string
	}{
		{"missing", "/ws", "", http.StatusUnauthorized, ""},
		{"malformed header", "/ws", "Basic abc", http.StatusUnauthorized, ""},
		{"query token", "/ws?token=" + makeJWT(t, testSecret, testAudience, testIssuer, "7", "bob", time.Hour), "", http.StatusNoContent, "bob"},
		{"bearer falls back to subject", "/ws", "Bearer " + makeJWT(t, testSecret, testAudience, testIssuer, "7", "", time.Hour), http.StatusNoContent, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if seen != tt.who {
				t.Fatalf("expected identity %q, got %q", tt.who, seen)
			}
		})
	}

	if RequireToken(nil, &logger, next) == nil {
		t.Fatalf("nil verifier should pass requests through")
	}
}
