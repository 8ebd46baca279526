package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestCheckOrigin verifies the allow-list behavior for browser origins and
// the pass-through for clients that send no Origin header.
func TestCheckOrigin(t *testing.T) {
	SetConfig(&Config{AllowedOrigins: []string{"https://game.example.com"}})
	defer SetConfig(nil)

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{"allowed origin", "https://game.example.com", true},
		{"allowed origin different case", "HTTPS://GAME.EXAMPLE.COM", true},
		{"disallowed origin", "https://evil.example.com", false},
		{"no origin header", "", true},
		{"malformed origin", "::://bad", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := checkOrigin(req); got != tc.want {
			t.Errorf("%s: checkOrigin = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestCheckOriginAllowAll verifies the wildcard configuration admits any
// origin.
func TestCheckOriginAllowAll(t *testing.T) {
	SetConfig(&Config{AllowedOrigins: []string{"*"}})
	defer SetConfig(nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	if !checkOrigin(req) {
		t.Error("Wildcard config rejected an origin")
	}
}
