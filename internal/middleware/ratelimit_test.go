package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request inside the window should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients have their own budget")
	}
}

func TestRateLimitResponds429(t *testing.T) {
	h := RateLimit(1, time.Minute)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	start := time.Now()

	if ok, _ := rl.take("k", start); !ok {
		t.Fatal("first request should pass")
	}

	ok, retry := rl.take("k", start.Add(20*time.Second))
	if ok {
		t.Fatal("second request in the window should be limited")
	}
	if retry != 40*time.Second {
		t.Errorf("retry after = %v, want 40s", retry)
	}

	if ok, _ := rl.take("k", start.Add(time.Minute)); !ok {
		t.Error("request after the window should pass")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:5000", "198.51.100.4"},
		{"socket peer", nil, "192.0.2.7:41000", "192.0.2.7"},
		{"ipv6 peer", nil, "[2001:db8::1]:41000", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
