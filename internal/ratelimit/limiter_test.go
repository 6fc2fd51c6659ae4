package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestCheckLogin_MaxAttempts(t *testing.T) {
	clock := newFakeClock()
	limiter := New(&Config{
		LoginMaxAttempts:  3,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "coach@example.com"
	ip := "192.168.1.1"

	for i := 0; i < 2; i++ {
		if result := limiter.CheckLogin(identifier, ip); !result.Allowed {
			t.Fatalf("Attempt %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		if limiter.RecordLoginFailure(identifier, ip) {
			t.Fatalf("Attempt %d should not trigger lockout", i+1)
		}
	}

	if result := limiter.CheckLogin(identifier, ip); !result.Allowed {
		t.Fatalf("Third attempt should be allowed, got blocked: %s", result.Reason)
	}
	if !limiter.RecordLoginFailure(identifier, ip) {
		t.Fatal("Third failure should trigger lockout")
	}

	clock.Advance(time.Minute)
	result := limiter.CheckLogin(identifier, ip)
	if result.Allowed {
		t.Fatal("Locked out identifier should be blocked")
	}
	if result.Reason != "lockout" {
		t.Errorf("Expected reason 'lockout', got '%s'", result.Reason)
	}
	if result.RetryAfter != 4*time.Minute {
		t.Errorf("Expected RetryAfter 4m, got %v", result.RetryAfter)
	}

	// After lockout expires, should be allowed again
	clock.Advance(4 * time.Minute)
	if result := limiter.CheckLogin(identifier, ip); !result.Allowed {
		t.Errorf("Request after lockout should be allowed, got blocked: %s", result.Reason)
	}
	if limiter.RecordLoginFailure(identifier, ip) {
		t.Error("First failure after an expired lockout should start a new window")
	}
}

func TestCheckLogin_ResetOnSuccess(t *testing.T) {
	clock := newFakeClock()
	limiter := New(&Config{
		LoginMaxAttempts:  2,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "coach@example.com"
	ip := "192.168.1.1"

	limiter.RecordLoginFailure(identifier, ip)
	limiter.RecordLoginSuccess(identifier, ip)

	if limiter.RecordLoginFailure(identifier, ip) {
		t.Error("Counter should have been reset by a successful login")
	}
	if result := limiter.CheckLogin(identifier, ip); !result.Allowed {
		t.Errorf("Should be allowed after reset, got blocked: %s", result.Reason)
	}
}

func TestCheckLogin_IdentifierNormalization(t *testing.T) {
	clock := newFakeClock()
	limiter := New(&Config{
		LoginMaxAttempts:  1,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})
	defer limiter.Close()

	limiter.RecordLoginFailure("Coach@Example.com", "192.168.1.1")

	result := limiter.CheckLogin("  coach@example.COM ", "192.168.1.2")
	if result.Allowed {
		t.Error("Case and whitespace variants should share one counter")
	}
}

func TestCheckLogin_IPLimit(t *testing.T) {
	clock := newFakeClock()
	limiter := New(&Config{
		LoginMaxAttempts:  100,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 3,
		Clock:             clock,
	})
	defer limiter.Close()

	ip := "192.168.1.1"
	identifiers := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, id := range identifiers {
		limiter.RecordLoginFailure(id, ip)
	}

	result := limiter.CheckLogin("d@example.com", ip)
	if result.Allowed {
		t.Fatal("Fourth attempt from same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}

	// Other IPs are unaffected
	if result := limiter.CheckLogin("d@example.com", "192.168.1.2"); !result.Allowed {
		t.Errorf("Different IP should be allowed, got blocked: %s", result.Reason)
	}

	clock.Advance(time.Hour)
	if result := limiter.CheckLogin("d@example.com", ip); !result.Allowed {
		t.Errorf("IP budget should reset after an hour, got blocked: %s", result.Reason)
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("POST", "/api/v1/auth/login", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"JOHN.DOE@EXAMPLE.COM", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***"},
		{"", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeIdentifier(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	if limiter.config.LoginMaxAttempts != 5 {
		t.Errorf("LoginMaxAttempts = %d, want 5", limiter.config.LoginMaxAttempts)
	}
	if limiter.config.LoginLockout != 15*time.Minute {
		t.Errorf("LoginLockout = %v, want 15m", limiter.config.LoginLockout)
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)

	// Trigger cleanup goroutine
	limiter.CheckLogin("test@example.com", "1.2.3.4")

	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Close() should not hang")
	}
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(&Config{
		LoginMaxAttempts:  1000,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 100000,
		Clock:             newFakeClock(),
	})
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if limiter.CheckLogin("user@example.com", "192.168.1.1").Allowed {
					limiter.RecordLoginFailure("user@example.com", "192.168.1.1")
				}
			}
		}()
	}
	wg.Wait()
}
