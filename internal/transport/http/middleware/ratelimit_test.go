package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrdesk/internal/domain/auth"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

type limitedRequest struct {
	method string
	path   string
	ip     string
	user   *auth.UserContext
	body   string
}

func send(h http.Handler, lr limitedRequest) *httptest.ResponseRecorder {
	var body io.Reader
	if lr.body != "" {
		body = strings.NewReader(lr.body)
	}
	req := httptest.NewRequest(lr.method, lr.path, body)
	if lr.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if lr.user != nil {
		req = req.WithContext(WithUser(context.Background(), *lr.user))
	}
	req.RemoteAddr = lr.ip + ":4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitKeys(t *testing.T) {
	hr := &auth.UserContext{TenantID: "tenant-1", UserID: "hr-1"}
	cases := []struct {
		name   string
		first  limitedRequest
		second limitedRequest
		want   int
	}{
		{
			name:   "same user from two addresses",
			first:  limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "198.51.100.11", user: hr},
			second: limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "198.51.100.12", user: hr},
			want:   http.StatusTooManyRequests,
		},
		{
			name:   "anonymous callers share their address",
			first:  limitedRequest{method: http.MethodPost, path: "/api/v1/auth/login", ip: "203.0.113.10", body: `{"email":"a@example.com"}`},
			second: limitedRequest{method: http.MethodPost, path: "/api/v1/auth/login", ip: "203.0.113.10", body: `{"email":"b@example.com"}`},
			want:   http.StatusTooManyRequests,
		},
		{
			name:   "different users are independent",
			first:  limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "198.51.100.11", user: hr},
			second: limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "198.51.100.11", user: &auth.UserContext{TenantID: "tenant-1", UserID: "hr-2"}},
			want:   http.StatusNoContent,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limited := RateLimit(1, time.Minute)(noContent)
			if rec := send(limited, tc.first); rec.Code != http.StatusNoContent {
				t.Fatalf("first request: got %d", rec.Code)
			}
			if rec := send(limited, tc.second); rec.Code != tc.want {
				t.Fatalf("second request: got %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(noContent)
	lr := limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "192.0.2.20"}

	if rec := send(limited, lr); rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", rec.Code)
	}
	if rec := send(limited, lr); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d", rec.Code)
	}
	time.Sleep(50 * time.Millisecond)
	if rec := send(limited, lr); rec.Code != http.StatusNoContent {
		t.Fatalf("request after the window: got %d", rec.Code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)
	lr := limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "192.0.2.30"}

	first := send(limited, lr)
	if first.Header().Get("X-RateLimit-Limit") != "1" || first.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected headers on first response: %v", first.Header())
	}
	if first.Header().Get("Retry-After") != "" {
		t.Fatal("Retry-After set on an admitted request")
	}

	rec := send(limited, lr)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	}
	if !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRateLimitExemptPaths(t *testing.T) {
	limited := RateLimit(1, time.Minute, ExemptPaths("/healthz", "/readyz"))(noContent)

	for i := 0; i < 3; i++ {
		for _, path := range []string{"/healthz", "/readyz"} {
			rec := send(limited, limitedRequest{method: http.MethodGet, path: path, ip: "192.0.2.40"})
			if rec.Code != http.StatusNoContent {
				t.Fatalf("%s request %d: got %d", path, i+1, rec.Code)
			}
			if rec.Header().Get("X-RateLimit-Limit") != "" {
				t.Fatalf("%s should not carry rate headers", path)
			}
		}
	}

	apiReq := limitedRequest{method: http.MethodGet, path: "/api/v1/compensation", ip: "192.0.2.40"}
	if rec := send(limited, apiReq); rec.Code != http.StatusNoContent {
		t.Fatalf("exempt traffic consumed the budget: got %d", rec.Code)
	}
	if rec := send(limited, apiReq); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected api traffic to be limited, got %d", rec.Code)
	}
}

func TestSensitiveLimitIgnoresReads(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)
	hr := &auth.UserContext{TenantID: "tenant-1", UserID: "hr-1"}

	for i := 0; i < 6; i++ {
		for _, path := range []string{"/api/v1/compensation", "/api/v1/employees/e1/compensation", "/api/v1/employees/e1/compensation/history"} {
			rec := send(limited, limitedRequest{method: http.MethodGet, path: path, ip: "198.51.100.40", user: hr})
			if rec.Code != http.StatusNoContent {
				t.Fatalf("GET %s request %d: got %d", path, i+1, rec.Code)
			}
		}
	}
}

func TestSensitiveLimitPerActor(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)
	hr := &auth.UserContext{TenantID: "tenant-1", UserID: "hr-1"}

	// Distinct targets so only the actor budget applies.
	codes := []int{}
	for _, id := range []string{"e1", "e2", "e3"} {
		rec := send(limited, limitedRequest{method: http.MethodPut, path: "/api/v1/employees/" + id + "/compensation", ip: "198.51.100.41", user: hr})
		codes = append(codes, rec.Code)
	}
	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("write %d: got %d, want %d", i+1, codes[i], want[i])
		}
	}
}

func TestSensitiveLimitPerTargetEmployee(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)
	path := "/api/v1/employees/e1/compensation"

	for i, id := range []string{"hr-1", "hr-2"} {
		user := &auth.UserContext{TenantID: "tenant-1", UserID: id}
		rec := send(limited, limitedRequest{method: http.MethodPost, path: path, ip: "198.51.100.50", user: user})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("write %d: got %d", i+1, rec.Code)
		}
	}

	third := send(limited, limitedRequest{method: http.MethodPut, path: path, ip: "198.51.100.51", user: &auth.UserContext{TenantID: "tenant-1", UserID: "hr-3"}})
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the employee budget to be spent, got %d", third.Code)
	}

	// Same employee id in another tenant is a different record.
	other := send(limited, limitedRequest{method: http.MethodPut, path: path, ip: "198.51.100.51", user: &auth.UserContext{TenantID: "tenant-2", UserID: "hr-9"}})
	if other.Code != http.StatusNoContent {
		t.Fatalf("expected other tenant to pass, got %d", other.Code)
	}
}

func TestSensitiveLimitLoginByEmail(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), "@example.com") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	first := send(limited, limitedRequest{method: http.MethodPost, path: "/api/v1/auth/login", ip: "203.0.113.1", body: `{"email":"Victim@example.com","password":"x"}`})
	if first.Code != http.StatusNoContent {
		t.Fatalf("first login: got %d (body must reach the handler intact)", first.Code)
	}
	second := send(limited, limitedRequest{method: http.MethodPost, path: "/api/v1/auth/login", ip: "203.0.113.2", body: `{"email":"victim@example.com","password":"y"}`})
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the email budget to apply across addresses, got %d", second.Code)
	}
}

func TestSensitiveLimitPreviewPerActor(t *testing.T) {
	limited := SensitiveMutationRateLimit(2, time.Minute)(noContent)
	hr := &auth.UserContext{TenantID: "tenant-1", UserID: "hr-1"}
	lr := limitedRequest{method: http.MethodPost, path: "/api/v1/compensation/preview", ip: "198.51.100.60", user: hr, body: `{}`}

	for i := 0; i < 2; i++ {
		if rec := send(limited, lr); rec.Code != http.StatusNoContent {
			t.Fatalf("preview %d: got %d", i+1, rec.Code)
		}
	}
	if rec := send(limited, lr); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected preview budget to be spent, got %d", rec.Code)
	}
}

func TestWindowCounterDropsExpiredKeys(t *testing.T) {
	c := newWindowCounter(5, time.Minute, clientKey)
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	c.take("ip:a", start)
	c.take("ip:b", start)
	if c.size() != 2 {
		t.Fatalf("expected 2 keys, got %d", c.size())
	}

	d := c.take("ip:c", start.Add(2*time.Minute))
	if !d.allowed || d.remaining != 4 {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if c.size() != 1 {
		t.Fatalf("expected expired keys to be dropped, got %d", c.size())
	}
}
