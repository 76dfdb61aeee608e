package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/shared"
)

const maxPeekBytes = 64 * 1024

type rateKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimitSettings)

type rateLimitSettings struct {
	exempt map[string]struct{}
}

// ExemptPaths lets health and metrics endpoints bypass the limiter.
func ExemptPaths(paths ...string) RateLimitOption {
	return func(s *rateLimitSettings) {
		for _, p := range paths {
			s.exempt[p] = struct{}{}
		}
	}
}

// windowCounter is a fixed-window counter per key. Expired windows are
// dropped once per window so idle clients do not accumulate.
type windowCounter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	keyFn     rateKeyFunc
	counts    map[string]*windowCount
	nextSweep time.Time
}

type windowCount struct {
	hits  int
	reset time.Time
}

type decision struct {
	allowed   bool
	remaining int
	reset     time.Duration
}

func newWindowCounter(limit int, window time.Duration, keyFn rateKeyFunc) *windowCounter {
	return &windowCounter{
		limit:  limit,
		window: window,
		keyFn:  keyFn,
		counts: map[string]*windowCount{},
	}
}

func (c *windowCounter) take(key string, now time.Time) decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.After(c.nextSweep) {
		for k, wc := range c.counts {
			if now.After(wc.reset) {
				delete(c.counts, k)
			}
		}
		c.nextSweep = now.Add(c.window)
	}

	wc, ok := c.counts[key]
	if !ok || now.After(wc.reset) {
		wc = &windowCount{reset: now.Add(c.window)}
		c.counts[key] = wc
	}
	wc.hits++
	return decision{
		allowed:   wc.hits <= c.limit,
		remaining: max(c.limit-wc.hits, 0),
		reset:     wc.reset.Sub(now),
	}
}

func (c *windowCounter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.counts)
}

// admit applies the counter to r, writes the rate headers and the 429
// response when the key is over its limit.
func (c *windowCounter) admit(w http.ResponseWriter, r *http.Request, scope string) bool {
	if c.limit <= 0 {
		return true
	}
	key := c.keyFn(r)
	if key == "" {
		key = clientKey(r)
	}
	d := c.take(key, time.Now())

	resetSec := ceilSeconds(d.reset)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(c.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if d.allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.WarnContext(r.Context(), "rate limit exceeded",
		"scope", scope,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", c.limit,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit is the global limiter, keyed by the authenticated user when
// there is one and by client IP otherwise.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	settings := rateLimitSettings{exempt: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&settings)
	}
	counter := newWindowCounter(limit, window, principalKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := settings.exempt[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}
			if !counter.admit(w, r, "global") {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sensitiveRoute struct {
	scope    string
	match    func(method string, segments []string) bool
	counters []*windowCounter
}

// SensitiveMutationRateLimit adds tighter budgets on top of the global one:
// login attempts per IP and per email, compensation writes per actor and per
// target employee, and previews per actor.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	writeLimit := max(baseLimit/2, 1)
	routes := []sensitiveRoute{
		{
			scope: "login",
			match: func(method string, seg []string) bool {
				return method == http.MethodPost && len(seg) == 2 && seg[0] == "auth" && seg[1] == "login"
			},
			counters: []*windowCounter{
				newWindowCounter(loginLimit, window, clientKey),
				newWindowCounter(loginLimit, window, loginEmailKey),
			},
		},
		{
			scope: "compensation_write",
			match: func(method string, seg []string) bool {
				return (method == http.MethodPut || method == http.MethodPost) && isEmployeeCompensationPath(seg)
			},
			counters: []*windowCounter{
				newWindowCounter(writeLimit, window, principalKey),
				newWindowCounter(writeLimit, window, targetEmployeeKey),
			},
		},
		{
			scope: "compensation_preview",
			match: func(method string, seg []string) bool {
				return method == http.MethodPost && len(seg) == 2 && seg[0] == "compensation" && seg[1] == "preview"
			},
			counters: []*windowCounter{
				newWindowCounter(max(baseLimit, 1), window, principalKey),
			},
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			segments := apiSegments(r.URL.Path)
			for _, route := range routes {
				if !route.match(r.Method, segments) {
					continue
				}
				for _, counter := range route.counters {
					if !counter.admit(w, r, route.scope) {
						return
					}
				}
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.TenantID + ":" + user.UserID
	}
	return clientKey(r)
}

func clientKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

func loginEmailKey(r *http.Request) string {
	email := strings.ToLower(peekJSONString(r, "email"))
	if email == "" {
		return clientKey(r)
	}
	return "email:" + email
}

// targetEmployeeKey caps writes to one employee's template regardless of how
// many sessions send them.
func targetEmployeeKey(r *http.Request) string {
	segments := apiSegments(r.URL.Path)
	if !isEmployeeCompensationPath(segments) {
		return principalKey(r)
	}
	tenant := ""
	if user, ok := GetUser(r.Context()); ok {
		tenant = user.TenantID
	}
	return "employee:" + tenant + ":" + segments[1]
}

func isEmployeeCompensationPath(seg []string) bool {
	return len(seg) == 3 && seg[0] == "employees" && seg[1] != "" && seg[2] == "compensation"
}

// apiSegments splits a request path below /api/v1 into its non-empty parts.
func apiSegments(path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/api/v1")
	var out []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// peekJSONString reads a string field from a JSON body and restores the body
// for the handler.
func peekJSONString(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	body := r.Body
	raw, err := io.ReadAll(io.LimitReader(body, maxPeekBytes))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), body), Closer: body}
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

type readCloser struct {
	io.Reader
	io.Closer
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
