package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hrmportal/internal/transport/http/api"
)

// idleBucketTTL is how long an unused client bucket is kept.
const idleBucketTTL = 10 * time.Minute

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiterSet)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(ls *limiterSet) {
		if fn != nil {
			ls.key = fn
		}
	}
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterSet is a token bucket per key: limit requests per window, refilled
// evenly, with bursts of up to limit.
type limiterSet struct {
	name   string
	limit  int
	every  rate.Limit
	key    RateLimitKeyFunc
	now    func() time.Time
	mu     sync.Mutex
	bucket map[string]*clientBucket
	sweep  time.Time
}

func newLimiterSet(name string, limit int, window time.Duration, key RateLimitKeyFunc) *limiterSet {
	if key == nil {
		key = actorOrIPKey
	}
	every := rate.Inf
	if limit > 0 && window > 0 {
		every = rate.Every(window / time.Duration(limit))
	}
	return &limiterSet{
		name:   name,
		limit:  limit,
		every:  every,
		key:    key,
		now:    time.Now,
		bucket: map[string]*clientBucket{},
	}
}

func (ls *limiterSet) get(key string, now time.Time) *rate.Limiter {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if now.Sub(ls.sweep) > idleBucketTTL {
		for k, b := range ls.bucket {
			if now.Sub(b.lastSeen) > idleBucketTTL {
				delete(ls.bucket, k)
			}
		}
		ls.sweep = now
	}
	b, ok := ls.bucket[key]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(ls.every, ls.limit)}
		ls.bucket[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// allow takes a token for the request. On refusal it has already written
// the 429 response.
func (ls *limiterSet) allow(w http.ResponseWriter, r *http.Request) bool {
	if ls.limit <= 0 {
		return true
	}
	key := ls.key(r)
	if key == "" {
		key = ClientIP(r)
	}
	now := ls.now()
	lim := ls.get(key, now)

	res := lim.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
	}
	remaining := int(math.Max(0, math.Floor(lim.TokensAt(now))))
	fullIn := time.Duration(float64(ls.limit-remaining) / float64(ls.every) * float64(time.Second))

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(ls.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(fullIn)))
	if delay <= 0 {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(ceilSeconds(delay), 1)))
	slog.Warn("rate limit exceeded", "limiter", ls.name, "key", key, "method", r.Method, "path", r.URL.Path, "limit", ls.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// RateLimit allows limit requests per window for each signed-in user, or
// for each client IP before sign-in.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	ls := newLimiterSet("api", limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(ls)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ls.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter budgets on top of RateLimit: login
// attempts get a quarter of baseLimit per IP and per submitted email, and
// the writes listed in sensitiveRoutes get half per user.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	writeLimit := max(baseLimit/2, 1)
	loginByIP := newLimiterSet("login-ip", loginLimit, window, ClientIP)
	loginByEmail := newLimiterSet("login-email", loginLimit, window, AuthEmailOrIPKey("email"))
	writes := newLimiterSet("sensitive-write", writeLimit, window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classifyMutation(r) {
			case mutationLogin:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			case mutationSensitive:
				if !writes.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthEmailOrIPKey keys login attempts by the email in the JSON body, so
// one account cannot be guessed at from many addresses.
func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	if strings.TrimSpace(field) == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		if email := peekJSONString(r, field); email != "" {
			return "email:" + strings.ToLower(email)
		}
		return ClientIP(r)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return ClientIP(r)
}

// ClientIP is the first X-Forwarded-For hop, else the peer address.
func ClientIP(r *http.Request) string {
	if fwd, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(fwd) != "" {
		return strings.TrimSpace(fwd)
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

// peekJSONString reads one string field from a JSON body and puts the body
// back for the handler.
func peekJSONString(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type mutationClass int

const (
	mutationOther mutationClass = iota
	mutationLogin
	mutationSensitive
)

// sensitiveRoutes are writes that move money, change access or send mail.
// A "*" segment matches one path element.
var sensitiveRoutes = []string{
	"/payroll/process",
	"/payroll/upload",
	"/payroll/*/email",
	"/settings/roles",
	"/reports/generate",
	"/reports/schedule",
	"/leave/*/status",
}

func classifyMutation(r *http.Request) mutationClass {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return mutationOther
	}
	path := strings.TrimPrefix(strings.TrimSpace(r.URL.Path), "/api")
	path = "/" + strings.Trim(path, "/")
	if path == "/auth/login" {
		return mutationLogin
	}
	for _, pattern := range sensitiveRoutes {
		if matchRoute(pattern, path) {
			return mutationSensitive
		}
	}
	return mutationOther
}

func matchRoute(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
	}
	return true
}
