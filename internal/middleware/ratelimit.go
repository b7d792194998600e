package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/metrics"
	"github.com/muze-cafe/api/internal/ratelimit"
)

// RateLimit allows max requests per client IP in each window. Counter
// errors let the request through.
func RateLimit(counter ratelimit.Counter, name string, max int64, window time.Duration, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := name + ":" + clientIP(r)

			count, resetIn, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				logrus.WithError(err).WithField("limiter", name).Warn("rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			resetSecs := int64(math.Ceil(resetIn.Seconds()))
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(max, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetSecs, 10))

			if count > max {
				metrics.RateLimited.WithLabelValues(name).Inc()
				w.Header().Set("Retry-After", strconv.FormatInt(resetSecs, 10))
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: message, Code: "RATE_LIMIT_EXCEEDED"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the TCP peer, as rewritten by RealIP for trusted proxies.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
