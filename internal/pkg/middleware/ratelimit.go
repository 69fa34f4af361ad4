package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"gobackoffice/internal/pkg/cache"
	"gobackoffice/internal/pkg/logger"
)

// RateLimiter limita as requisições por IP em janelas fixas de duration.
// O contador vive no Redis; se o Redis falhar a requisição segue sem limite.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "backoffice:rate-limit:" + ip
			ctx := r.Context()

			// Incremento e TTL no mesmo script: o contador nunca fica sem expiração.
			count, err := client.IncrWindow(ctx, key, duration)
			if err != nil {
				log.Warn("Rate limit indisponível; requisição liberada.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			if count > int64(limit) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(duration.Seconds())))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
