package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/davidcalleja/garagebook-backend/api/responses"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
)

// Keys share the gb: namespace the redis client uses for its own keys.
const throttleKeyPrefix = "gb:auth_limit"

type attemptCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// ThrottlePolicy caps attempts against one auth surface (login, register)
// per source IP and per target account email over a fixed window.
type ThrottlePolicy struct {
	Surface    string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func (p ThrottlePolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

func (p ThrottlePolicy) surface() string {
	s := strings.ToLower(strings.TrimSpace(p.Surface))
	if s == "" {
		return "auth"
	}
	return s
}

// key addresses one counter: gb:auth_limit:<surface>:<dimension>:<subject>.
func (p ThrottlePolicy) key(dimension, subject string) string {
	return fmt.Sprintf("%s:%s:%s:%s", throttleKeyPrefix, p.surface(), dimension, subject)
}

// Throttle enforces the policy before the handler runs. The email dimension
// hashes the address so raw emails never land in Redis keys.
func Throttle(policy ThrottlePolicy, counter attemptCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || counter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				ip := clientIP(r)
				if ip != "" {
					count, err := counter.IncrWithTTL(ctx, policy.key("ip", ip), policy.Window)
					if err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if count > int64(policy.IPLimit) {
						blockAttempt(ctx, logg, w, policy, "ip", count, policy.IPLimit)
						return
					}
				}
			}

			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if hash := hashedEmail(body); hash != "" {
					count, err := counter.IncrWithTTL(ctx, policy.key("email", hash), policy.Window)
					if err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if count > int64(policy.EmailLimit) {
						blockAttempt(ctx, logg, w, policy, "email", count, policy.EmailLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func blockAttempt(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy ThrottlePolicy, dimension string, count int64, limit int) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"surface":        policy.surface(),
			"dimension":      dimension,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.Window.Seconds()),
		})
		logg.Warn(logCtx, "auth.throttled")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// clientIP prefers proxy headers over the socket peer, first hop wins.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// hashedEmail pulls the email field out of the JSON body and returns its
// sha256 hex digest, empty when the body carries none.
func hashedEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
