package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const tokenTTL = 60 * time.Minute

// Auth holds the externally configured admin identity and issues/validates
// the bearer tokens gating the admin route group. Credentials come from the
// environment; nothing here is mutable after construction.
type Auth struct {
	secret    []byte
	adminUser string
	adminHash string // bcrypt
	limiter   *rate.Limiter
}

// NewAuth builds the auth adapter. rps bounds login attempts across all
// clients; brute-forcing a single shared credential is the threat here, so a
// global limiter is enough.
func NewAuth(secret, adminUser, adminHash string, rps int) *Auth {
	if rps <= 0 {
		rps = 2
	}
	return &Auth{
		secret:    []byte(secret),
		adminUser: adminUser,
		adminHash: adminHash,
		limiter:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (a *Auth) login(w http.ResponseWriter, r *http.Request) {
	if !a.limiter.Allow() {
		writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "try again later")
		return
	}

	// No signing key means no tokens worth issuing.
	if len(a.secret) == 0 {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "login is not configured")
		return
	}

	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "username and password are required")
		return
	}

	// An empty configured hash never matches; login is effectively off.
	if a.adminHash == "" || in.Username != a.adminUser ||
		bcrypt.CompareHashAndPassword([]byte(a.adminHash), []byte(in.Password)) != nil {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   "tutelo-api",
		"sub":   in.Username,
		"roles": []string{"admin"},
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenTTL.Seconds()),
	})
}

// RequireAdmin gates a route group behind a valid bearer token carrying the
// admin role.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An empty secret would verify any token signed with the empty
		// key, so the group fails closed instead.
		if len(a.secret) == 0 {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "admin access is not configured")
			return
		}

		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		claims := jwt.MapClaims{}
		tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !tok.Valid {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}

		if !hasRole(claims, "admin") {
			writeProblem(w, http.StatusForbidden, "Forbidden", "missing required role: admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasRole(claims jwt.MapClaims, role string) bool {
	arr, ok := claims["roles"].([]any)
	if !ok {
		return false
	}
	for _, v := range arr {
		if s, ok := v.(string); ok && s == role {
			return true
		}
	}
	return false
}
