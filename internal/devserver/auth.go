package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in tokens. Students may only read.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

const tokenIssuer = "campus-devserver"

var (
	errTokenMissing = errors.New("bearer token is required")
	errTokenInvalid = errors.New("bearer token is invalid")
)

// Claims is the payload of a campus access token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type claimsKey struct{}

// MintToken signs an HS256 token for subject with the given role.
func MintToken(secret []byte, subject, role string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token minted by MintToken.
func ParseToken(secret []byte, token string, now func() time.Time) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errTokenMissing
	}
	if now == nil {
		now = time.Now
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errTokenInvalid, err)
	}
	return &claims, nil
}

// authenticate rejects requests without a valid bearer token. Students are
// limited to GET.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := ParseToken(s.secret, raw, s.now)
		if err != nil {
			s.logger.Debug("rejected request", "error", err, "path", r.URL.Path)
			respondError(w, http.StatusUnauthorized, err.Error(), nil)
			return
		}
		if claims.Role == RoleStudent && r.Method != http.MethodGet {
			respondError(w, http.StatusForbidden, "students cannot modify records", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// claimsFrom returns the caller's claims, or nil when auth is disabled.
func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}
