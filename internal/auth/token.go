package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/estatery/listings/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "type" claim.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Demo tokens are opaque tagged strings referencing an in-memory session
// rather than signed credentials.
const (
	demoAccessPrefix  = "demo-access-"
	demoRefreshPrefix = "demo-refresh-"
)

// TokenInfo is the decoded form of either token flavor. Callers never branch
// on token format: Opaque tokens resolve through the session store, signed
// tokens carry the user id directly.
type TokenInfo struct {
	UserID    string
	SessionID string
	Type      string
	Opaque    bool
}

// Claims is the signed-token claim set.
type Claims struct {
	Type  string `json:"type"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// codec issues and decodes both token flavors.
type codec struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// signAccess creates a signed HS256 access token for the user.
func (c *codec) signAccess(u *models.User, now time.Time) (string, error) {
	claims := Claims{
		Type:  tokenTypeAccess,
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// signRefresh creates a signed HS256 refresh token for the user.
func (c *codec) signRefresh(u *models.User, now time.Time) (string, error) {
	claims := Claims{
		Type: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
}

// errTokenMalformed and errTokenHasExpired are internal decode outcomes the
// service maps onto the caller-visible code set.
var (
	errTokenMalformed  = errors.New("token malformed")
	errTokenHasExpired = errors.New("token expired")
)

// decode parses a token of either flavor. kind selects the verification key
// for signed tokens and the expected prefix for opaque ones.
func (c *codec) decode(token, kind string) (TokenInfo, error) {
	if strings.HasPrefix(token, demoAccessPrefix) {
		return TokenInfo{
			SessionID: strings.TrimPrefix(token, demoAccessPrefix),
			Type:      tokenTypeAccess,
			Opaque:    true,
		}, nil
	}
	if strings.HasPrefix(token, demoRefreshPrefix) {
		return TokenInfo{
			SessionID: strings.TrimPrefix(token, demoRefreshPrefix),
			Type:      tokenTypeRefresh,
			Opaque:    true,
		}, nil
	}

	key := c.secret
	if kind == tokenTypeRefresh {
		key = c.refreshSecret
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errTokenMalformed
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenInfo{}, errTokenHasExpired
		}
		return TokenInfo{}, errTokenMalformed
	}

	return TokenInfo{UserID: claims.Subject, Type: claims.Type}, nil
}

// demoTokens materializes the opaque token pair for a session id.
func demoTokens(sessionID string) Tokens {
	return Tokens{
		AccessToken:  demoAccessPrefix + sessionID,
		RefreshToken: demoRefreshPrefix + sessionID,
	}
}
