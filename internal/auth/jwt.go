package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mesterwork/worksite-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionClaims are the claims carried by identity-gateway session tokens
type SessionClaims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsSuperUser bool   `json:"is_super"`
	jwt.RegisteredClaims
}

// SessionValidator validates HMAC-signed session tokens issued by the
// identity gateway. The gateway owns credentials and password flows;
// this API only verifies the resulting session token.
type SessionValidator struct {
	config *config.AuthConfig
}

// NewSessionValidator creates a new session token validator
func NewSessionValidator(cfg *config.AuthConfig) *SessionValidator {
	return &SessionValidator{config: cfg}
}

// ValidateToken validates a session token and returns its claims
func (v *SessionValidator) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	if v.config.Issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != v.config.Issuer {
			return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
		}
	}

	if v.config.Audience != "" {
		aud, _ := claims.GetAudience()
		validAud := false
		for _, a := range aud {
			if a == v.config.Audience {
				validAud = true
				break
			}
		}
		if !validAud {
			return nil, fmt.Errorf("%w: invalid audience", ErrInvalidToken)
		}
	}

	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	return claims, nil
}
