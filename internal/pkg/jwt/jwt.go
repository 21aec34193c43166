package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

type Service interface {
	// GenerateAccessToken signs an access token for userID. admin grants the
	// maintenance endpoints.
	GenerateAccessToken(userID string, admin bool) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, admin bool) (token string, expiresAt int64, err error) {
	if userID == "" {
		return "", 0, auth.ErrUserIDRequired
	}
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, fmt.Errorf("invalid access token expiration: %w", err)
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":  userID,
		"is_admin": admin,
		"type":     TokenTypeAccess,
		"exp":      expiresAt,
	})
	return tokenString, expiresAt, err
}

// ParseClaims checks that claims belong to an access token and returns the
// caller they name.
func ParseClaims(claims map[string]interface{}) (userID string, admin bool, err error) {
	tokenType, _ := claims["type"].(string)
	if tokenType != TokenTypeAccess {
		return "", false, auth.ErrInvalidToken
	}
	userID, _ = claims["user_id"].(string)
	if userID == "" {
		return "", false, auth.ErrInvalidToken
	}
	admin, _ = claims["is_admin"].(bool)
	return userID, admin, nil
}

// VerifyError maps a jwtauth verification failure to the auth sentinels.
func VerifyError(err error) error {
	if errors.Is(err, jwtauth.ErrExpired) {
		return auth.ErrTokenExpired
	}
	return auth.ErrInvalidToken
}
