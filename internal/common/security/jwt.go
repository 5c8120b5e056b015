package security

import (
	"errors"
	"time"

	"judgeboard/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken mints a bearer token. sessionID identifies the logical login
// session; the access gate keys per-session verification state on it.
func GenerateToken(userID, username, role, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     role,
		"sid":      sessionID,
		"exp":      time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":      time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func stringClaim(claims jwt.MapClaims, key string) (string, error) {
	v, ok := claims[key].(string)
	if !ok {
		return "", errors.New(key + " claim is missing or not a string")
	}
	return v, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "user_id")
}

func GetUsernameFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "username")
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "role")
}

func GetSessionIDFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "sid")
}
