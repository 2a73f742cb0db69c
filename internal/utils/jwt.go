package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret = []byte("venturelink-secret-key")

const (
	PurposeAccess     = "access"
	PurposeOAuthState = "oauth_state"
)

type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateToken issues an access token valid for expireHours.
func GenerateToken(userID, email, role string, expireHours int) (string, error) {
	return sign(userID, email, role, PurposeAccess, time.Duration(expireHours)*time.Hour)
}

// GenerateStateToken issues a short-lived token carried through an OAuth redirect.
func GenerateStateToken(userID, email string, ttl time.Duration) (string, error) {
	return sign(userID, email, "", PurposeOAuthState, ttl)
}

func sign(userID, email, role, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "venturelink",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates an access token.
func ParseToken(tokenString string) (*Claims, error) {
	return parse(tokenString, PurposeAccess)
}

// ParseStateToken validates an OAuth state token.
func ParseStateToken(tokenString string) (*Claims, error) {
	return parse(tokenString, PurposeOAuthState)
}

func parse(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, errors.New("token used for wrong purpose")
	}
	return claims, nil
}
