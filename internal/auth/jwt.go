package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken issues an HS256 access token carrying the user's email
// (sub) and numeric id.
func GenerateToken(secret []byte, userID int64, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     email,
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseToken validates a token and returns the user id and email it names.
func ParseToken(secret []byte, tokenString string) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	data, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	uidFloat, ok := data["user_id"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	email, _ := data["sub"].(string)

	return int64(uidFloat), email, nil
}
