package pkg

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenTTL = 72 * time.Hour

// NewToken signs an HS256 token carrying the user id, the same shape the
// HTTP middleware verifies.
func NewToken(secret []byte, userID string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID
	claims["exp"] = time.Now().Add(tokenTTL).Unix()
	return token.SignedString(secret)
}

// ParseToken verifies raw and returns its user id.
func ParseToken(secret []byte, raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return UserID(token)
}

// UserID reads the user id claim of an already verified token.
func UserID(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: no user id", ErrInvalidToken)
	}
	return id, nil
}
