package middleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	id "carehub/pkg/domain"
)

// HMACValidator validates HS256 tokens whose subject claim carries the
// caller identity. Token issuance belongs to the platform's auth service;
// the registry only consumes tokens.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("token subject: %w", err)
	}
	identity, err := id.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("token subject is not a valid identity: %w", err)
	}
	return &Claims{Identity: identity}, nil
}
