package ports

import (
	"time"

	"bashare-server/internal/model"
)

type JWTServiceInterface interface {
	CreateTokens(subject model.TokenSubject) (*model.TokensPair, error)
	EncodeSubject(subject model.TokenSubject, ttl time.Duration) (string, error)
	DecodeToken(tokenString string) (*model.TokenSubject, error)
}
