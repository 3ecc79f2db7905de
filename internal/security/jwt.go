package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bashare-server/config"
	"bashare-server/internal/model"
	"bashare-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	SubjectContextKey contextKey = "token_subject"
)

var (
	// ErrInvalidToken : любая причина отказа в доверии токену — плохая подпись,
	// битая структура, истёкший exp, отсутствие в хранилище отзыва.
	// Наружу причины не различаются
	ErrInvalidToken = errors.New("невалидный токен")

	ErrUnauthorized = errors.New("пользователь не авторизован")
)

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

// EncodeSubject сериализует subject в JSON, кладёт его строкой в claim "sub"
// и подписывает токен с заданным временем жизни
func (service *JWTService) EncodeSubject(subject model.TokenSubject, ttl time.Duration) (string, error) {
	method, err := service.signingMethod()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(subject)
	if err != nil {
		return "", util.LogError("ошибка сериализации subject", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   string(data),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "bashare-server",
	}

	jwtToken := jwt.NewWithClaims(method, claims)
	signed, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return signed, nil
}

// DecodeToken проверяет подпись и срок действия токена и возвращает subject.
// Подпись проверяется до чтения каких-либо claims
func (service *JWTService) DecodeToken(jwtTokenStr string) (*model.TokenSubject, error) {
	method, err := service.signingMethod()
	if err != nil {
		return nil, err
	}

	var claims jwt.RegisteredClaims
	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != method.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	})

	if err != nil || !jwtToken.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var subject model.TokenSubject
	if err := json.Unmarshal([]byte(claims.Subject), &subject); err != nil {
		return nil, fmt.Errorf("%w: битый subject: %v", ErrInvalidToken, err)
	}

	return &subject, nil
}

// CreateTokens выпускает пару access+refresh токенов для subject.
// Subject получает свежий jti, общий для обеих половин пары; access и refresh
// различаются только token_type и временем жизни. Запись refresh токена
// в хранилище отзыва — обязанность вызывающего
func (service *JWTService) CreateTokens(subject model.TokenSubject) (*model.TokensPair, error) {
	accessTTL, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return nil, util.LogError("ошибка парсинга access_token_ttl", err)
	}

	refreshTTL, err := time.ParseDuration(service.RefreshTokenTTL)
	if err != nil {
		return nil, util.LogError("ошибка парсинга refresh_token_ttl", err)
	}

	subject.JTI = uuid.NewString()
	if subject.Scope == nil {
		subject.Scope = []string{}
	}

	accessSubject := subject
	accessSubject.TokenType = model.TokenTypeAccess

	refreshSubject := subject
	refreshSubject.TokenType = model.TokenTypeRefresh

	accessToken, err := service.EncodeSubject(accessSubject, accessTTL)
	if err != nil {
		return nil, util.LogError("ошибка выпуска access токена", err)
	}

	refreshToken, err := service.EncodeSubject(refreshSubject, refreshTTL)
	if err != nil {
		return nil, util.LogError("ошибка выпуска refresh токена", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
	}, nil
}

// signingMethod разрешает только HMAC-семейство алгоритмов из конфигурации
func (service *JWTService) signingMethod() (jwt.SigningMethod, error) {
	algorithm := service.Algorithm
	if algorithm == "" {
		algorithm = "HS256"
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("неизвестный алгоритм подписи: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("алгоритм подписи %s не поддерживается", algorithm)
	}

	return method, nil
}

// JWTMiddleware пускает дальше только запросы с валидным access токеном
// в заголовке Authorization и кладёт TokenSubject в контекст запроса
func JWTMiddleware(jwtService *JWTService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			subject, err := jwtService.DecodeToken(token)
			if err != nil {
				util.LogError("невалидный токен", err)
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			// refresh токен не годится для доступа к API
			if subject.TokenType != model.TokenTypeAccess {
				http.Error(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), SubjectContextKey, subject))
			next.ServeHTTP(writer, req)
		})
	}
}

func GetSubjectFromContext(ctx context.Context) (*model.TokenSubject, error) {
	subject, ok := ctx.Value(SubjectContextKey).(*model.TokenSubject)
	if !ok || subject == nil {
		return nil, ErrUnauthorized
	}
	return subject, nil
}
