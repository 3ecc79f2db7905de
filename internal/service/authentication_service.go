package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"bashare-server/config"
	"bashare-server/internal/model"
	"bashare-server/internal/ports"
	"bashare-server/internal/security"
	"bashare-server/internal/util"
)

type AuthenticationService struct {
	userRepository  ports.UserRepository
	jwtService      ports.JWTServiceInterface
	revocationStore ports.RevocationStore
	hasher          *security.PasswordHasher
	*config.AppConfig
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	revocationStore ports.RevocationStore,
	hasher *security.PasswordHasher,
	cfg *config.AppConfig,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository,
		jwtService,
		revocationStore,
		hasher,
		cfg,
	}
}

// Authenticate ищет пользователя сначала по email, затем по username
// и сверяет пароль. Возвращает (nil, nil) и для неизвестного логина,
// и для неверного пароля: вызывающий не должен знать, что именно не совпало
func (s *AuthenticationService) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[AuthService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepository.FindByUsername(ctx, db, identifier)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, nil
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}

	return user, nil
}

// IsActive : предикат над флагом is_active
func (s *AuthenticationService) IsActive(user *model.User) bool {
	return user != nil && user.IsActive
}

// IsSuperuser : предикат над флагом is_superuser
func (s *AuthenticationService) IsSuperuser(user *model.User) bool {
	return user != nil && user.IsSuperuser
}

// Login аутентифицирует пользователя, выпускает пару токенов и записывает
// refresh токен в хранилище отзыва: ключ — строка токена, значение — id
// пользователя, TTL — время жизни refresh токена
func (s *AuthenticationService) Login(ctx context.Context, identifier, password string) (*model.TokensPair, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка аутентификации", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.IsActive(user) {
		return nil, ErrInactiveUser
	}

	tokens, err := s.issueTokens(ctx, user.ID, user.Username, user.Email, s.IsSuperuser(user))
	if err != nil {
		return nil, err
	}

	db, ok := ctx.Value("db").(*config.Database)
	if ok {
		// отметка последнего входа не критична для выдачи токенов
		if err := s.userRepository.UpdateLastLogin(ctx, db, user.ID); err != nil {
			log.Printf("[AuthService] не удалось обновить last_login: %v", err)
		}
	}

	return tokens, nil
}

// RefreshToken обменивает действующий refresh токен на новую пару.
//
// Токен считается действующим, если он проходит криптографическую проверку
// и хранилище отзыва по ключу-строке токена возвращает id его владельца.
// Любая внутренняя причина отказа (битая подпись, истёкший exp, отсутствие
// ключа, чужой id) наружу схлопывается в security.ErrInvalidToken.
//
// Старый ключ при ротации не удаляется и доживает до своего TTL, поэтому
// до истечения срока прежний refresh токен остаётся обменоспособным
func (s *AuthenticationService) RefreshToken(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	subject, err := s.jwtService.DecodeToken(refreshToken)
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось провалидировать refresh токен", err)
	}

	if subject.TokenType != model.TokenTypeRefresh {
		log.Printf("[AuthService] попытка обмена токена типа %q", subject.TokenType)
		return nil, fmt.Errorf("токен не является refresh токеном: %w", security.ErrInvalidToken)
	}

	storedID, err := s.revocationStore.Get(ctx, refreshToken)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка обращения к хранилищу токенов", err)
	}
	if storedID == "" {
		log.Printf("[AuthService] refresh токен отсутствует в хранилище (jti %s)", subject.JTI)
		return nil, fmt.Errorf("refresh токен неизвестен или истёк: %w", security.ErrInvalidToken)
	}
	if storedID != strconv.FormatInt(subject.ID, 10) {
		log.Printf("[AuthService] id владельца не совпадает (jti %s)", subject.JTI)
		return nil, fmt.Errorf("refresh токен принадлежит другому пользователю: %w", security.ErrInvalidToken)
	}

	return s.issueTokens(ctx, subject.ID, subject.Username, subject.Email, subject.IsAdmin())
}

// issueTokens собирает subject, выпускает пару и записывает новый refresh
// токен в хранилище отзыва
func (s *AuthenticationService) issueTokens(ctx context.Context, id int64, username, email string, isSuperuser bool) (*model.TokensPair, error) {
	subject := model.TokenSubject{
		ID:       id,
		Username: username,
		Email:    email,
		Scope:    []string{},
	}
	if isSuperuser {
		subject.Scope = []string{model.ScopeAdmin}
	}

	tokens, err := s.jwtService.CreateTokens(subject)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка генерации токенов", err)
	}

	refreshTTL, err := time.ParseDuration(s.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка парсинга refresh_token_ttl", err)
	}

	if err := s.revocationStore.Set(ctx, tokens.RefreshToken, strconv.FormatInt(id, 10), refreshTTL); err != nil {
		return nil, util.LogError("[AuthService] не удалось сохранить refresh токен", err)
	}

	return tokens, nil
}
