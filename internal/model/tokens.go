package model

const (
	TokenTypeAccess  = "access_token"
	TokenTypeRefresh = "refresh_token"
	TokenTypeBearer  = "bearer"

	ScopeAdmin = "admin"
)

// TokenSubject — полезная нагрузка, которая сериализуется в JSON и кладётся
// в claim "sub" каждого выпущенного токена. Никогда не сохраняется как объект,
// только в подписанном виде.
type TokenSubject struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	JTI       string   `json:"jti"`
	TokenType string   `json:"token_type"`
	Scope     []string `json:"scope"`
}

// IsAdmin : true, если в scope присутствует роль admin
func (s *TokenSubject) IsAdmin() bool {
	for _, scope := range s.Scope {
		if scope == ScopeAdmin {
			return true
		}
	}
	return false
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен (для получения новой пары)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`

	// Транспортный тип токена, всегда "bearer"
	TokenType string `json:"token_type"`
}
