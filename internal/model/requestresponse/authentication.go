package requestresponse

// LoginRequest : тело запроса на аутентификацию.
// В login можно передать как email, так и username
type LoginRequest struct {
	Login    string `json:"login" example:"user1"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// TokenResponse : ответ на успешную аутентификацию или обновление пары токенов
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"bearer"`
}

// HealthResponse : ответ health-чека
type HealthResponse struct {
	Detail string `json:"detail" example:"OK"`
}
