package requestresponse

import "time"

// RegisterRequest : тело запроса на регистрацию
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password1"`
}

// UserResponse : публичное представление пользователя, хэш пароля не отдаётся
type UserResponse struct {
	ID          int64      `json:"id" example:"7"`
	Username    string     `json:"username" example:"alice"`
	Email       string     `json:"email" example:"alice@example.com"`
	IsActive    bool       `json:"is_active" example:"true"`
	IsSuperuser bool       `json:"is_superuser" example:"false"`
	Confirmed   bool       `json:"confirmed" example:"false"`
	Created     time.Time  `json:"created"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"bad request"`
}

// ErrorResponse : единый формат ошибки API
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
