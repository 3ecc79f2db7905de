package model

import "time"

type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsSuperuser  bool       `db:"is_superuser" json:"is_superuser"`
	Confirmed    bool       `db:"confirmed" json:"confirmed"`
	Created      time.Time  `db:"created" json:"created"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// UserUpdate описывает частичное обновление: nil-поля не трогаются.
// Password приходит в открытом виде и хэшируется сервисом перед записью.
type UserUpdate struct {
	Username    *string `json:"username,omitempty"`
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
	Confirmed   *bool   `json:"confirmed,omitempty"`
}
