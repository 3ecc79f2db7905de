package service

import "errors"

// Типизированные ошибки бизнес-логики. Обработчики сопоставляют их
// через errors.Is и переводят в коды статусов; текст наружу при этом
// может быть более общим, чем внутренняя причина
var (
	// ErrInvalidCredentials : неизвестный логин или неверный пароль,
	// наружу не различаются
	ErrInvalidCredentials = errors.New("неверный логин или пароль")

	// ErrInactiveUser : учётная запись существует, но деактивирована
	ErrInactiveUser = errors.New("пользователь деактивирован")

	// ErrDuplicateUser : регистрация с занятым email или username
	ErrDuplicateUser = errors.New("пользователь уже существует")

	ErrNotFound = errors.New("пользователь не найден")

	ErrForbidden = errors.New("доступ запрещён")
)
