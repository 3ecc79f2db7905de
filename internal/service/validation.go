package service

import (
	"fmt"
	"net/mail"
	"unicode"
	"unicode/utf8"
)

// validateUsername : минимум 3 символа, латинские буквы, цифры и подчёркивание
func validateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username должен быть не меньше 3 символов")
	}
	for _, c := range username {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return fmt.Errorf("username должен содержать только буквы, цифры и подчёркивание")
		}
	}
	return nil
}

// validateEmail : адрес должен разбираться по RFC 5322 и быть голым,
// без имени отправителя вида "Alice <alice@example.com>"
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email должен быть корректным адресом")
	}
	return nil
}

// validatePassword : от 8 до 200 символов, длина считается в рунах
func validatePassword(password string) error {
	length := utf8.RuneCountInString(password)
	if length < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}
	if length > 200 {
		return fmt.Errorf("пароль должен содержать не больше 200 символов")
	}
	return nil
}
