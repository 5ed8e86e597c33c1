// Package session разбирает bearer токен клиента, чтобы показать пользователя
// и срок действия без обращения к серверу. Подпись не проверяется: это делает сервер.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken токен не задан
	ErrNoToken = errors.New("no session token")
	// ErrMalformedToken токен не является JWT
	ErrMalformedToken = errors.New("malformed session token")
)

// Claims представляет claims токена, которые выдает сервер сообщества
type Claims struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session сведения о сессии, извлеченные из токена
type Session struct {
	ExpiresAt time.Time // zero если токен бессрочный
	IssuedAt  time.Time
	UserID    string
	Username  string
}

// Parse извлекает сведения о сессии из токена без проверки подписи
func Parse(token string) (*Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	s := &Session{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	// сервер может класть ID пользователя в стандартный sub
	if s.UserID == "" {
		s.UserID = claims.Subject
	}
	if s.Username == "" {
		s.Username = claims.Name
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	return s, nil
}

// Expired сообщает, истек ли токен к моменту now
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Remaining возвращает оставшееся время действия токена (0 если истек или бессрочный)
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() || s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
